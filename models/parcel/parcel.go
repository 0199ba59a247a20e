package parcel

import (
	"time"

	"parcel-delivery/models/user"
)

// Parcel is the delivery aggregate. The receiver contact is a snapshot taken
// at creation time; ReceiverUserID is the optional linked account resolved by
// phone number.
type Parcel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	TrackingID string `gorm:"type:varchar(50);not null;uniqueIndex" json:"tracking_id"`

	// Foreign key for sender relationship
	SenderID uint      `gorm:"not null;index" json:"sender_id"`
	Sender   user.User `gorm:"foreignKey:SenderID" json:"sender"`

	ReceiverName    string     `gorm:"type:varchar(255);not null" json:"receiver_name"`
	ReceiverPhone   string     `gorm:"type:varchar(20);not null;index" json:"receiver_phone"`
	ReceiverAddress string     `gorm:"type:text;not null" json:"receiver_address"`
	ReceiverUserID  *uint      `gorm:"index" json:"receiver_user_id,omitempty"`
	ReceiverUser    *user.User `gorm:"foreignKey:ReceiverUserID" json:"receiver_user,omitempty"`

	ParcelType      string  `gorm:"type:varchar(50);not null" json:"parcel_type"`
	Weight          float64 `gorm:"not null" json:"weight"`
	DeliveryAddress string  `gorm:"type:text;not null" json:"delivery_address"`
	ParcelFee       float64 `gorm:"type:decimal(10,2)" json:"parcel_fee"`

	CurrentStatus         Status     `gorm:"type:varchar(20);not null;index;column:current_status" json:"current_status"`
	EstimatedDeliveryDate *time.Time `json:"estimated_delivery_date,omitempty"`

	IsCancelled bool `gorm:"default:false" json:"is_cancelled"`
	IsDelivered bool `gorm:"default:false" json:"is_delivered"`
	IsBlocked   bool `gorm:"default:false" json:"is_blocked"`

	StatusLogs []StatusLog `gorm:"foreignKey:ParcelID" json:"status_logs"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
