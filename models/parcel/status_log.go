package parcel

import (
	"time"
)

// StatusLog is one entry of a parcel's append-only status history. Rows are
// ordered by insertion (auto-increment id) and never edited or removed.
type StatusLog struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// Foreign key for parcel relationship
	ParcelID uint `gorm:"not null;index" json:"parcel_id"`

	Status    Status    `gorm:"type:varchar(20);not null" json:"status"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Location  *string   `gorm:"type:varchar(255)" json:"location,omitempty"`
	UpdatedBy *uint     `json:"updated_by,omitempty"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the StatusLog model
func (StatusLog) TableName() string {
	return "parcel_status_logs"
}
