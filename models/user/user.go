package user

import (
	"time"
)

// User is an identity record. The password column holds the bcrypt hash and
// is never serialized outward.
type User struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid     string `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Email    string `gorm:"type:varchar(255);not null;unique" json:"email"`
	Password string `gorm:"type:varchar(255);not null" json:"-"`
	Phone    string `gorm:"type:varchar(20);index" json:"phone"`
	Address  string `gorm:"type:text" json:"address,omitempty"`
	Picture  string `gorm:"type:varchar(2048)" json:"picture,omitempty"`

	Role       string `gorm:"type:varchar(20);not null;default:SENDER" json:"role"`
	Status     string `gorm:"type:varchar(20);not null;default:ACTIVE" json:"status"`
	IsDeleted  bool   `gorm:"default:false" json:"is_deleted"`
	IsVerified bool   `gorm:"default:false" json:"is_verified"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"` // Soft delete field
}

// IsUsable reports whether the account may authenticate or refresh tokens.
func (u *User) IsUsable() bool {
	if u.IsDeleted {
		return false
	}
	switch u.Status {
	case "BLOCKED", "DELETED", "INACTIVE":
		return false
	default:
		return true
	}
}
