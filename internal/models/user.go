package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles assignable to a user account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account that owns uploaded spreadsheets.
type User struct {
	ID           string    `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a surrogate id when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
