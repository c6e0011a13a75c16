package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Username            string          `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email               string          `gorm:"uniqueIndex;not null" json:"email"`
	Password            string          `gorm:"not null" json:"-"`
	RefreshTokenHash    string          `gorm:"size:64" json:"-"`
	FailedLoginAttempts int             `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time      `json:"-"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`
	LinkedAccounts      []LinkedAccount `gorm:"foreignKey:UserID" json:"-"`
	Payments            []Payment       `gorm:"foreignKey:UserID" json:"-"`
}
