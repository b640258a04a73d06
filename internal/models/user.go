package models

import (
	"time"
)

// Role values assigned to users.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a registered customer or admin.
type User struct {
	BaseModel
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `gorm:"uniqueIndex" json:"email"`
	Phone        string        `json:"phone"`
	DisplayName  string        `json:"display_name"`
	Role         string        `gorm:"default:customer" json:"role"`
	PasswordHash string        `json:"-"`
	IsVerified   bool          `json:"is_verified"`
	Addresses    []UserAddress `json:"addresses,omitempty"`
	Orders       []Order       `json:"orders,omitempty"`
}

// OTPVerification keeps track of one-time codes emailed to users.
// A code is consumed on successful verification and superseded by any
// newer code issued for the same email.
type OTPVerification struct {
	BaseModel
	Email     string     `gorm:"index" json:"email"`
	Code      string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
