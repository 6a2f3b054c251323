// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is a session-scoped role selection over a persistent identity.
// A user switches between requesting and volunteering; the role is not a
// fixed attribute of the account.
type Role string

const (
	// RoleRequester marks a user currently seeking assistance.
	RoleRequester Role = "requester"
	// RoleVolunteer marks a user currently offering assistance.
	RoleVolunteer Role = "volunteer"
)

// Valid reports whether the role is one of the recognized roles.
func (r Role) Valid() bool {
	return r == RoleRequester || r == RoleVolunteer
}

// User represents a registered person at the help point.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:50;unique;not null" json:"username"`
	Email             string    `gorm:"size:100;unique;not null" json:"email"`
	Password          string    `gorm:"size:255;not null" json:"-"`
	FullName          string    `gorm:"size:100" json:"full_name"`
	Phone             string    `gorm:"size:20" json:"phone,omitempty"`
	Age               *int      `json:"age,omitempty"`
	Gender            string    `gorm:"size:20" json:"gender,omitempty"`
	ActiveRole        *Role     `gorm:"type:varchar(20)" json:"active_role"`
	EmailVerified     bool      `gorm:"not null;default:false" json:"email_verified"`
	VerificationToken *string   `gorm:"size:64;index" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// HasRole reports whether the user currently holds the given role.
func (u *User) HasRole(r Role) bool {
	return u.ActiveRole != nil && *u.ActiveRole == r
}
