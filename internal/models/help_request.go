package models

import "time"

// RequestStatus represents the lifecycle state of a help request.
type RequestStatus string

const (
	// StatusPending indicates the request is waiting for a volunteer.
	StatusPending RequestStatus = "pending"
	// StatusAccepted indicates a volunteer is assigned and engaged.
	StatusAccepted RequestStatus = "accepted"
	// StatusCompleted indicates the assigned volunteer finished the request.
	StatusCompleted RequestStatus = "completed"
	// StatusCancelled is reserved as an extension point. No transition into it
	// is implemented; the reference system never defined a withdrawal path.
	StatusCancelled RequestStatus = "cancelled"
)

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
// Transitions are forward-only: pending -> accepted -> completed.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusAccepted
	case StatusAccepted:
		return next == StatusCompleted
	default:
		return false
	}
}

// HelpRequest represents one assistance need tracked through its lifecycle.
// The requester is immutable after creation; the volunteer is set exactly once
// on acceptance and retained after completion so history stays attributable.
type HelpRequest struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	RequesterID uint          `gorm:"not null;index" json:"requester_id"`
	Category    string        `gorm:"size:50;not null" json:"category"`
	Description string        `gorm:"type:text;not null" json:"description"`
	LocationID  uint          `gorm:"not null" json:"location_id"`
	Status      RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	VolunteerID *uint         `gorm:"index" json:"volunteer_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relationships
	Requester *User     `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Volunteer *User     `gorm:"foreignKey:VolunteerID" json:"volunteer,omitempty"`
	Location  *Location `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}

// TableName specifies the table name for GORM
func (HelpRequest) TableName() string {
	return "help_requests"
}
