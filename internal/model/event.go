package model

import "time"

type Event struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	OrganizerID        int64      `json:"organizer_id"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedBy         *int64     `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Organizer is populated on queries that join the owning user.
	Organizer *Organizer `json:"organizer,omitempty"`
}

// Organizer is the subset of a user exposed alongside an event. Email is
// only filled in for admin-facing queries.
type Organizer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type EventRegistration struct {
	ID             int64     `json:"id"`
	EventID        int64     `json:"event_id"`
	UserID         *int64    `json:"user_id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Age            int       `json:"age"`
	AdditionalInfo *string   `json:"additional_info"`
	CreatedAt      time.Time `json:"created_at"`
}
