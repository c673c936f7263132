package model

import "time"

type Story struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Content            string     `json:"content"`
	AuthorName         string     `json:"author_name"`
	AuthorEmail        string     `json:"author_email,omitempty"`
	AuthorAge          *int       `json:"author_age,omitempty"`
	Category           *string    `json:"category"`
	Tags               []string   `json:"tags"`
	VerificationStatus string     `json:"verification_status"`
	VerifiedBy         *int64     `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	IsPublished        bool       `json:"is_published"`
	PublishedAt        *time.Time `json:"published_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
