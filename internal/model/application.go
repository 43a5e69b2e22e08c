package model

import "time"

// ApplicationStatus is the pipeline stage of a job application.
type ApplicationStatus string

const (
	StatusSaved     ApplicationStatus = "SAVED"
	StatusApplied   ApplicationStatus = "APPLIED"
	StatusInterview ApplicationStatus = "INTERVIEW"
	StatusOffer     ApplicationStatus = "OFFER"
	StatusRejected  ApplicationStatus = "REJECTED"
	StatusWithdrawn ApplicationStatus = "WITHDRAWN"
)

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Application is a job application owned by a user. Reminders refer to it as their subject.
type Application struct {
	ID            string            `gorm:"type:varchar(64);primaryKey" json:"id"`
	OwnerID       string            `gorm:"type:varchar(64);not null;index" json:"ownerId"`
	Title         string            `gorm:"not null" json:"title"`
	Company       string            `gorm:"not null" json:"company"`
	Status        ApplicationStatus `gorm:"type:varchar(16);not null;default:SAVED" json:"status"`
	InterviewDate *time.Time        `json:"interviewDate,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

// User holds the contact details of a reminder owner.
type User struct {
	ID        string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
