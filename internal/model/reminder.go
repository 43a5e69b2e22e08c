package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category classifies a reminder and selects the notification template used for it.
type Category string

const (
	CategoryFollowUp  Category = "FOLLOW_UP"
	CategoryInterview Category = "INTERVIEW"
	CategoryDeadline  Category = "DEADLINE"
	CategoryResponse  Category = "RESPONSE"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFollowUp, CategoryInterview, CategoryDeadline, CategoryResponse:
		return true
	}
	return false
}

// Reminder represents a scheduled notification about a job application.
// Sent only ever moves from false to true; SentAt is set in the same update.
type Reminder struct {
	ID        string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	OwnerID   string     `gorm:"type:varchar(64);not null;index:idx_reminders_owner_due,priority:1" json:"ownerId"`
	SubjectID string     `gorm:"type:varchar(64);not null;index" json:"subjectId"`
	TriggerAt time.Time  `gorm:"not null;index:idx_reminders_due,priority:1;index:idx_reminders_owner_due,priority:2" json:"triggerAt"`
	Category  Category   `gorm:"type:varchar(16);not null" json:"category"`
	Sent      bool       `gorm:"not null;default:false;index:idx_reminders_due,priority:2;index:idx_reminders_owner_due,priority:3" json:"sent"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
	Notes     string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate assigns an identifier to reminders created without one.
func (r *Reminder) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Owner is the minimal user data needed to deliver a notification.
type Owner struct {
	ID      string
	Name    string
	Contact string
}

// Subject is the minimal application data needed to render a notification.
type Subject struct {
	ID            string
	Title         string
	Company       string
	InterviewDate *time.Time
}

// DueReminder is a reminder joined with its owner and subject, as returned by the due query.
type DueReminder struct {
	Reminder
	Owner   Owner   `gorm:"embedded;embeddedPrefix:usr_"`
	Subject Subject `gorm:"embedded;embeddedPrefix:app_"`
}
