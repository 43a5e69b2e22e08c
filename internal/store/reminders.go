package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmhodges/clock"
	"gorm.io/gorm"

	"github.com/pathakanu/jobMemo/internal/model"
)

// ReminderStore persists reminders. Every method except FindDue and MarkSent is scoped by owner.
type ReminderStore struct {
	db  *gorm.DB
	clk clock.Clock
}

// ListFilter narrows List results. Zero values are ignored.
type ListFilter struct {
	SubjectID string
	Category  model.Category
	Sent      *bool
	From      *time.Time
	To        *time.Time
}

// ReminderUpdate carries the user-editable fields of a reminder. Nil fields are left untouched.
type ReminderUpdate struct {
	TriggerAt *time.Time
	Category  *model.Category
	Notes     *string
}

// NewReminderStore returns a store that reads the current time from clk.
func NewReminderStore(db *gorm.DB, clk clock.Clock) *ReminderStore {
	return &ReminderStore{db: db, clk: clk}
}

// FindDue returns every unsent reminder whose trigger time is at or before now, across all owners,
// joined with the owner's contact details and the application it concerns.
func (s *ReminderStore) FindDue(ctx context.Context, now time.Time) ([]model.DueReminder, error) {
	var due []model.DueReminder
	err := s.db.WithContext(ctx).
		Table("reminders").
		Select(`reminders.*,
			users.id AS usr_id, users.name AS usr_name, users.contact AS usr_contact,
			applications.id AS app_id, applications.title AS app_title,
			applications.company AS app_company, applications.interview_date AS app_interview_date`).
		Joins("LEFT JOIN users ON users.id = reminders.owner_id").
		Joins("LEFT JOIN applications ON applications.id = reminders.subject_id").
		Where("reminders.trigger_at <= ? AND reminders.sent = ?", now.UTC(), false).
		Order("reminders.trigger_at ASC, reminders.id ASC").
		Scan(&due).Error
	if err != nil {
		return nil, fmt.Errorf("find due reminders: %w", err)
	}
	return due, nil
}

// MarkSent flags the reminder as sent. Calling it for a reminder that is already sent is a no-op.
func (s *ReminderStore) MarkSent(ctx context.Context, id string) error {
	now := s.clk.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ? AND sent = ?", id, false).
		Updates(map[string]interface{}{
			"sent":       true,
			"sent_at":    now,
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("mark reminder %s sent: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Reminder{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("mark reminder %s sent: %w", id, err)
	}
	if count == 0 {
		return fmt.Errorf("mark reminder %s sent: %w", id, model.ErrNotFound)
	}
	return nil
}

// Create validates and inserts a new, unsent reminder.
func (s *ReminderStore) Create(ctx context.Context, r *model.Reminder) error {
	now := s.clk.Now()
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: owner is required", model.ErrValidation)
	}
	if strings.TrimSpace(r.SubjectID) == "" {
		return fmt.Errorf("%w: subject is required", model.ErrValidation)
	}
	if !r.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", model.ErrValidation, r.Category)
	}
	if !r.TriggerAt.After(now) {
		return fmt.Errorf("%w: trigger time must be in the future", model.ErrValidation)
	}

	r.TriggerAt = r.TriggerAt.UTC()
	r.Sent = false
	r.SentAt = nil
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

// Get returns one of the owner's reminders.
func (s *ReminderStore) Get(ctx context.Context, ownerID, id string) (*model.Reminder, error) {
	var r model.Reminder
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// List returns the owner's reminders ordered by trigger time.
func (s *ReminderStore) List(ctx context.Context, ownerID string, filter ListFilter) ([]model.Reminder, error) {
	query := s.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if filter.SubjectID != "" {
		query = query.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Sent != nil {
		query = query.Where("sent = ?", *filter.Sent)
	}
	if filter.From != nil {
		query = query.Where("trigger_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("trigger_at <= ?", filter.To.UTC())
	}

	reminders := []model.Reminder{}
	if err := query.Order("trigger_at ASC, id ASC").Find(&reminders).Error; err != nil {
		return nil, err
	}
	return reminders, nil
}

// Update applies user edits. Sent reminders are immutable.
func (s *ReminderStore) Update(ctx context.Context, ownerID, id string, upd ReminderUpdate) (*model.Reminder, error) {
	var updated *model.Reminder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Reminder
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&r).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}
		if r.Sent {
			return model.ErrAlreadySent
		}

		changes := map[string]interface{}{}
		if upd.TriggerAt != nil {
			if !upd.TriggerAt.After(s.clk.Now()) {
				return fmt.Errorf("%w: trigger time must be in the future", model.ErrValidation)
			}
			changes["trigger_at"] = upd.TriggerAt.UTC()
		}
		if upd.Category != nil {
			if !upd.Category.Valid() {
				return fmt.Errorf("%w: unknown category %q", model.ErrValidation, *upd.Category)
			}
			changes["category"] = *upd.Category
		}
		if upd.Notes != nil {
			changes["notes"] = *upd.Notes
		}
		if len(changes) > 0 {
			// The sent guard keeps a concurrent MarkSent from being overwritten by a stale edit.
			res := tx.Model(&model.Reminder{}).Where("id = ? AND sent = ?", id, false).Updates(changes)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return model.ErrAlreadySent
			}
		}

		if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
			return err
		}
		updated = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a reminder, sent or not.
func (s *ReminderStore) Delete(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Reminder{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteBySubject removes all reminders of an application after the application itself was deleted.
func (s *ReminderStore) DeleteBySubject(ctx context.Context, ownerID, subjectID string) (int64, error) {
	res := s.db.WithContext(ctx).Where("owner_id = ? AND subject_id = ?", ownerID, subjectID).Delete(&model.Reminder{})
	return res.RowsAffected, res.Error
}
