package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/pathakanu/jobMemo/internal/model"
)

// ApplicationStore covers the few application operations that interact with reminders:
// status transitions feed the auto-reminder rules and deletes cascade to reminders.
type ApplicationStore struct {
	db        *gorm.DB
	reminders *ReminderStore
}

// NewApplicationStore returns a store that deletes reminders through reminders.
func NewApplicationStore(db *gorm.DB, reminders *ReminderStore) *ApplicationStore {
	return &ApplicationStore{db: db, reminders: reminders}
}

// Get returns the owner's application or ErrNotFound.
func (s *ApplicationStore) Get(ctx context.Context, ownerID, id string) (*model.Application, error) {
	var app model.Application
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &app, nil
}

// UpdateStatus persists a new status and returns the status the application had before.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, ownerID, id string, status model.ApplicationStatus) (model.ApplicationStatus, *model.Application, error) {
	if !status.Valid() {
		return "", nil, fmt.Errorf("%w: unknown status %q", model.ErrValidation, status)
	}

	var (
		old model.ApplicationStatus
		app model.Application
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return model.ErrNotFound
			}
			return err
		}
		old = app.Status
		if old == status {
			return nil
		}
		if err := tx.Model(&app).Update("status", status).Error; err != nil {
			return err
		}
		app.Status = status
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return old, &app, nil
}

// Delete removes the application and then every reminder that refers to it.
func (s *ApplicationStore) Delete(ctx context.Context, ownerID, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrNotFound
	}

	if _, err := s.reminders.DeleteBySubject(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete reminders of application %s: %w", id, err)
	}
	return nil
}
