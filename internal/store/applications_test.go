package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathakanu/jobMemo/internal/model"
)

func TestUpdateStatusReturnsPreviousStatus(t *testing.T) {
	reminders, f, _ := newTestStore(t)
	apps := NewApplicationStore(reminders.db, reminders)
	ctx := context.Background()

	app := f.Application("alice", model.StatusSaved, nil)

	old, updated, err := apps.UpdateStatus(ctx, "alice", app.ID, model.StatusApplied)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSaved, old)
	assert.Equal(t, model.StatusApplied, updated.Status)

	stored, err := apps.Get(ctx, "alice", app.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, stored.Status)

	old, _, err = apps.UpdateStatus(ctx, "alice", app.ID, model.StatusApplied)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApplied, old)

	_, _, err = apps.UpdateStatus(ctx, "alice", app.ID, "GHOSTED")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, _, err = apps.UpdateStatus(ctx, "bob", app.ID, model.StatusOffer)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteApplicationCascadesReminders(t *testing.T) {
	reminders, f, _ := newTestStore(t)
	apps := NewApplicationStore(reminders.db, reminders)
	ctx := context.Background()

	doomed := f.Application("alice", model.StatusApplied, nil)
	kept := f.Application("alice", model.StatusApplied, nil)
	f.Reminder(model.Reminder{ID: "r1", OwnerID: "alice", SubjectID: doomed.ID, TriggerAt: testNow.Add(time.Hour)})
	f.Reminder(model.Reminder{ID: "r2", OwnerID: "alice", SubjectID: doomed.ID, TriggerAt: testNow.Add(-time.Hour)})
	f.Reminder(model.Reminder{ID: "r3", OwnerID: "alice", SubjectID: kept.ID, TriggerAt: testNow.Add(time.Hour)})

	require.NoError(t, apps.Delete(ctx, "alice", doomed.ID))

	list, err := reminders.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "r3", list[0].ID)

	assert.ErrorIs(t, apps.Delete(ctx, "alice", doomed.ID), model.ErrNotFound)
}
