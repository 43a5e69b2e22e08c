package autoreminder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathakanu/jobMemo/internal/model"
	"github.com/pathakanu/jobMemo/internal/store"
	"github.com/pathakanu/jobMemo/internal/testing/testdb"
)

type recordingCreator struct {
	mu      sync.Mutex
	created []model.Reminder
	err     error
}

func (c *recordingCreator) Create(_ context.Context, r *model.Reminder) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	r.ID = "generated"
	c.created = append(c.created, *r)
	return nil
}

func (c *recordingCreator) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.created)
}

func fakeClock() clock.FakeClock {
	clk := clock.NewFake()
	clk.Set(now)
	return clk
}

func TestApplyPersistsThroughStore(t *testing.T) {
	db := testdb.New(t)
	clk := fakeClock()
	reminders := store.NewReminderStore(db, clk)
	engine := New(reminders, clk, 4)
	ctx := context.Background()

	created, err := engine.Apply(ctx, change(model.StatusSaved, model.StatusApplied, nil))
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list, err := reminders.List(ctx, "alice", store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.CategoryFollowUp, list[0].Category)
	assert.True(t, list[0].TriggerAt.Equal(now.Add(FollowUpDelay)))
	assert.False(t, list[0].Sent)
}

func TestApplyReportsStoreErrors(t *testing.T) {
	creator := &recordingCreator{err: errors.New("disk full")}
	engine := New(creator, fakeClock(), 4)

	created, err := engine.Apply(context.Background(), change(model.StatusSaved, model.StatusApplied, nil))
	assert.Equal(t, 0, created)
	assert.ErrorContains(t, err, "disk full")
}

func TestSubmitProcessesInBackground(t *testing.T) {
	creator := &recordingCreator{}
	engine := New(creator, fakeClock(), 4)
	engine.Start()

	interview := now.Add(3 * 24 * time.Hour)
	engine.Submit(change(model.StatusApplied, model.StatusInterview, &interview))
	engine.Submit(change(model.StatusSaved, model.StatusApplied, nil))
	engine.Submit(change(model.StatusOffer, model.StatusOffer, nil))

	engine.Stop()
	assert.Equal(t, 2, creator.count())
}

func TestSubmitSwallowsFailures(t *testing.T) {
	creator := &recordingCreator{err: errors.New("database is locked")}
	engine := New(creator, fakeClock(), 4)
	engine.Start()

	assert.NotPanics(t, func() {
		engine.Submit(change(model.StatusSaved, model.StatusApplied, nil))
	})
	engine.Stop()
	assert.Equal(t, 0, creator.count())
}

func TestSubmitWhenStoppedDrops(t *testing.T) {
	creator := &recordingCreator{}
	engine := New(creator, fakeClock(), 1)

	engine.Submit(change(model.StatusSaved, model.StatusApplied, nil))

	engine.Start()
	engine.Stop()
	assert.Equal(t, 0, creator.count())
}
