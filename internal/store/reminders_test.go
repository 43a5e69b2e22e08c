package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pathakanu/jobMemo/internal/model"
	"github.com/pathakanu/jobMemo/internal/testing/testdb"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*ReminderStore, *testdb.Factory, clock.FakeClock) {
	t.Helper()
	db := testdb.New(t)
	clk := clock.NewFake()
	clk.Set(testNow)
	return NewReminderStore(db, clk), testdb.Fixtures(t, db), clk
}

func ids(due []model.DueReminder) []string {
	out := make([]string, 0, len(due))
	for _, d := range due {
		out = append(out, d.ID)
	}
	return out
}

func TestFindDueReturnsOnlyUnsentPastReminders(t *testing.T) {
	s, f, _ := newTestStore(t)
	ctx := context.Background()

	alice := f.User("alice")
	bob := f.User("bob")
	interview := testNow.Add(48 * time.Hour)
	aliceApp := f.Application(alice.ID, model.StatusInterview, &interview)
	bobApp := f.Application(bob.ID, model.StatusApplied, nil)
	sentAt := testNow.Add(-time.Hour)

	f.Reminder(model.Reminder{ID: "past", OwnerID: alice.ID, SubjectID: aliceApp.ID, TriggerAt: testNow.Add(-2 * time.Hour)})
	f.Reminder(model.Reminder{ID: "exact", OwnerID: bob.ID, SubjectID: bobApp.ID, TriggerAt: testNow})
	f.Reminder(model.Reminder{ID: "future", OwnerID: bob.ID, SubjectID: bobApp.ID, TriggerAt: testNow.Add(time.Minute)})
	f.Reminder(model.Reminder{ID: "sent", OwnerID: alice.ID, SubjectID: aliceApp.ID, TriggerAt: testNow.Add(-72 * time.Hour), Sent: true, SentAt: &sentAt})

	due, err := s.FindDue(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"past", "exact"}, ids(due))

	first := due[0]
	assert.Equal(t, alice.ID, first.Owner.ID)
	assert.Equal(t, alice.Name, first.Owner.Name)
	assert.Equal(t, alice.Contact, first.Owner.Contact)
	assert.Equal(t, aliceApp.ID, first.Subject.ID)
	assert.Equal(t, "Acme", first.Subject.Company)
	require.NotNil(t, first.Subject.InterviewDate)
	assert.True(t, first.Subject.InterviewDate.Equal(interview))
	assert.Nil(t, due[1].Subject.InterviewDate)
}

func TestFindDueEmpty(t *testing.T) {
	s, _, _ := newTestStore(t)

	due, err := s.FindDue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMarkSentIsIdempotent(t *testing.T) {
	s, f, clk := newTestStore(t)
	ctx := context.Background()

	f.Reminder(model.Reminder{ID: "r1", OwnerID: "alice", SubjectID: "app", TriggerAt: testNow.Add(-time.Minute)})

	require.NoError(t, s.MarkSent(ctx, "r1"))
	first, err := s.Get(ctx, "alice", "r1")
	require.NoError(t, err)
	require.True(t, first.Sent)
	require.NotNil(t, first.SentAt)
	assert.True(t, first.SentAt.Equal(testNow))

	clk.Add(time.Hour)
	require.NoError(t, s.MarkSent(ctx, "r1"))
	second, err := s.Get(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.True(t, second.Sent)
	assert.True(t, second.SentAt.Equal(testNow), "sentAt changed on second mark: %v", second.SentAt)

	due, err := s.FindDue(ctx, clk.Now())
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestMarkSentUnknownID(t *testing.T) {
	s, _, _ := newTestStore(t)

	err := s.MarkSent(context.Background(), "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	cases := map[string]model.Reminder{
		"past trigger":   {OwnerID: "alice", SubjectID: "app", Category: model.CategoryDeadline, TriggerAt: testNow.Add(-time.Second)},
		"now trigger":    {OwnerID: "alice", SubjectID: "app", Category: model.CategoryDeadline, TriggerAt: testNow},
		"no owner":       {SubjectID: "app", Category: model.CategoryDeadline, TriggerAt: testNow.Add(time.Hour)},
		"no subject":     {OwnerID: "alice", Category: model.CategoryDeadline, TriggerAt: testNow.Add(time.Hour)},
		"bad category":   {OwnerID: "alice", SubjectID: "app", Category: "PARTY", TriggerAt: testNow.Add(time.Hour)},
		"empty category": {OwnerID: "alice", SubjectID: "app", TriggerAt: testNow.Add(time.Hour)},
	}
	for name, r := range cases {
		r := r
		err := s.Create(ctx, &r)
		assert.ErrorIs(t, err, model.ErrValidation, name)
	}

	list, err := s.List(ctx, "alice", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateAssignsIDAndStartsUnsent(t *testing.T) {
	s, _, _ := newTestStore(t)
	ctx := context.Background()

	r := model.Reminder{
		OwnerID:   "alice",
		SubjectID: "app",
		Category:  model.CategoryResponse,
		TriggerAt: testNow.Add(24 * time.Hour),
		Sent:      true,
		Notes:     "chase recruiter",
	}
	require.NoError(t, s.Create(ctx, &r))
	require.NotEmpty(t, r.ID)

	got, err := s.Get(ctx, "alice", r.ID)
	require.NoError(t, err)
	assert.False(t, got.Sent)
	assert.Nil(t, got.SentAt)
	assert.Equal(t, "chase recruiter", got.Notes)
	assert.True(t, got.TriggerAt.Equal(testNow.Add(24*time.Hour)))
}

func TestOwnerScoping(t *testing.T) {
	s, f, _ := newTestStore(t)
	ctx := context.Background()

	f.Reminder(model.Reminder{ID: "r1", OwnerID: "alice", SubjectID: "app", TriggerAt: testNow.Add(time.Hour)})

	_, err := s.Get(ctx, "bob", "r1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "bob", "r1"), model.ErrNotFound)

	notes := "mine now"
	_, err = s.Update(ctx, "bob", "r1", ReminderUpdate{Notes: &notes})
	assert.ErrorIs(t, err, model.ErrNotFound)

	list, err := s.List(ctx, "bob", ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Delete(ctx, "alice", "r1"))
	_, err = s.Get(ctx, "alice", "r1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	s, f, _ := newTestStore(t)
	ctx := context.Background()
	sentAt := testNow

	f.Reminder(model.Reminder{ID: "a", OwnerID: "alice", SubjectID: "app-1", Category: model.CategoryFollowUp, TriggerAt: testNow.Add(time.Hour)})
	f.Reminder(model.Reminder{ID: "b", OwnerID: "alice", SubjectID: "app-2", Category: model.CategoryInterview, TriggerAt: testNow.Add(2 * time.Hour)})
	f.Reminder(model.Reminder{ID: "c", OwnerID: "alice", SubjectID: "app-1", Category: model.CategoryDeadline, TriggerAt: testNow.Add(-time.Hour), Sent: true, SentAt: &sentAt})
	f.Reminder(model.Reminder{ID: "d", OwnerID: "bob", SubjectID: "app-1", Category: model.CategoryFollowUp, TriggerAt: testNow.Add(time.Hour)})

	listIDs := func(filter ListFilter) []string {
		t.Helper()
		list, err := s.List(ctx, "alice", filter)
		require.NoError(t, err)
		out := []string{}
		for _, r := range list {
			out = append(out, r.ID)
		}
		return out
	}

	unsent := false
	sent := true
	from := testNow
	to := testNow.Add(90 * time.Minute)

	assert.Equal(t, []string{"c", "a", "b"}, listIDs(ListFilter{}))
	assert.Equal(t, []string{"c", "a"}, listIDs(ListFilter{SubjectID: "app-1"}))
	assert.Equal(t, []string{"b"}, listIDs(ListFilter{Category: model.CategoryInterview}))
	assert.Equal(t, []string{"a", "b"}, listIDs(ListFilter{Sent: &unsent}))
	assert.Equal(t, []string{"c"}, listIDs(ListFilter{Sent: &sent}))
	assert.Equal(t, []string{"a"}, listIDs(ListFilter{From: &from, To: &to}))
}

func TestUpdate(t *testing.T) {
	s, f, _ := newTestStore(t)
	ctx := context.Background()
	sentAt := testNow

	f.Reminder(model.Reminder{ID: "open", OwnerID: "alice", SubjectID: "app", TriggerAt: testNow.Add(time.Hour)})
	f.Reminder(model.Reminder{ID: "done", OwnerID: "alice", SubjectID: "app", TriggerAt: testNow.Add(-time.Hour), Sent: true, SentAt: &sentAt})

	later := testNow.Add(72 * time.Hour)
	category := model.CategoryDeadline
	notes := "offer deadline"
	got, err := s.Update(ctx, "alice", "open", ReminderUpdate{TriggerAt: &later, Category: &category, Notes: &notes})
	require.NoError(t, err)
	assert.True(t, got.TriggerAt.Equal(later))
	assert.Equal(t, model.CategoryDeadline, got.Category)
	assert.Equal(t, "offer deadline", got.Notes)

	past := testNow.Add(-time.Minute)
	_, err = s.Update(ctx, "alice", "open", ReminderUpdate{TriggerAt: &past})
	assert.ErrorIs(t, err, model.ErrValidation)

	bad := model.Category("PARTY")
	_, err = s.Update(ctx, "alice", "open", ReminderUpdate{Category: &bad})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = s.Update(ctx, "alice", "done", ReminderUpdate{Notes: &notes})
	assert.ErrorIs(t, err, model.ErrAlreadySent)
}
