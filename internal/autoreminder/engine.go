package autoreminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/rs/zerolog"

	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/model"
)

// ReminderCreator is the part of the reminder store the engine writes to.
type ReminderCreator interface {
	Create(ctx context.Context, r *model.Reminder) error
}

// Engine turns status changes into reminders. Callers hand changes over with Submit and never
// see the outcome; a single worker applies them and logs failures.
type Engine struct {
	store   ReminderCreator
	clk     clock.Clock
	log     zerolog.Logger
	timeout time.Duration

	queue   chan StatusChange
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// New returns an engine whose queue holds at most queueSize pending changes.
func New(store ReminderCreator, clk clock.Clock, queueSize int) *Engine {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Engine{
		store:   store,
		clk:     clk,
		log:     logger.New("autoreminder"),
		timeout: 30 * time.Second,
		queue:   make(chan StatusChange, queueSize),
	}
}

// Apply evaluates the rules for change and stores every resulting reminder.
// It returns how many reminders were created; failures of individual rules are joined.
func (e *Engine) Apply(ctx context.Context, change StatusChange) (int, error) {
	reminders := Evaluate(change, e.clk.Now())

	var (
		created int
		errs    []error
	)
	for i := range reminders {
		r := reminders[i]
		if err := e.store.Create(ctx, &r); err != nil {
			errs = append(errs, fmt.Errorf("create %s reminder for application %s: %w", r.Category, r.SubjectID, err))
			continue
		}
		created++
		e.log.Info().
			Str("reminder", r.ID).
			Str("application", r.SubjectID).
			Str("category", string(r.Category)).
			Time("triggerAt", r.TriggerAt).
			Msg("Created automatic reminder")
	}
	return created, errors.Join(errs...)
}

// Submit queues change for background processing without blocking.
// If the engine is stopped or its queue is full the change is dropped and logged.
func (e *Engine) Submit(change StatusChange) {
	if change.OldStatus == change.NewStatus {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		e.log.Warn().Str("application", change.Subject.ID).Msg("Engine not running, dropping status change")
		return
	}

	select {
	case e.queue <- change:
	default:
		e.log.Error().
			Str("application", change.Subject.ID).
			Str("from", string(change.OldStatus)).
			Str("to", string(change.NewStatus)).
			Msg("Auto-reminder queue full, dropping status change")
	}
}

// Start launches the background worker.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.queue = make(chan StatusChange, cap(e.queue))

	e.wg.Add(1)
	go e.run(e.queue)
	e.log.Info().Msg("Auto-reminder engine started")
}

// Stop refuses new changes and waits until the queued ones are processed.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.queue)
	e.mu.Unlock()

	e.wg.Wait()
	e.log.Info().Msg("Auto-reminder engine stopped")
}

func (e *Engine) run(queue <-chan StatusChange) {
	defer e.wg.Done()

	for change := range queue {
		e.process(change)
	}
}

func (e *Engine) process(change StatusChange) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().Interface("panic", r).Str("application", change.Subject.ID).Msg("Auto-reminder panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	if _, err := e.Apply(ctx, change); err != nil {
		e.log.Error().
			Err(err).
			Str("owner", change.OwnerID).
			Str("application", change.Subject.ID).
			Msg("Failed to create automatic reminders")
	}
}
