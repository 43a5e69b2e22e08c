package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"
	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/model"
)

// ErrPassInProgress is returned when a pass is requested while another one is still running.
var ErrPassInProgress = errors.New("processing pass already in progress")

// Store is the part of the reminder store the scheduler needs.
type Store interface {
	FindDue(ctx context.Context, now time.Time) ([]model.DueReminder, error)
	MarkSent(ctx context.Context, id string) error
}

// Dispatcher delivers a single reminder; nil means delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, due model.DueReminder) error
}

// Options configures a Scheduler. Zero values get defaults.
type Options struct {
	Interval time.Duration
	Clock    clock.Clock
	Location *time.Location
}

// Summary describes one processing pass.
type Summary struct {
	RunID     string        `json:"runId"`
	Due       int           `json:"due"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
}

// Scheduler periodically delivers due reminders. At most one pass runs at a time,
// whether it was started by the timer or by Trigger.
type Scheduler struct {
	store      Store
	dispatcher Dispatcher
	clk        clock.Clock
	interval   time.Duration
	cron       *cron.Cron
	log        zerolog.Logger

	// pass is held for the whole duration of a processing pass.
	pass    sync.Mutex
	running atomic.Bool
	mu      sync.Mutex
	started bool
}

// New returns a stopped scheduler; call Start to begin processing.
func New(store Store, dispatcher Dispatcher, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	l := logger.New("scheduler")
	return &Scheduler{
		store:      store,
		dispatcher: dispatcher,
		clk:        opts.Clock,
		interval:   opts.Interval,
		cron:       cron.New(cron.WithLocation(opts.Location), cron.WithLogger(logger.Cron(l))),
		log:        l,
	}
}

// Start registers the recurring job, starts the timer and then runs one pass before returning,
// so reminders that became due while the process was down go out right away.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	s.cron.Start()
	s.started = true
	s.mu.Unlock()

	s.log.Info().Dur("interval", s.interval).Msg("Scheduler started")
	s.tick()
	return nil
}

// Stop cancels the timer and waits for a pass that is already running to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	// Wait for a manually triggered pass as well.
	s.pass.Lock()
	s.pass.Unlock()
	s.log.Info().Msg("Scheduler stopped")
}

// Trigger runs a pass immediately, outside the timer. It is subject to the same
// single-pass guard and returns ErrPassInProgress when a pass is already running.
func (s *Scheduler) Trigger(ctx context.Context) (Summary, error) {
	return s.RunPass(ctx)
}

// IsRunning reports whether a pass is currently executing.
func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) tick() {
	// Passes are not cancelled on shutdown; the dispatcher bounds each send instead.
	_, _ = s.RunPass(context.Background())
}

// RunPass finds every due reminder, dispatches them one after another and marks the
// delivered ones as sent. A failed dispatch leaves the reminder unsent for the next pass
// and does not stop the batch. Only a failure to load the due set is returned as an error;
// it is logged here as well.
func (s *Scheduler) RunPass(ctx context.Context) (Summary, error) {
	if !s.pass.TryLock() {
		s.log.Info().Msg("Previous processing pass still running, skipping")
		return Summary{}, ErrPassInProgress
	}
	s.running.Store(true)
	defer func() {
		s.running.Store(false)
		s.pass.Unlock()
	}()

	summary := Summary{RunID: xid.New().String(), StartedAt: s.clk.Now()}
	log := s.log.With().Str("run", summary.RunID).Logger()

	err := s.process(ctx, log, &summary)
	summary.Duration = s.clk.Now().Sub(summary.StartedAt)
	if err != nil {
		log.Error().Err(err).Msg("Processing pass aborted")
		return summary, err
	}

	if summary.Due > 0 {
		log.Info().
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Dur("took", summary.Duration).
			Msg("Processing pass finished")
	}
	return summary, nil
}

func (s *Scheduler) process(ctx context.Context, log zerolog.Logger, summary *Summary) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing pass panicked: %v", r)
		}
	}()

	due, err := s.store.FindDue(ctx, summary.StartedAt)
	if err != nil {
		return err
	}
	summary.Due = len(due)
	if len(due) == 0 {
		log.Info().Msg("No due reminders")
		return nil
	}

	log.Info().Int("due", len(due)).Msg("Processing due reminders")
	for _, r := range due {
		if err := s.dispatcher.Dispatch(ctx, r); err != nil {
			summary.Failed++
			log.Error().Err(err).Str("reminder", r.ID).Str("owner", r.OwnerID).Msg("Failed to send reminder")
			continue
		}

		// The notification is out; if this write fails the reminder will be sent again next pass.
		if err := s.store.MarkSent(ctx, r.ID); err != nil {
			summary.Failed++
			log.Error().Err(err).Str("reminder", r.ID).Msg("Reminder sent but could not be marked as sent")
			continue
		}
		summary.Succeeded++
		log.Debug().Str("reminder", r.ID).Str("category", string(r.Category)).Msg("Reminder sent")
	}
	return nil
}
