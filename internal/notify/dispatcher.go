package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/pathakanu/jobMemo/internal/model"
)

// settleWindow is how long Dispatch still waits for a sender's result after its context ended.
const settleWindow = 100 * time.Millisecond

// Sender performs the actual delivery of a notification.
type Sender interface {
	SendInterviewReminder(ctx context.Context, owner model.Owner, subject model.Subject) error
	SendGenericReminder(ctx context.Context, owner model.Owner, subject model.Subject, category model.Category) error
}

// Dispatcher routes a due reminder to the matching Sender operation.
// It never retries; a failed reminder stays unsent and is picked up again by the next pass.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
}

// NewDispatcher returns a dispatcher that gives each send at most timeout to finish.
// A zero timeout disables the limit.
func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Dispatch delivers one reminder. A nil error means the notification went out.
func (d *Dispatcher) Dispatch(ctx context.Context, due model.DueReminder) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	// Buffered so a sender that ignores ctx can finish after we gave up on it.
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("sender panicked: %v", r)
			}
		}()
		done <- d.send(ctx, due)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		// A send that finishes as the context expires still counts as delivered.
		settle := time.NewTimer(settleWindow)
		defer settle.Stop()
		select {
		case err = <-done:
		case <-settle.C:
			err = ctx.Err()
		}
	}
	if err != nil {
		return fmt.Errorf("dispatch reminder %s: %w", due.ID, err)
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, due model.DueReminder) error {
	switch due.Category {
	case model.CategoryInterview:
		return d.sender.SendInterviewReminder(ctx, due.Owner, due.Subject)
	default:
		return d.sender.SendGenericReminder(ctx, due.Owner, due.Subject, due.Category)
	}
}
