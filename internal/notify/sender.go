package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/model"
)

// Channel transports a rendered message to a contact address.
type Channel interface {
	Send(ctx context.Context, to, body string) error
}

// Composer may rewrite a rendered message before it is sent.
type Composer interface {
	Compose(ctx context.Context, draft string) (string, error)
}

// StubSender logs notifications instead of delivering them.
type StubSender struct {
	log zerolog.Logger
}

// NewStubSender returns a sender that only logs.
func NewStubSender() *StubSender {
	return &StubSender{log: logger.New("notify-stub")}
}

// SendInterviewReminder logs the interview reminder and reports success.
func (s *StubSender) SendInterviewReminder(_ context.Context, owner model.Owner, subject model.Subject) error {
	s.log.Info().Str("to", owner.Contact).Str("application", subject.ID).Msg("Would send interview reminder")
	return nil
}

// SendGenericReminder logs the reminder and reports success.
func (s *StubSender) SendGenericReminder(_ context.Context, owner model.Owner, subject model.Subject, category model.Category) error {
	s.log.Info().Str("to", owner.Contact).Str("application", subject.ID).Str("category", string(category)).Msg("Would send reminder")
	return nil
}

// MessageSender renders a text message per category and sends it over a Channel.
type MessageSender struct {
	channel  Channel
	composer Composer
	location *time.Location
	log      zerolog.Logger
}

// NewMessageSender builds a sender. composer may be nil; dates are rendered in loc.
func NewMessageSender(channel Channel, composer Composer, loc *time.Location) *MessageSender {
	if loc == nil {
		loc = time.UTC
	}
	return &MessageSender{
		channel:  channel,
		composer: composer,
		location: loc,
		log:      logger.New("notify"),
	}
}

var errNoContact = errors.New("owner has no contact address")

func (s *MessageSender) SendInterviewReminder(ctx context.Context, owner model.Owner, subject model.Subject) error {
	return s.deliver(ctx, owner, s.interviewMessage(owner, subject))
}

func (s *MessageSender) SendGenericReminder(ctx context.Context, owner model.Owner, subject model.Subject, category model.Category) error {
	return s.deliver(ctx, owner, s.genericMessage(owner, subject, category))
}

func (s *MessageSender) deliver(ctx context.Context, owner model.Owner, draft string) error {
	if strings.TrimSpace(owner.Contact) == "" {
		return errNoContact
	}

	body := draft
	if s.composer != nil {
		composed, err := s.composer.Compose(ctx, draft)
		if err != nil {
			s.log.Warn().Err(err).Msg("Composer failed, sending plain message")
		} else {
			body = composed
		}
	}
	return s.channel.Send(ctx, owner.Contact, body)
}

func (s *MessageSender) interviewMessage(owner model.Owner, subject model.Subject) string {
	var sb strings.Builder
	sb.WriteString(greeting(owner))
	sb.WriteString(fmt.Sprintf("your interview with %s for %s", orUnknown(subject.Company), orUnknown(subject.Title)))
	if subject.InterviewDate != nil {
		sb.WriteString(" is on ")
		sb.WriteString(subject.InterviewDate.In(s.location).Format("Mon Jan 2 at 15:04"))
	} else {
		sb.WriteString(" is coming up")
	}
	sb.WriteString(". Good luck!")
	return sb.String()
}

func (s *MessageSender) genericMessage(owner model.Owner, subject model.Subject, category model.Category) string {
	target := fmt.Sprintf("%s at %s", orUnknown(subject.Title), orUnknown(subject.Company))
	var action string
	switch category {
	case model.CategoryFollowUp:
		action = "time to follow up on your application for " + target
	case model.CategoryDeadline:
		action = "a deadline is approaching for " + target
	case model.CategoryResponse:
		action = "you are due to respond regarding " + target
	default:
		action = "you have a reminder about " + target
	}
	return greeting(owner) + action + "."
}

func greeting(owner model.Owner) string {
	if name := strings.TrimSpace(owner.Name); name != "" {
		return "Hi " + name + ", "
	}
	return "Hi, "
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unknown)"
	}
	return s
}
