package autoreminder

import (
	"fmt"
	"time"

	"github.com/pathakanu/jobMemo/internal/model"
)

const (
	// InterviewLead is how long before the interview the reminder fires.
	InterviewLead = 24 * time.Hour
	// FollowUpDelay is how long after applying the follow-up reminder fires.
	FollowUpDelay = 7 * 24 * time.Hour
)

// StatusChange describes an application moving from one status to another.
type StatusChange struct {
	OwnerID   string
	Subject   model.Application
	OldStatus model.ApplicationStatus
	NewStatus model.ApplicationStatus
}

// Evaluate decides which reminders a status change should produce. It has no side effects.
// Both rules are checked independently; an unchanged status never produces anything.
func Evaluate(change StatusChange, now time.Time) []model.Reminder {
	if change.OldStatus == change.NewStatus {
		return nil
	}

	var out []model.Reminder

	if change.NewStatus == model.StatusInterview && change.Subject.InterviewDate != nil {
		triggerAt := change.Subject.InterviewDate.Add(-InterviewLead)
		// A reminder that would already be due is useless, skip it.
		if triggerAt.After(now) {
			out = append(out, model.Reminder{
				OwnerID:   change.OwnerID,
				SubjectID: change.Subject.ID,
				TriggerAt: triggerAt,
				Category:  model.CategoryInterview,
				Notes:     fmt.Sprintf("Interview with %s for %s", change.Subject.Company, change.Subject.Title),
			})
		}
	}

	if change.NewStatus == model.StatusApplied && change.OldStatus != model.StatusApplied {
		out = append(out, model.Reminder{
			OwnerID:   change.OwnerID,
			SubjectID: change.Subject.ID,
			TriggerAt: now.Add(FollowUpDelay),
			Category:  model.CategoryFollowUp,
			Notes:     fmt.Sprintf("Follow up on your %s application at %s", change.Subject.Title, change.Subject.Company),
		})
	}

	return out
}
