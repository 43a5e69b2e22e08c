package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/pathakanu/jobMemo/internal/autoreminder"
	"github.com/pathakanu/jobMemo/internal/model"
	"github.com/pathakanu/jobMemo/internal/store"
)

type createReminderRequest struct {
	SubjectID string         `json:"subjectId"`
	TriggerAt time.Time      `json:"triggerAt"`
	Category  model.Category `json:"category"`
	Notes     string         `json:"notes"`
}

type updateReminderRequest struct {
	TriggerAt *time.Time      `json:"triggerAt"`
	Category  *model.Category `json:"category"`
	Notes     *string         `json:"notes"`
}

type updateStatusRequest struct {
	Status model.ApplicationStatus `json:"status"`
}

func (s *Server) handleListReminders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reminders, err := s.reminders.List(r.Context(), ownerFrom(r), filter)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminders)
}

func parseListFilter(r *http.Request) (store.ListFilter, error) {
	q := r.URL.Query()
	filter := store.ListFilter{
		SubjectID: q.Get("subjectId"),
		Category:  model.Category(q.Get("category")),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return filter, fmt.Errorf("unknown category %q", filter.Category)
	}
	if raw := q.Get("sent"); raw != "" {
		sent, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, fmt.Errorf("invalid sent filter %q", raw)
		}
		filter.Sent = &sent
	}
	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("invalid %s timestamp %q", key, raw)
		}
		*dst = &ts
	}
	return filter, nil
}

func (s *Server) handleCreateReminder(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner := ownerFrom(r)
	if _, err := s.applications.Get(r.Context(), owner, req.SubjectID); err != nil {
		s.writeStoreError(w, err)
		return
	}

	reminder := &model.Reminder{
		OwnerID:   owner,
		SubjectID: req.SubjectID,
		TriggerAt: req.TriggerAt,
		Category:  req.Category,
		Notes:     req.Notes,
	}
	if err := s.reminders.Create(r.Context(), reminder); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reminder)
}

func (s *Server) handleGetReminder(w http.ResponseWriter, r *http.Request) {
	reminder, err := s.reminders.Get(r.Context(), ownerFrom(r), mux.Vars(r)["id"])
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

func (s *Server) handleUpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req updateReminderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reminder, err := s.reminders.Update(r.Context(), ownerFrom(r), mux.Vars(r)["id"], store.ReminderUpdate{
		TriggerAt: req.TriggerAt,
		Category:  req.Category,
		Notes:     req.Notes,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

func (s *Server) handleDeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := s.reminders.Delete(r.Context(), ownerFrom(r), mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpdateStatus persists the new status first; automatic reminders are derived afterwards
// in the background and can never fail the request.
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	owner := ownerFrom(r)
	old, app, err := s.applications.UpdateStatus(r.Context(), owner, mux.Vars(r)["id"], req.Status)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.autoRemind.Submit(autoreminder.StatusChange{
		OwnerID:   owner,
		Subject:   *app,
		OldStatus: old,
		NewStatus: app.Status,
	})
	writeJSON(w, http.StatusOK, app)
}

func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := s.applications.Delete(r.Context(), ownerFrom(r), mux.Vars(r)["id"]); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
