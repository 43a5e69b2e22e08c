package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/pathakanu/jobMemo/internal/autoreminder"
	"github.com/pathakanu/jobMemo/internal/logger"
	"github.com/pathakanu/jobMemo/internal/model"
	"github.com/pathakanu/jobMemo/internal/scheduler"
	"github.com/pathakanu/jobMemo/internal/store"
)

// OwnerHeader carries the id of the authenticated user, set by the fronting auth proxy.
const OwnerHeader = "X-User-ID"

// AdminTokenHeader must match the configured admin token to trigger a pass manually.
const AdminTokenHeader = "X-Admin-Token"

// Trigger runs a processing pass on demand.
type Trigger interface {
	Trigger(ctx context.Context) (scheduler.Summary, error)
}

// StatusChangeSink receives application status changes for automatic reminders.
type StatusChangeSink interface {
	Submit(change autoreminder.StatusChange)
}

// Server exposes reminder CRUD, the application status hook and the manual trigger over HTTP.
type Server struct {
	reminders    *store.ReminderStore
	applications *store.ApplicationStore
	trigger      Trigger
	autoRemind   StatusChangeSink
	adminToken   string
	log          zerolog.Logger
}

// New wires the HTTP surface. An empty adminToken leaves the manual trigger open.
func New(reminders *store.ReminderStore, applications *store.ApplicationStore, trigger Trigger, autoRemind StatusChangeSink, adminToken string) *Server {
	return &Server{
		reminders:    reminders,
		applications: applications,
		trigger:      trigger,
		autoRemind:   autoRemind,
		adminToken:   adminToken,
		log:          logger.New("api"),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	owned := r.NewRoute().Subrouter()
	owned.Use(requireOwner)
	owned.HandleFunc("/reminders", s.handleListReminders).Methods(http.MethodGet)
	owned.HandleFunc("/reminders", s.handleCreateReminder).Methods(http.MethodPost)
	owned.HandleFunc("/reminders/{id}", s.handleGetReminder).Methods(http.MethodGet)
	owned.HandleFunc("/reminders/{id}", s.handleUpdateReminder).Methods(http.MethodPatch)
	owned.HandleFunc("/reminders/{id}", s.handleDeleteReminder).Methods(http.MethodDelete)
	owned.HandleFunc("/applications/{id}/status", s.handleUpdateStatus).Methods(http.MethodPut)
	owned.HandleFunc("/applications/{id}", s.handleDeleteApplication).Methods(http.MethodDelete)

	r.HandleFunc("/admin/reminders/run", s.handleRunNow).Methods(http.MethodPost)
	return r
}

type ownerKey struct{}

func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+OwnerHeader+" header")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey{}, owner)))
	})
}

func ownerFrom(r *http.Request) string {
	owner, _ := r.Context().Value(ownerKey{}).(string)
	return owner
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRunNow(w http.ResponseWriter, r *http.Request) {
	if s.adminToken != "" && r.Header.Get(AdminTokenHeader) != s.adminToken {
		writeError(w, http.StatusForbidden, "invalid admin token")
		return
	}

	// The pass outlives a client that hangs up, like a timer-driven one.
	summary, err := s.trigger.Trigger(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, scheduler.ErrPassInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.log.Error().Err(err).Msg("Manual processing pass failed")
		writeError(w, http.StatusInternalServerError, "processing pass failed")
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

// writeStoreError maps store errors onto HTTP status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrAlreadySent):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error().Err(err).Msg("Store operation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
