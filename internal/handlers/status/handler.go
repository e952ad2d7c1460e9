// Package status serves the local read-only status API.
package status

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/handlers"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// ViewSource is the in-process reconciler.
type ViewSource interface {
	View() domain.SubmissionView
}

type NotificationSource interface {
	List() []domain.Notification
}

type ConnectionSource interface {
	State() domain.ConnectionState
}

// Dependencies of the handler. Any of them may be nil; the matching route then answers
// from whatever is left or with 503.
type Dependencies struct {
	Views         ViewSource
	ViewStore     secondary.ViewStore
	History       secondary.HistoryRepository
	Notifications NotificationSource
	Connection    ConnectionSource
	Metrics       http.Handler
}

type Handler struct {
	deps   Dependencies
	logger primary.Logger
}

func NewStatusHandler(deps Dependencies, logger primary.Logger) *Handler {
	return &Handler{
		deps:   deps,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/health", h.Health).Methods("GET")
	router.HandleFunc("/api/view", h.GetView).Methods("GET")
	router.HandleFunc("/api/views/{submissionId}", h.GetStoredView).Methods("GET")
	router.HandleFunc("/api/notifications", h.ListNotifications).Methods("GET")
	router.HandleFunc("/api/connection", h.GetConnection).Methods("GET")
	router.HandleFunc("/api/history", h.ListHistory).Methods("GET")
	if h.deps.Metrics != nil {
		router.Handle("/metrics", h.deps.Metrics).Methods("GET")
	}
}

func (h *Handler) connectionState() domain.ConnectionState {
	if h.deps.Connection == nil {
		return domain.ConnDisconnected
	}
	return h.deps.Connection.State()
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"connection": h.connectionState(),
	})
}

// GetView answers with the live view when this process runs the watcher, otherwise with
// the active view from the store.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	if h.deps.Views != nil {
		handlers.ResponseWithJson(w, http.StatusOK, h.deps.Views.View())
		return
	}
	if h.deps.ViewStore == nil {
		handlers.ResponseError(w, "no view source configured", http.StatusServiceUnavailable)
		return
	}

	view, err := h.deps.ViewStore.GetActiveView(r.Context())
	if err != nil {
		h.logger.Error("Failed to read active view", "error", err)
		handlers.ResponseFailure(w, "failed to read view", err)
		return
	}
	if view == nil {
		handlers.ResponseWithJson(w, http.StatusOK, domain.SubmissionView{State: domain.ViewIdle, Outcomes: []domain.OutcomeView{}})
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, view)
}

func (h *Handler) GetStoredView(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["submissionId"]
	if h.deps.ViewStore == nil {
		handlers.ResponseError(w, "view store not configured", http.StatusServiceUnavailable)
		return
	}

	view, err := h.deps.ViewStore.GetView(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to read view", "submissionId", id, "error", err)
		handlers.ResponseFailure(w, "failed to read view", err)
		return
	}
	if view == nil {
		handlers.ResponseError(w, "view not found", http.StatusNotFound)
		return
	}
	handlers.ResponseWithJson(w, http.StatusOK, view)
}

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list := []domain.Notification{}
	if h.deps.Notifications != nil {
		list = append(list, h.deps.Notifications.List()...)
	}
	handlers.ResponseWithJson(w, http.StatusOK, list)
}

func (h *Handler) GetConnection(w http.ResponseWriter, r *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]interface{}{
		"state": h.connectionState(),
	})
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		handlers.ResponseError(w, "history not configured", http.StatusServiceUnavailable)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			handlers.ResponseError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := h.deps.History.ListEntries(r.Context(), r.URL.Query().Get("problemId"), limit)
	if err != nil {
		h.logger.Error("Failed to list history", "error", err)
		handlers.ResponseFailure(w, "failed to list history", err)
		return
	}
	if entries == nil {
		entries = []*domain.HistoryEntry{}
	}
	handlers.ResponseWithJson(w, http.StatusOK, entries)
}
