package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/realtime/connectionmanager"
)

var _ primary.EventHandler = (*SubmissionUpdateHandler)(nil)

// SubmissionUpdateHandler fans submission_update events out to subscribers.
type SubmissionUpdateHandler struct {
	ConnectionMgr *connectionmanager.ConnectionManager
	Logger        primary.Logger
}

// HandleEvent implements the EventHandler interface
func (h *SubmissionUpdateHandler) HandleEvent(ctx context.Context, data []byte) error {
	var ev domain.UpdateEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		h.Logger.Error("Failed to parse submission update", "error", err)
		return fmt.Errorf("invalid submission update: %w", err)
	}
	if ev.SubmissionID == "" {
		h.Logger.Warn("Submission update without submissionId")
		return nil
	}

	h.Logger.Debug("Submission update received", "submissionId", ev.SubmissionID, "status", ev.Data.Status, "results", len(ev.Data.Results))
	h.ConnectionMgr.DispatchUpdate(ev)
	return nil
}
