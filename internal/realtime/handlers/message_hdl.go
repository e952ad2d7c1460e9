package handlers

import (
	"context"

	"gitlab.com/codearena.net/internal/core/ports/primary"
)

var _ primary.EventHandler = (*MessageHandler)(nil)

// MessageHandler logs free-form messages from the server.
type MessageHandler struct {
	Logger primary.Logger
}

func (h *MessageHandler) HandleEvent(ctx context.Context, data []byte) error {
	h.Logger.Info("Server message", "data", string(data))
	return nil
}
