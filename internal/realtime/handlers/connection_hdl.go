package handlers

import (
	"context"
	"encoding/json"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/realtime/defs"
)

var _ primary.EventHandler = (*ConnectionHandler)(nil)

// ServerMessageID keys the indicator showing the server's greeting.
const ServerMessageID = "realtime:server"

// ConnectionHandler shows the greeting the server sends once the socket is associated.
type ConnectionHandler struct {
	Notifier primary.Notifier
	Logger   primary.Logger
}

func (h *ConnectionHandler) HandleEvent(ctx context.Context, data []byte) error {
	var msg defs.ConnectionData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &msg); err != nil {
			// some servers send a bare string
			var text string
			if json.Unmarshal(data, &text) != nil {
				h.Logger.Warn("Unreadable connection event", "error", err)
				return nil
			}
			msg.Message = text
		}
	}
	h.Logger.Info("Server greeting", "message", msg.Message)
	if h.Notifier != nil && msg.Message != "" {
		h.Notifier.Notify(domain.Notification{ID: ServerMessageID, Kind: domain.NotifySuccess, Message: msg.Message})
	}
	return nil
}
