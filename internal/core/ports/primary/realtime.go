package primary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// UpdateCallback receives submission updates in transport order.
type UpdateCallback func(event domain.UpdateEvent)

// StateListener receives connectivity changes of the real-time channel.
type StateListener func(state domain.ConnectionState, err error)

// Subscription is the handle returned by Subscribe.
type Subscription string

// RealtimeChannel delivers submission_update events once authenticated with a user id.
type RealtimeChannel interface {
	Connect(ctx context.Context) error
	Authenticate(userID string) error
	Subscribe(cb UpdateCallback) Subscription
	Unsubscribe(sub Subscription)
	OnStateChange(l StateListener) Subscription
	State() domain.ConnectionState
	SendMessage(payload interface{}) error
	Dispose() error
}

// EventHandler handles one named event received on the real-time channel.
type EventHandler interface {
	HandleEvent(ctx context.Context, data []byte) error
}
