package notify

import (
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/domain"
)

// ConnectivityID keys the real-time connection indicator.
const ConnectivityID = "realtime"

// ConnectivityListener turns channel state changes into the connection indicator. It is kept
// apart from submission notifications so a disconnect never touches a submission's indicator.
func ConnectivityListener(n primary.Notifier) primary.StateListener {
	return func(state domain.ConnectionState, err error) {
		switch {
		case state == domain.ConnConnected:
			n.Notify(domain.Notification{ID: ConnectivityID, Kind: domain.NotifySuccess, Message: "Connected to real-time updates"})
		case err != nil:
			n.Notify(domain.Notification{ID: ConnectivityID, Kind: domain.NotifyError, Message: "Real-time connection error: " + err.Error()})
		case state == domain.ConnDisconnected:
			n.Notify(domain.Notification{ID: ConnectivityID, Kind: domain.NotifyError, Message: "Lost connection to real-time updates"})
		case state == domain.ConnConnecting:
			n.Notify(domain.Notification{ID: ConnectivityID, Kind: domain.NotifyLoading, Message: "Connecting to real-time updates..."})
		}
	}
}
