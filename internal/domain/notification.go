package domain

import "time"

type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
	NotifyLoading NotificationKind = "loading"
	NotifyInfo    NotificationKind = "info"
)

// Notification is one user-facing indicator. Notifications sharing an ID replace each other.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
