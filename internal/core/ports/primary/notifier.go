package primary

import "gitlab.com/codearena.net/internal/domain"

// Notifier shows user-facing indicators. A notification replaces any earlier one with the same ID.
type Notifier interface {
	Notify(n domain.Notification)
	Dismiss(id string)
}
