package notifications

import "context"

// Severity classifies storefront toast notifications.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notifier receives user-facing messages produced by the state stores, such
// as "already in wishlist" on a duplicate add.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// Confirmer answers destructive-action prompts. Clearing a cart or wishlist
// proceeds only when Confirm returns true.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}
