package notifications

import (
	"context"
	"fmt"

	"github.com/maisonnoor/boutique-backend/pkg/logger"
)

// LogNotifier emits notifications through the structured log. API callers see
// the same message in the response envelope; the log copy is for operators.
type LogNotifier struct {
	logg *logger.Logger
}

// NewLogNotifier wires the logging notifier.
func NewLogNotifier(logg *logger.Logger) (*LogNotifier, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &LogNotifier{logg: logg}, nil
}

func (n *LogNotifier) Notify(ctx context.Context, severity Severity, message string) {
	ctx = n.logg.WithField(ctx, "severity", string(severity))
	switch severity {
	case SeverityWarning:
		n.logg.Warn(ctx, message)
	case SeverityError:
		n.logg.Error(ctx, message, nil)
	default:
		n.logg.Info(ctx, message)
	}
}

// StaticConfirmer answers every prompt with a fixed verdict. The HTTP layer
// maps an explicit per-request confirmation flag onto it.
type StaticConfirmer bool

func (c StaticConfirmer) Confirm(context.Context, string) bool {
	return bool(c)
}
