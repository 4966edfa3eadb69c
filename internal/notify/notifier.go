// Package notify delivers order notifications to chat channels. Delivery is
// best-effort: the trading path treats a failed notification as a logged
// warning, never as a failed trade.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Sender is one delivery channel.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Dispatcher fans one message out to every configured sender.
type Dispatcher struct {
	senders []Sender
	logger  *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given senders. With no senders
// it is a no-op, which lets callers wire it unconditionally.
func NewDispatcher(senders []Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		senders: senders,
		logger:  logger.With(slog.String("component", "notify")),
	}
}

// Send delivers message to every sender. Errors from individual senders are
// collected and returned combined; one failing channel does not prevent
// delivery to the remaining ones.
func (d *Dispatcher) Send(ctx context.Context, message string) error {
	if len(d.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range d.senders {
		if err := s.Send(ctx, "hoodbot", message); err != nil {
			d.logger.ErrorContext(ctx, "notify: sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		d.logger.DebugContext(ctx, "notify: delivered",
			slog.String("sender", s.Name()),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
