// Package notify provides core.Notifier implementations.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/aretw0/notecard/pkg/core"
)

// Func adapts a function to core.Notifier.
type Func func(ctx context.Context, n core.Notification) error

// Notify implements core.Notifier.
func (f Func) Notify(ctx context.Context, n core.Notification) error {
	return f(ctx, n)
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

// Notify implements core.Notifier.
func (l Log) Notify(ctx context.Context, n core.Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, n.Title,
		"app", n.AppName,
		"message", n.Message,
	)
	return nil
}

// Multi delivers to every notifier and joins their errors.
type Multi []core.Notifier

// Notify implements core.Notifier.
func (m Multi) Notify(ctx context.Context, n core.Notification) error {
	var errs []error
	for _, target := range m {
		if err := target.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Desktop shows a system notification through beeep, which talks to the
// notification service of Linux, macOS and Windows.
type Desktop struct {
	Icon string // path to an icon; empty uses the platform default

	// Send replaces beeep.Notify. Nil selects beeep.
	Send func(title, message, icon string) error
}

// Notify implements core.Notifier. beeep calls are not cancellable, so a
// cancelled ctx abandons the call instead of waiting for it.
func (d Desktop) Notify(ctx context.Context, n core.Notification) error {
	send := d.Send
	if send == nil {
		send = func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		}
	}

	title := n.Title
	if n.AppName != "" {
		title = n.AppName + ": " + n.Title
	}

	done := make(chan error, 1)
	go func() { done <- send(title, n.Message, d.Icon) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("desktop notification failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification: %w", ctx.Err())
	}
}
