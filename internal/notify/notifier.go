// Package notify dispatches verification codes and receipts to guardians.
// Delivery failure is never fatal to a check-in flow: callers fall back to
// showing the code on-screen instead of dropping the user.
package notify

import (
	"context"
	"log"
)

// Notifier sends a short text message to a phone number
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// DisabledNotifier is used when no SMS provider is configured, for local
// development and tests. Every send is logged and reported as failed so
// callers exercise the degraded on-screen fallback.
type DisabledNotifier struct{}

func (DisabledNotifier) Send(ctx context.Context, phone, message string) error {
	log.Printf("SMS dispatch disabled, would send to %s: %s", phone, message)
	return ErrDispatchDisabled
}
