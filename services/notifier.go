// services/notifier.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers operational messages (daily report, trial expiry,
// payment confirmations) to the account owner, not to end clients.
type Notifier interface {
	Notify(userID uuid.UUID, text string) error
}

// WhatsAppNotifier sends operator notifications through the same outbound
// transport used for client reminders, addressed to the reseller's own
// phone number.
type WhatsAppNotifier struct {
	store   Store
	sender  Sender
	timeout time.Duration
}

func NewWhatsAppNotifier(store Store, sender Sender, timeout time.Duration) *WhatsAppNotifier {
	return &WhatsAppNotifier{store: store, sender: sender, timeout: timeout}
}

func (n *WhatsAppNotifier) Notify(userID uuid.UUID, text string) error {
	user, err := n.store.GetUser(userID)
	if err != nil {
		return fmt.Errorf("notify: load user: %w", err)
	}
	if user.Phone == "" {
		return fmt.Errorf("notify: user %s has no phone configured", userID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	return n.sender.SendMessage(ctx, user.Phone, text, userID)
}
