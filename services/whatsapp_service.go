// services/whatsapp_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"streampro-backend/config"
)

// Sender is the outbound messaging transport. Implementations must be safe
// to call from multiple workers concurrently; a nil error means the
// transport accepted the message.
type Sender interface {
	SendMessage(ctx context.Context, to, body string, userID uuid.UUID) error
}

// TwilioSender delivers WhatsApp messages through the Twilio API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSender(settings config.Settings) *TwilioSender {
	return &TwilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: settings.TwilioAccountSID,
			Password: settings.TwilioAuthToken,
		}),
		from: settings.TwilioWhatsAppFrom,
	}
}

func (s *TwilioSender) SendMessage(ctx context.Context, to, body string, userID uuid.UUID) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + normalizePhone(to))
	params.SetFrom("whatsapp:" + s.from)
	params.SetBody(body)

	// The Twilio client has no context support; run the blocking call on
	// its own goroutine so the per-attempt deadline still holds.
	done := make(chan error, 1)
	go func() {
		resp, err := s.client.Api.CreateMessage(params)
		if err != nil {
			done <- err
			return
		}
		if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
			done <- fmt.Errorf("twilio rejected message: %s", *resp.ErrorMessage)
			return
		}
		if resp.Sid != nil {
			log.Printf("Message sent to %s (user %s), SID: %s", to, userID, *resp.Sid)
		}
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizePhone(phone string) string {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned
}
