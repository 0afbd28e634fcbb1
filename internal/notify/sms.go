package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// ErrDispatchDisabled indicates no SMS provider is configured
var ErrDispatchDisabled = errors.New("sms dispatch disabled")

// SMSNotifier sends text messages through Twilio
type SMSNotifier struct {
	client    *twilio.RestClient
	fromPhone string
}

// NewSMSNotifier creates a Twilio-backed notifier. With empty credentials
// it returns a DisabledNotifier instead, preserving the degraded
// on-screen code fallback in unconfigured environments.
func NewSMSNotifier(accountSID, authToken, fromPhone string) Notifier {
	if accountSID == "" || authToken == "" || fromPhone == "" {
		log.Println("SMS notifier disabled: Twilio credentials not configured")
		return DisabledNotifier{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	log.Printf("SMS notifier enabled: from=%s", fromPhone)
	return &SMSNotifier{client: client, fromPhone: fromPhone}
}

// Send dispatches one SMS. The context deadline bounds how long a slow
// provider can hold up the caller.
func (n *SMSNotifier) Send(ctx context.Context, phone, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(n.fromPhone)
	params.SetBody(message)

	done := make(chan error, 1)
	go func() {
		_, err := n.client.Api.CreateMessage(params)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("sms dispatch to %s: %w", phone, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send sms to %s: %w", phone, err)
		}
	}

	log.Printf("SMS sent: to=%s", phone)
	return nil
}
