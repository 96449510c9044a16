package notify

import (
	"context"
	"errors"
	"fmt"

	"ac_watchdog/internal/config"

	gonotify "github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/twilio"
)

const smsSubject = "AC watchdog"

var errNoReceivers = errors.New("twilio.to_phones is empty")

// SMS texts raised alarms through Twilio. Clears are not sent.
type SMS struct {
	sender gonotify.Notifier
}

func NewSMS(cfg config.TwilioConfig) (*SMS, error) {
	if len(cfg.ToPhones) == 0 {
		return nil, errNoReceivers
	}
	svc, err := twilio.New(cfg.AccountSID, cfg.AuthToken, cfg.FromPhone)
	if err != nil {
		return nil, fmt.Errorf("twilio: %w", err)
	}
	svc.AddReceivers(cfg.ToPhones...)

	n := gonotify.New()
	n.UseServices(svc)
	return &SMS{sender: n}, nil
}

func (s *SMS) Notify(ctx context.Context, a Alarm) error {
	if !a.Raised {
		return nil
	}
	if err := s.sender.Send(ctx, smsSubject, a.Message()); err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	return nil
}
