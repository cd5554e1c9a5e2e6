package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/resend/resend-go/v3"
)

// ResendConfig holds everything the Resend transport needs. FromEmail
// is used when an outgoing message carries no explicit sender.
type ResendConfig struct {
	APIKey      string
	FromEmail   string
	SendTimeout time.Duration
}

// ResendSender delivers email through the Resend API. The underlying
// client is built lazily on first send so that constructing the sender
// with incomplete config is harmless until a message actually goes out.
type ResendSender struct {
	config ResendConfig

	once    sync.Once
	client  *resend.Client
	initErr error
}

func NewResendSender(cfg ResendConfig) *ResendSender {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	return &ResendSender{config: cfg}
}

func (s *ResendSender) init() {
	if s.config.APIKey == "" {
		s.initErr = &DeliveryError{Op: "config", Err: errors.New("RESEND_API_KEY is not set")}
		return
	}
	s.client = resend.NewClient(s.config.APIKey)
}

func (s *ResendSender) Send(ctx context.Context, email Email) (*DeliveryReceipt, error) {
	s.once.Do(s.init)
	if s.initErr != nil {
		return nil, s.initErr
	}

	from := email.From
	if from == "" {
		from = s.config.FromEmail
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.SendTimeout)
	defer cancel()

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    htmlToText(email.HTML),
	}
	sent, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return nil, &DeliveryError{Op: "send", Err: err}
	}
	return &DeliveryReceipt{MessageID: sent.Id}, nil
}
