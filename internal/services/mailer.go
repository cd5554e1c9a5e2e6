package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Email is a single outgoing message. Body is HTML; a plain-text
// alternative is derived from it at send time.
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// DeliveryReceipt describes an accepted message. PreviewURL is only
// set by senders that can show the message somewhere (the sandbox
// sender, provider dashboards).
type DeliveryReceipt struct {
	MessageID  string
	PreviewURL string
}

// DeliveryError wraps any failure from a Sender with the operation
// that failed.
type DeliveryError struct {
	Op  string
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("mail %s: %v", e.Op, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Sender delivers email. Implementations must be safe for concurrent
// use; the dispatch workers share one instance.
type Sender interface {
	Send(ctx context.Context, email Email) (*DeliveryReceipt, error)
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// htmlToText strips all markup for the plain-text alternative part.
func htmlToText(html string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(html))
}

// SandboxSender keeps messages in memory instead of delivering them.
// Used in development and tests.
type SandboxSender struct {
	mu     sync.Mutex
	outbox []Email
}

func NewSandboxSender() *SandboxSender {
	return &SandboxSender{}
}

func (s *SandboxSender) Send(ctx context.Context, email Email) (*DeliveryReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, &DeliveryError{Op: "send", Err: err}
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, email)
	s.mu.Unlock()

	id := uuid.NewString()
	return &DeliveryReceipt{
		MessageID:  id,
		PreviewURL: "sandbox://emails/" + id,
	}, nil
}

// Outbox returns a copy of every message sent so far.
func (s *SandboxSender) Outbox() []Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Email, len(s.outbox))
	copy(out, s.outbox)
	return out
}
