package noop

import (
	"context"
	"log"
	"strings"

	"regscan/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending,
// for local development without email credentials.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendExtractionReport(_ context.Context, email port.ReportEmail) (*port.SendResult, error) {
	log.Printf("[NOOP EMAIL] extraction report for %s: %d item(s), attachment %s (%d bytes)",
		strings.Join(email.ProductCodes, ","), len(email.Items), email.Filename, len(email.Attachment))
	return &port.SendResult{MessageID: "noop"}, nil
}

func (s *noopSender) Verify(_ context.Context, send bool) error {
	log.Printf("[NOOP EMAIL] connection test (send=%v)", send)
	return nil
}
