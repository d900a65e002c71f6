package port

import (
	"context"

	"regscan/internal/domain"
)

// ReportEmail is the payload for an extraction report notification.
type ReportEmail struct {
	Attachment   []byte
	Filename     string
	ContentType  string
	ProductCodes []string
	Items        []domain.ExtractionItem
}

// SendResult reports the outcome of a send.
type SendResult struct {
	MessageID string
}

// EmailSender defines the contract for delivering extraction reports.
type EmailSender interface {
	SendExtractionReport(ctx context.Context, email ReportEmail) (*SendResult, error)
	// Verify checks provider credentials; when send is true it also delivers a
	// literal test message.
	Verify(ctx context.Context, send bool) error
}
