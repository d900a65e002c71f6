package port

import (
	"context"

	"regscan/internal/domain"
)

// ExtractInput carries the data needed for a row extraction call.
type ExtractInput struct {
	ImageBytes   []byte
	ContentType  string
	ProductCodes []string
}

// RowExtractor abstracts the vision model provider that locates matching rows
// in an image and extracts paired registration numbers.
type RowExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*domain.ExtractionResult, error)
	// TestConnection verifies the provider is reachable and returns the model
	// that would be used for the next extraction.
	TestConnection(ctx context.Context) (model string, err error)
}
