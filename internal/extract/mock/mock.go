package mock

import (
	"context"

	"github.com/google/uuid"

	"regscan/internal/domain"
	"regscan/internal/port"
)

// Extractor returns a fixed two-row synthetic result without touching the
// network, for local testing without live credentials.
type Extractor struct{}

// NewExtractor creates a mock row extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, input port.ExtractInput) (*domain.ExtractionResult, error) {
	code := ""
	if len(input.ProductCodes) > 0 {
		code = input.ProductCodes[0]
	}
	items := []domain.ExtractionItem{
		{
			ProductCode:   code,
			BusinessRegNo: "123-45-67890",
			CompanyName:   "Daehan Trading Co.",
			RowIndex:      1,
		},
		{
			ProductCode:   code,
			BusinessRegNo: "987-65-43210",
			CompanyName:   "Hanbit Industries",
			RowIndex:      2,
		},
	}
	return &domain.ExtractionResult{
		Items:         items,
		TotalFound:    len(items),
		Confidence:    0.95,
		Provider:      domain.ProviderMock,
		Model:         domain.ProviderMock,
		CorrelationID: uuid.New().String(),
	}, nil
}

func (e *Extractor) TestConnection(_ context.Context) (string, error) {
	return domain.ProviderMock, nil
}
