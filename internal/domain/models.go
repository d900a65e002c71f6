package domain

import "time"

// Extraction providers.
const (
	ProviderClaude = "claude"
	ProviderMock   = "mock"
)

// ExtractionItem is one matched row from the source image. The registration
// number is normalized exactly once by the result validator; items are
// immutable afterwards.
type ExtractionItem struct {
	ProductCode   string `json:"product_code"`
	BusinessRegNo string `json:"business_reg_no"`
	CompanyName   string `json:"company_name,omitempty"`
	RowIndex      int    `json:"row_index,omitempty"`
	RawText       string `json:"raw_text,omitempty"`
}

// ExtractionResult is the full output of one model call. TotalFound is the
// provider-reported count and need not equal len(Items). Confidence is a
// single batch-level score, not per-item.
type ExtractionResult struct {
	Items         []ExtractionItem `json:"items"`
	TotalFound    int              `json:"total_found"`
	Confidence    float64          `json:"confidence"`
	Provider      string           `json:"provider"`
	Model         string           `json:"model"`
	CorrelationID string           `json:"correlation_id"`
}

// ExportRow is one line of the tabular export artifact, derived 1:1 from an
// ExtractionItem plus the per-run processing timestamp.
type ExportRow struct {
	Seq         int
	ProductCode string
	CompanyName string
	RegNo       string
	RegNoDigits string
	ProcessedAt time.Time
}
