package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"regscan/internal/domain"
)

// ModelPayload is the structurally validated JSON body of a model response.
// Semantic validation (emptiness, confidence threshold) happens downstream.
type ModelPayload struct {
	Items      []domain.ExtractionItem
	TotalFound int
	Confidence float64
}

// ParseModelResponse extracts and validates the JSON object from the model's
// free-text output. An optional fenced code block wrapper is stripped and the
// first top-level JSON object substring is parsed. total_found defaults to the
// parsed item count when absent or non-numeric.
func ParseModelResponse(raw string) (*ModelPayload, error) {
	text := stripCodeFence(raw)
	obj, err := firstJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedResponse, err, truncate(text, 200))
	}

	var body struct {
		Items      json.RawMessage `json:"items"`
		TotalFound json.RawMessage `json:"total_found"`
		Confidence *float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(obj), &body); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedResponse, err, truncate(obj, 200))
	}

	// A JSON null for items would otherwise decode as an empty array.
	if len(body.Items) == 0 || bytes.Equal(body.Items, []byte("null")) {
		return nil, fmt.Errorf("%w: missing items array (raw: %s)", domain.ErrMalformedResponse, truncate(obj, 200))
	}
	items, err := parseItems(body.Items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedResponse, err, truncate(string(body.Items), 200))
	}

	if body.Confidence == nil {
		return nil, fmt.Errorf("%w: confidence must be a number (raw: %s)", domain.ErrMalformedResponse, truncate(obj, 200))
	}

	totalFound := len(items)
	if len(body.TotalFound) > 0 {
		var n float64
		if err := json.Unmarshal(body.TotalFound, &n); err == nil {
			totalFound = int(n)
		}
	}

	return &ModelPayload{
		Items:      items,
		TotalFound: totalFound,
		Confidence: *body.Confidence,
	}, nil
}

// parseItems validates each item: product_code and business_reg_no are
// required strings; company_name, row_index, and raw_text are optional with
// expected types.
func parseItems(raw json.RawMessage) ([]domain.ExtractionItem, error) {
	var entries []struct {
		ProductCode   *string  `json:"product_code"`
		BusinessRegNo *string  `json:"business_reg_no"`
		CompanyName   *string  `json:"company_name"`
		RowIndex      *float64 `json:"row_index"`
		RawText       *string  `json:"raw_text"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("items is not a valid item array: %v", err)
	}

	items := make([]domain.ExtractionItem, 0, len(entries))
	for i, e := range entries {
		if e.ProductCode == nil || e.BusinessRegNo == nil {
			return nil, fmt.Errorf("item %d is missing product_code or business_reg_no", i)
		}
		item := domain.ExtractionItem{
			ProductCode:   *e.ProductCode,
			BusinessRegNo: *e.BusinessRegNo,
		}
		if e.CompanyName != nil {
			item.CompanyName = *e.CompanyName
		}
		if e.RowIndex != nil {
			item.RowIndex = int(*e.RowIndex)
		}
		if e.RawText != nil {
			item.RawText = *e.RawText
		}
		items = append(items, item)
	}
	return items, nil
}

// stripCodeFence removes one surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:] // drop the fence line, including any language tag
	}
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// firstJSONObject returns the first balanced top-level {...} substring,
// ignoring braces inside JSON strings.
func firstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
