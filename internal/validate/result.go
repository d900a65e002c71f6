package validate

import (
	"fmt"
	"strings"

	"regscan/internal/domain"
)

// Result rejects empty or low-confidence extractions and normalizes every
// item's registration number in place. The emptiness check runs before the
// confidence check so an empty batch with confidence 0 reports the right
// failure.
func Result(res *domain.ExtractionResult, minConfidence float64) error {
	if len(res.Items) == 0 {
		return domain.ErrEmptyExtraction
	}
	if res.Confidence < minConfidence {
		return fmt.Errorf("%w: %.2f < %.2f", domain.ErrLowConfidence, res.Confidence, minConfidence)
	}
	for i := range res.Items {
		res.Items[i].BusinessRegNo = NormalizeRegNo(res.Items[i].BusinessRegNo)
	}
	return nil
}

// NormalizeRegNo strips non-digit characters and, when exactly 10 digits
// remain, reformats to the canonical 3-2-5 hyphenated form. Any other digit
// count passes through unmodified: malformed lengths are tolerated, not
// rejected.
func NormalizeRegNo(s string) string {
	digits := DigitsOnly(s)
	if len(digits) != 10 {
		return s
	}
	return digits[:3] + "-" + digits[3:5] + "-" + digits[5:]
}

// DigitsOnly returns only the ASCII digits of s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
