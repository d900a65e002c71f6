package input

import (
	"fmt"
	"regexp"
	"strings"

	"regscan/internal/domain"
)

// acceptedImageTypes lists the content types the vision provider accepts.
var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// codeSeparators are stripped from inside each product code before matching.
var codeSeparators = strings.NewReplacer(" ", "", "\t", "", "-", "", "_", "")

// Validator normalizes and validates the raw request fields before any
// external call is made.
type Validator struct {
	codePattern  *regexp.Regexp
	maxFileBytes int64
}

// NewValidator compiles the configured product-code pattern.
func NewValidator(codePattern string, maxFileBytes int64) (*Validator, error) {
	re, err := regexp.Compile(codePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling code pattern: %w", err)
	}
	return &Validator{codePattern: re, maxFileBytes: maxFileBytes}, nil
}

// NormalizeCodes splits a comma-separated product-code list, trims and strips
// internal whitespace, hyphens, and underscores, and validates every survivor
// against the configured pattern. Rejection is all-or-nothing: one invalid
// code fails the whole request.
func (v *Validator) NormalizeCodes(raw string) ([]string, error) {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		code := codeSeparators.Replace(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, domain.ErrNoValidCodes
	}
	for _, code := range codes {
		if !v.codePattern.MatchString(code) {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCodeFormat, code)
		}
	}
	return codes, nil
}

// ValidateUpload checks the uploaded file's size and declared content type.
// Size is checked first so oversized payloads are rejected regardless of type.
func (v *Validator) ValidateUpload(contentType string, size int64) error {
	if size <= 0 {
		return domain.ErrMissingFile
	}
	if size > v.maxFileBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", domain.ErrFileTooLarge, size, v.maxFileBytes)
	}
	if !acceptedImageTypes[contentType] {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, contentType)
	}
	return nil
}

// MaxFileBytes returns the configured payload ceiling.
func (v *Validator) MaxFileBytes() int64 {
	return v.maxFileBytes
}
