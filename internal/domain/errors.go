package domain

import "errors"

var (
	ErrNoValidCodes        = errors.New("no valid product codes provided")
	ErrInvalidCodeFormat   = errors.New("product code does not match the expected format")
	ErrMissingFile         = errors.New("image file is required")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrExtractionFailed    = errors.New("extraction failed")
	ErrMalformedResponse   = errors.New("malformed model response")
	ErrEmptyExtraction     = errors.New("no matching rows found in image")
	ErrLowConfidence       = errors.New("extraction confidence below threshold")
	ErrConfig              = errors.New("invalid configuration")
)
