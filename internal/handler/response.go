package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"regscan/internal/domain"
)

// ErrorResponse is the envelope for all failed requests.
type ErrorResponse struct {
	OK        bool   `json:"ok"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, ErrorResponse{
		OK:        false,
		ErrorCode: code,
		Message:   msg,
		RequestID: RequestID(c),
	})
}

// RequestID returns the request id injected by the middleware.
func RequestID(c *gin.Context) string {
	id, _ := c.Get("request_id")
	s, _ := id.(string)
	return s
}

// MapDomainError translates domain errors to HTTP status codes, stable
// machine-readable codes, and human messages.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNoValidCodes):
		return http.StatusBadRequest, "NO_VALID_CODES", "no valid product codes provided"
	case errors.Is(err, domain.ErrInvalidCodeFormat):
		return http.StatusBadRequest, "INVALID_CODE_FORMAT", "product code does not match the expected format"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "image file is required"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpeg, png, webp, gif"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrEmptyExtraction):
		return http.StatusUnprocessableEntity, "EMPTY_EXTRACTION", "no matching rows found; verify the code appears in the image"
	case errors.Is(err, domain.ErrLowConfidence):
		return http.StatusUnprocessableEntity, "LOW_CONFIDENCE", "extraction confidence too low; retake the photo with better lighting"
	case errors.Is(err, domain.ErrMalformedResponse):
		return http.StatusUnprocessableEntity, "MALFORMED_RESPONSE", "model returned an unreadable response; try again"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "extraction failed after retries; try again later"
	case errors.Is(err, domain.ErrConfig):
		return http.StatusInternalServerError, "CONFIG_ERROR", "service is misconfigured"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		log.Printf("[%s] internal error: %v", RequestID(c), err)
	}
	RespondError(c, status, code, msg)
}
