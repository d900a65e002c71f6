package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"regscan/internal/domain"
	"regscan/internal/service"
)

// multipartOverheadBytes is the slack allowed on top of the file ceiling for
// boundaries, part headers, and the productCode field.
const multipartOverheadBytes = 16 << 10

// ProcessHandler handles the extraction endpoint.
type ProcessHandler struct {
	svc *service.ProcessService
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(svc *service.ProcessService) *ProcessHandler {
	return &ProcessHandler{svc: svc}
}

// ProcessResponse is the success envelope for POST /process.
type ProcessResponse struct {
	OK            bool                    `json:"ok"`
	ProductCode   string                  `json:"product_code"`
	Items         []domain.ExtractionItem `json:"items"`
	TotalFound    int                     `json:"total_found"`
	Confidence    float64                 `json:"confidence"`
	Emailed       bool                    `json:"emailed"`
	EmailError    string                  `json:"email_error,omitempty"`
	Provider      string                  `json:"provider"`
	Model         string                  `json:"model"`
	CorrelationID string                  `json:"correlation_id"`
	RequestID     string                  `json:"request_id"`
}

// Process handles POST /process
// @Summary Extract registration numbers for product codes from an image
// @Accept multipart/form-data
// @Param productCode formData string true "Comma-separated product codes"
// @Param image formData file true "Table image (jpeg, png, webp, or gif, max 4.5MB)"
func (h *ProcessHandler) Process(c *gin.Context) {
	// Cap the body before multipart parsing so an over-limit upload is cut
	// off mid-read instead of being buffered in full.
	limit := h.svc.MaxUploadBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverheadBytes)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			HandleError(c, fmt.Errorf("%w: request body exceeds %d bytes", domain.ErrFileTooLarge, limit))
		case errors.Is(err, http.ErrMissingFile):
			RespondError(c, http.StatusBadRequest, "MISSING_FILE", "image field is required")
		default:
			RespondError(c, http.StatusBadRequest, "BAD_FORM", "could not parse multipart form")
		}
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		HandleError(c, fmt.Errorf("%w: %d bytes (max %d)", domain.ErrFileTooLarge, header.Size, limit))
		return
	}

	productCode := c.PostForm("productCode")

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	size := header.Size
	if size == 0 {
		size = int64(len(imageBytes))
	}

	out, err := h.svc.Process(c.Request.Context(), service.ProcessInput{
		ProductCode: productCode,
		ImageBytes:  imageBytes,
		ContentType: contentType,
		Size:        size,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProcessResponse{
		OK:            true,
		ProductCode:   strings.Join(out.ProductCodes, ","),
		Items:         out.Items,
		TotalFound:    out.TotalFound,
		Confidence:    out.Confidence,
		Emailed:       out.Emailed,
		EmailError:    out.EmailError,
		Provider:      out.Provider,
		Model:         out.Model,
		CorrelationID: out.CorrelationID,
		RequestID:     RequestID(c),
	})
}
