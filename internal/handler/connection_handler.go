package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regscan/internal/service"
)

// ConnectionHandler handles the provider connection-test endpoints.
type ConnectionHandler struct {
	svc *service.ProcessService
}

// NewConnectionHandler creates a new ConnectionHandler.
func NewConnectionHandler(svc *service.ProcessService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// TestModel handles GET /test-model-connection. It verifies the model
// provider is reachable and reports the selected model.
func (h *ConnectionHandler) TestModel(c *gin.Context) {
	model, err := h.svc.TestModelConnection(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "MODEL_CONNECTION_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"model":      model,
		"request_id": RequestID(c),
	})
}

// TestEmail handles GET /test-email-connection[?send=true]. It verifies email
// provider credentials and optionally sends a literal test message.
func (h *ConnectionHandler) TestEmail(c *gin.Context) {
	send := c.Query("send") == "true"
	if err := h.svc.TestEmailConnection(c.Request.Context(), send); err != nil {
		RespondError(c, http.StatusInternalServerError, "EMAIL_CONNECTION_FAILED", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"verified":   true,
		"sent":       send,
		"request_id": RequestID(c),
	})
}

// Liveness handles GET /healthz.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
