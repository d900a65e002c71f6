package router

import (
	"github.com/gin-gonic/gin"

	"regscan/internal/handler"
	"regscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(processH *handler.ProcessHandler, connH *handler.ConnectionHandler) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	r.GET("/healthz", handler.Liveness)

	r.POST("/process", processH.Process)
	r.GET("/test-model-connection", connH.TestModel)
	r.GET("/test-email-connection", connH.TestEmail)

	return r
}
