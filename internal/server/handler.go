// Package server hosts the public HTTP listener.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/k8poc/backend/internal/logger"
)

const (
	// HomeMessage is the body returned by GET /.
	HomeMessage = "Succefuliy Deployed and application Access now"
	// homeLogLine is written to the log on every request to /.
	homeLogLine = "=======Test Main"
)

// Handler serves the public routes.
type Handler struct{}

// NewHandler creates a Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Home answers GET and HEAD / with the deployment confirmation message.
// The diagnostic line is written whatever the log level.
func (h *Handler) Home(c *gin.Context) {
	logger.Printf(homeLogLine)
	c.String(http.StatusOK, HomeMessage)
}
