package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thereayou/codecollab/pkg/auth"
)

type IdentityHandler struct {
	jwtManager *auth.JWTManager
	logger     *slog.Logger
}

// NewIdentityHandler accepts a nil manager when identity tokens are disabled.
func NewIdentityHandler(jwtManager *auth.JWTManager, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{jwtManager: jwtManager, logger: logger}
}

// Issue mints a guest userId and a signed token for it.
func (h *IdentityHandler) Issue(c *gin.Context) {
	if h.jwtManager == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "identity tokens are disabled"})
		return
	}

	id, err := h.jwtManager.Issue()
	if err != nil {
		h.logger.Error("issue identity", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue identity"})
		return
	}

	c.JSON(http.StatusCreated, id)
}
