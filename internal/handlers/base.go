package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
)

// respondError writes {error} with the status of err's kind. Unexpected
// failures are attached to the context so the request logger records them.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the request body into req. An empty body leaves req zero.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}
