package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

type AdminHandler struct {
	comments *services.CommentService
}

func NewAdminHandler(comments *services.CommentService) *AdminHandler {
	return &AdminHandler{comments: comments}
}

// ReconcileCounters recounts one post's comment counters from its comments.
func (h *AdminHandler) ReconcileCounters(c *gin.Context) {
	var req struct {
		PostID models.ID `json:"post_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.PostID.IsZero() {
		respondError(c, apperr.Validation("Post id is required"))
		return
	}
	rc, err := h.comments.ReconcileCounters(c.Request.Context(), req.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}

func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
