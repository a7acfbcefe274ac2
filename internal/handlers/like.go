package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

type LikeHandler struct {
	likes *services.LikeService
}

func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

type likeRequest struct {
	ID models.ID `json:"_id"`
	// IsLikedByUser is the client's view before the click. The stored state
	// wins when they disagree.
	IsLikedByUser bool `json:"islikedByUser"`
}

func (h *LikeHandler) Toggle(c *gin.Context) {
	var req likeRequest
	if !bindJSON(c, &req) {
		return
	}
	liked, err := h.likes.ToggleLike(c.Request.Context(), middleware.CurrentUser(c), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked_by_user": liked})
}

func (h *LikeHandler) IsLiked(c *gin.Context) {
	var req likeRequest
	if !bindJSON(c, &req) {
		return
	}
	ok, err := h.likes.IsLiked(c.Request.Context(), middleware.CurrentUser(c), req.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": ok})
}
