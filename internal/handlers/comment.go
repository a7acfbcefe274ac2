package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type addCommentRequest struct {
	ID             models.ID `json:"_id"`
	PostID         models.ID `json:"post_id"`
	PostAuthor     models.ID `json:"post_author"`
	Comment        string    `json:"comment"`
	ReplyingTo     models.ID `json:"replying_to"`
	NotificationID models.ID `json:"notification_id"`
}

type addCommentResponse struct {
	Comment     string      `json:"comment"`
	CommentedAt time.Time   `json:"commentedAt"`
	ID          models.ID   `json:"_id"`
	UserID      models.ID   `json:"user_id"`
	Children    []models.ID `json:"children"`
}

func (h *CommentHandler) Add(c *gin.Context) {
	var req addCommentRequest
	if !bindJSON(c, &req) {
		return
	}
	postID := req.ID
	if postID.IsZero() {
		postID = req.PostID
	}

	comment, err := h.comments.AddComment(c.Request.Context(), services.AddCommentInput{
		PostID:         postID,
		PostAuthor:     req.PostAuthor,
		Body:           req.Comment,
		CommentedBy:    middleware.CurrentUser(c),
		ReplyingTo:     req.ReplyingTo,
		NotificationID: req.NotificationID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, addCommentResponse{
		Comment:     comment.Body,
		CommentedAt: comment.CreatedAt,
		ID:          comment.ID,
		UserID:      comment.CommentedBy,
		Children:    comment.Children,
	})
}

type idRequest struct {
	ID   models.ID `json:"_id"`
	Skip int       `json:"skip"`
}

func (h *CommentHandler) Delete(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.ID.IsZero() {
		respondError(c, apperr.Validation("Comment id is required"))
		return
	}
	if _, err := h.comments.DeleteComment(c.Request.Context(), req.ID, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "done"})
}

type postCommentsRequest struct {
	PostID models.ID `json:"post_id"`
	Skip   int       `json:"skip"`
}

func (h *CommentHandler) ListForPost(c *gin.Context) {
	var req postCommentsRequest
	if !bindJSON(c, &req) {
		return
	}
	views, err := h.comments.ListTopLevel(c.Request.Context(), req.PostID, req.Skip)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *CommentHandler) Replies(c *gin.Context) {
	var req idRequest
	if !bindJSON(c, &req) {
		return
	}
	views, err := h.comments.ListReplies(c.Request.Context(), req.ID, req.Skip)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"replies": views})
}
