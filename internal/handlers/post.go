package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/middleware"
	"inkwell/internal/services"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type createPostRequest struct {
	Title   string          `json:"title"`
	Des     string          `json:"des"`
	Banner  string          `json:"banner"`
	Content json.RawMessage `json:"content"`
	Tags    []string        `json:"tags"`
}

func (h *PostHandler) Create(c *gin.Context) {
	var req createPostRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.posts.CreatePost(c.Request.Context(), services.CreatePostInput{
		AuthorID:  middleware.CurrentUser(c),
		Title:     req.Title,
		Des:       req.Des,
		BannerURL: req.Banner,
		Content:   req.Content,
		Tags:      req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.Slug, "_id": p.ID})
}

func (h *PostHandler) Get(c *gin.Context) {
	var req struct {
		PostID string `json:"post_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.posts.GetPost(c.Request.Context(), req.PostID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": v})
}
