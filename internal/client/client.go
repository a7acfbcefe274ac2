// Package client is a typed client for the inkwell JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"inkwell/internal/models"
)

// Comment is a comment as the API returns it.
type Comment struct {
	ID          models.ID          `json:"_id"`
	PostID      models.ID          `json:"post_id"`
	Body        string             `json:"comment"`
	HTML        string             `json:"comment_html"`
	IsReply     bool               `json:"isReply"`
	Parent      *models.ID         `json:"parent,omitempty"`
	Children    []models.ID        `json:"children"`
	CommentedAt time.Time          `json:"commentedAt"`
	Author      models.UserSummary `json:"commented_by"`
}

type AddComment struct {
	PostID         models.ID `json:"_id"`
	PostAuthor     models.ID `json:"post_author,omitempty"`
	Comment        string    `json:"comment"`
	ReplyingTo     models.ID `json:"replying_to,omitempty"`
	NotificationID models.ID `json:"notification_id,omitempty"`
}

// APIError is a non-2xx answer carrying the server's {error} message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inkwell api: %d %s", e.Status, e.Message)
}

type Client struct {
	base  string
	http  *http.Client
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends the access token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostComments fetches one page of a post's top-level comments.
func (c *Client) PostComments(ctx context.Context, postID models.ID, skip int) ([]Comment, error) {
	var out []Comment
	err := c.post(ctx, "/get-post-comments", map[string]any{"post_id": postID, "skip": skip}, &out)
	return out, err
}

// Replies fetches one page of a comment's direct replies.
func (c *Client) Replies(ctx context.Context, commentID models.ID, skip int) ([]Comment, error) {
	var out struct {
		Replies []Comment `json:"replies"`
	}
	err := c.post(ctx, "/get-replies", map[string]any{"_id": commentID, "skip": skip}, &out)
	return out.Replies, err
}

// AddComment posts a comment or reply. The returned comment carries what the
// server echoes back; author and HTML are left to the caller.
func (c *Client) AddComment(ctx context.Context, in AddComment) (Comment, error) {
	var out struct {
		Comment     string      `json:"comment"`
		CommentedAt time.Time   `json:"commentedAt"`
		ID          models.ID   `json:"_id"`
		UserID      models.ID   `json:"user_id"`
		Children    []models.ID `json:"children"`
	}
	if err := c.post(ctx, "/add-comment", in, &out); err != nil {
		return Comment{}, err
	}
	cm := Comment{
		ID:          out.ID,
		PostID:      in.PostID,
		Body:        out.Comment,
		IsReply:     !in.ReplyingTo.IsZero(),
		Parent:      models.IDPtr(in.ReplyingTo),
		Children:    out.Children,
		CommentedAt: out.CommentedAt,
		Author:      models.UserSummary{ID: out.UserID},
	}
	return cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID models.ID) error {
	return c.post(ctx, "/delete-comment", map[string]any{"_id": commentID}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			apiErr.Message = e.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
