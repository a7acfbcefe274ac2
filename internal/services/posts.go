package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

const (
	maxDesLength = 200
	maxTags      = 10
)

type CreatePostInput struct {
	AuthorID  models.ID
	Title     string
	Des       string
	BannerURL string
	// Content is the editor's block list, stored as given.
	Content json.RawMessage
	Tags    []string
}

type PostService struct {
	Deps
}

func NewPostService(d Deps) *PostService {
	return &PostService{Deps: d.withDefaults()}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Post{}, apperr.Validation("You must provide a title")
	}
	if len(in.Des) > maxDesLength {
		return models.Post{}, apperr.Validation("Post description must be under 200 characters")
	}
	if len(in.Tags) > maxTags {
		return models.Post{}, apperr.Validation("Provide at most 10 tags")
	}
	if len(in.Content) > 0 && !json.Valid(in.Content) {
		return models.Post{}, apperr.Validation("Post content must be valid JSON")
	}

	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	base := utils.Slugify(title)
	if base == "" {
		base = "post"
	}
	p := models.Post{
		ID:          s.NewID(),
		Slug:        base + "-" + utils.RandomString(8),
		AuthorID:    in.AuthorID,
		Title:       title,
		Des:         strings.TrimSpace(in.Des),
		BannerURL:   in.BannerURL,
		Content:     string(in.Content),
		Tags:        strings.Join(tags, ","),
		PublishedAt: s.now(),
	}
	if err := s.Store.CreatePost(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.Post{}, apperr.Validation("A post with this slug already exists, try again")
		}
		return models.Post{}, apperr.Storage(err)
	}
	return p, nil
}

// PostView is the public shape of a post.
type PostView struct {
	models.Post
	Content json.RawMessage    `json:"content"`
	Tags    []string           `json:"tags"`
	Author  models.UserSummary `json:"author"`
}

// GetPost loads a post by slug and counts the read.
func (s *PostService) GetPost(ctx context.Context, slug string) (PostView, error) {
	p, err := s.Store.PostBySlug(ctx, slug)
	if err != nil {
		return PostView{}, storageErr(err, "post not found")
	}
	if err := s.Store.AddActivity(ctx, p.ID, repository.ActivityDelta{Reads: 1}); err != nil {
		return PostView{}, storageErr(err, "post not found")
	}
	p.Activity.TotalReads++

	users, err := s.Store.UsersByIDs(ctx, []models.ID{p.AuthorID})
	if err != nil {
		return PostView{}, apperr.Storage(err)
	}
	v := PostView{Post: p, Tags: []string{}, Author: models.UserSummary{ID: p.AuthorID}}
	if p.Content != "" {
		v.Content = json.RawMessage(p.Content)
	}
	if p.Tags != "" {
		v.Tags = strings.Split(p.Tags, ",")
	}
	if u, ok := users[p.AuthorID]; ok {
		v.Author = u.Summary()
	}
	return v, nil
}
