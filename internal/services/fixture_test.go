package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/notify"
	"inkwell/internal/repository"
)

type fixture struct {
	store    *repository.Memory
	events   *events.Recorder
	badge    *cache.LocalBadge
	deps     Deps
	comments *CommentService
	likes    *LikeService
	notes    *NotificationService
	posts    *PostService
}

// tickingClock advances one second per call so every record gets a distinct
// timestamp in creation order.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func sequentialIDs() func() models.ID {
	var mu sync.Mutex
	next := models.ID(1000)
	return func() models.ID {
		mu.Lock()
		defer mu.Unlock()
		next++
		return next
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	badge, err := cache.NewLocalBadge(64, time.Minute)
	if err != nil {
		t.Fatalf("badge cache: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:  repository.NewMemory(),
		events: &events.Recorder{},
		badge:  badge,
	}
	f.deps = Deps{
		Store:    f.store,
		Notifier: notify.Inline{Logger: logger},
		Events:   f.events,
		Badge:    badge,
		Logger:   logger,
		Clock:    tickingClock(),
		NewID:    sequentialIDs(),
	}
	f.comments = NewCommentService(f.deps)
	f.likes = NewLikeService(f.deps)
	f.notes = NewNotificationService(f.deps)
	f.posts = NewPostService(f.deps)
	return f
}

func (f *fixture) user(t *testing.T, id models.ID, username string) models.User {
	t.Helper()
	u := models.User{ID: id, Fullname: "User " + username, Username: username, Email: username + "@example.com"}
	if err := f.store.CreateUser(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) post(t *testing.T, author models.ID) models.Post {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), CreatePostInput{AuthorID: author, Title: "A post"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) comment(t *testing.T, post models.Post, by models.ID, replyTo models.ID, body string) models.Comment {
	t.Helper()
	c, err := f.comments.AddComment(context.Background(), AddCommentInput{
		PostID:      post.ID,
		PostAuthor:  post.AuthorID,
		Body:        body,
		CommentedBy: by,
		ReplyingTo:  replyTo,
	})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	return c
}

func (f *fixture) activity(t *testing.T, postID models.ID) models.Activity {
	t.Helper()
	p, err := f.store.PostByID(context.Background(), postID)
	if err != nil {
		t.Fatalf("load post: %v", err)
	}
	return p.Activity
}

func (f *fixture) feed(t *testing.T, user models.ID) []models.Notification {
	t.Helper()
	ns, err := f.store.ListNotifications(context.Background(), repository.NotificationQuery{Recipient: user, Filter: models.FilterAll}, 0, 100)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	return ns
}
