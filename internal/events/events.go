// Package events publishes domain events for downstream consumers
// (search indexing, email digests, analytics).
package events

import (
	"context"
	"sync"
	"time"

	"inkwell/internal/models"
)

type Type string

const (
	CommentCreated      Type = "comment.created"
	CommentDeleted      Type = "comment.deleted"
	NotificationCreated Type = "notification.created"
	PostLiked           Type = "post.liked"
	PostUnliked         Type = "post.unliked"
)

type Event struct {
	Type    Type      `json:"type"`
	PostID  models.ID `json:"post_id"`
	ActorID models.ID `json:"actor_id,omitempty"`
	// SubjectID is the comment or notification the event is about.
	SubjectID models.ID `json:"subject_id,omitempty"`
	// Removed is the cascade size of a comment.deleted event.
	Removed int       `json:"removed,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	evs := r.Events()
	out := make([]Type, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}
