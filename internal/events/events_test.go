package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestRecorderKeepsOrder(t *testing.T) {
	var r Recorder
	ctx := context.Background()
	_ = r.Publish(ctx, Event{Type: CommentCreated, PostID: 1})
	_ = r.Publish(ctx, Event{Type: CommentDeleted, PostID: 1, Removed: 3})

	got := r.Types()
	if len(got) != 2 || got[0] != CommentCreated || got[1] != CommentDeleted {
		t.Fatalf("types = %v", got)
	}
	if r.Events()[1].Removed != 3 {
		t.Fatalf("removed = %d", r.Events()[1].Removed)
	}
}

func TestEventJSONUsesStringIDs(t *testing.T) {
	ev := Event{Type: PostLiked, PostID: 1234567890123456789, ActorID: 5, At: time.Unix(0, 0).UTC()}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["post_id"] != "1234567890123456789" {
		t.Fatalf("post_id = %v", m["post_id"])
	}
	if _, ok := m["removed"]; ok {
		t.Fatal("removed should be omitted when zero")
	}
}
