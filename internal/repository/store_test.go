package repository

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkwell/internal/models"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// seq hands out ids unique across the whole test binary so the gorm suite can
// share one database.
var seq atomic.Int64

func nextID() models.ID {
	return models.ID(time.Now().UnixNano()/1000*1000 + seq.Add(1)%1000)
}

func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	factories := map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemory() },
	}
	dsn := os.Getenv("INKWELL_TEST_DATABASE_URL")
	if dsn == "" {
		return factories
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Post{}, &models.Comment{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	factories["gorm"] = func(*testing.T) Store { return NewGorm(gdb) }
	return factories
}

func seedPost(t *testing.T, s Store, author models.ID) models.Post {
	t.Helper()
	p := models.Post{ID: nextID(), Slug: "post-" + nextID().String(), AuthorID: author, Title: "t"}
	if err := s.CreatePost(context.Background(), &p); err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func seedComment(t *testing.T, s Store, post models.Post, by models.ID, parent *models.ID, at time.Time) models.Comment {
	t.Helper()
	c := models.Comment{
		ID:          nextID(),
		PostID:      post.ID,
		PostAuthor:  post.AuthorID,
		Body:        "body",
		CommentedBy: by,
		IsReply:     parent != nil,
		ParentID:    parent,
		CreatedAt:   at,
	}
	if err := s.CreateComment(context.Background(), &c); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func TestStoreCommentPagination(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			post := seedPost(t, s, 1)

			var ids []models.ID
			for i := range 12 {
				c := seedComment(t, s, post, 2, nil, base.Add(time.Duration(i)*time.Minute))
				ids = append(ids, c.ID)
			}

			var sizes []int
			seen := map[models.ID]bool{}
			var last time.Time
			for skip := 0; skip < 15; skip += 5 {
				page, err := s.ListTopLevel(ctx, post.ID, skip, 5)
				if err != nil {
					t.Fatalf("list: %v", err)
				}
				sizes = append(sizes, len(page))
				for _, c := range page {
					if seen[c.ID] {
						t.Fatalf("duplicate comment %v", c.ID)
					}
					seen[c.ID] = true
					if !last.IsZero() && !c.CreatedAt.Before(last) {
						t.Fatalf("comments not strictly newest first")
					}
					last = c.CreatedAt
				}
			}
			if len(sizes) != 3 || sizes[0] != 5 || sizes[1] != 5 || sizes[2] != 2 {
				t.Fatalf("page sizes = %v, want [5 5 2]", sizes)
			}
			if len(seen) != 12 {
				t.Fatalf("saw %d comments, want 12", len(seen))
			}
		})
	}
}

func TestStoreChildrenAreDerived(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			post := seedPost(t, s, 1)
			parent := seedComment(t, s, post, 2, nil, base)
			older := seedComment(t, s, post, 3, &parent.ID, base.Add(time.Minute))
			newer := seedComment(t, s, post, 4, &parent.ID, base.Add(2*time.Minute))

			got, err := s.CommentByID(ctx, parent.ID)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if len(got.Children) != 2 || got.Children[0] != newer.ID || got.Children[1] != older.ID {
				t.Fatalf("children = %v, want [%v %v]", got.Children, newer.ID, older.ID)
			}

			replies, err := s.ListReplies(ctx, parent.ID, 1, 5)
			if err != nil {
				t.Fatalf("replies: %v", err)
			}
			if len(replies) != 1 || replies[0].ID != older.ID {
				t.Fatalf("replies window = %v", replies)
			}

			if err := s.DeleteComment(ctx, newer.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			got, _ = s.CommentByID(ctx, parent.ID)
			if len(got.Children) != 1 || got.Children[0] != older.ID {
				t.Fatalf("children after delete = %v", got.Children)
			}

			total, parents, err := s.CountComments(ctx, post.ID)
			if err != nil || total != 2 || parents != 1 {
				t.Fatalf("count = %d/%d, %v", total, parents, err)
			}
		})
	}
}

func TestStoreActivityAndNotFound(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			post := seedPost(t, s, 1)

			if err := s.AddActivity(ctx, post.ID, ActivityDelta{Comments: 2, ParentComments: 1, Likes: 1}); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := s.AddActivity(ctx, post.ID, ActivityDelta{Comments: -1}); err != nil {
				t.Fatalf("sub: %v", err)
			}
			got, _ := s.PostByID(ctx, post.ID)
			if got.Activity.TotalComments != 1 || got.Activity.TotalParentComments != 1 || got.Activity.TotalLikes != 1 {
				t.Fatalf("activity = %+v", got.Activity)
			}

			if err := s.AddActivity(ctx, nextID(), ActivityDelta{Likes: 1}); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing post: %v", err)
			}
			if _, err := s.CommentByID(ctx, nextID()); !errors.Is(err, ErrNotFound) {
				t.Fatalf("missing comment: %v", err)
			}
		})
	}
}

func TestStoreNotificationFeed(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			recipient, actor := nextID(), nextID()
			post := seedPost(t, s, recipient)

			mk := func(typ models.NotificationType, by models.ID, at time.Time) models.Notification {
				n := models.Notification{ID: nextID(), Type: typ, PostID: post.ID, NotificationFor: recipient, UserID: by, CreatedAt: at}
				if err := s.CreateNotification(ctx, &n); err != nil {
					t.Fatalf("create notification: %v", err)
				}
				return n
			}
			like := mk(models.NotificationTypeLike, actor, base)
			comment := mk(models.NotificationTypeComment, actor, base.Add(time.Minute))
			mk(models.NotificationTypeComment, recipient, base.Add(2*time.Minute)) // self action

			all := NotificationQuery{Recipient: recipient, Filter: models.FilterAll}
			list, err := s.ListNotifications(ctx, all, 0, 10)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].ID != comment.ID || list[1].ID != like.ID {
				t.Fatalf("feed = %+v", list)
			}
			n, _ := s.CountNotifications(ctx, NotificationQuery{Recipient: recipient, Filter: "like"})
			if n != 1 {
				t.Fatalf("like count = %d", n)
			}

			if ok, _ := s.HasUnseen(ctx, recipient); !ok {
				t.Fatal("expected unseen notifications")
			}
			if err := s.MarkSeen(ctx, recipient, []models.ID{like.ID, comment.ID}); err != nil {
				t.Fatalf("mark seen: %v", err)
			}
			if ok, _ := s.HasUnseen(ctx, recipient); ok {
				t.Fatal("self notification must not raise the badge")
			}

			if ok, _ := s.LikeExists(ctx, actor, post.ID); !ok {
				t.Fatal("like should exist")
			}
			if removed, _ := s.DeleteLike(ctx, actor, post.ID); removed != 1 {
				t.Fatalf("removed %d likes", removed)
			}
			if ok, _ := s.LikeExists(ctx, actor, post.ID); ok {
				t.Fatal("like should be gone")
			}
		})
	}
}

func TestStoreNotificationReplyLinking(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			recipient := nextID()
			post := seedPost(t, s, recipient)
			c := seedComment(t, s, post, nextID(), nil, base)

			n := models.Notification{ID: nextID(), Type: models.NotificationTypeComment, PostID: post.ID,
				CommentID: models.IDPtr(c.ID), NotificationFor: recipient, UserID: c.CommentedBy, CreatedAt: base}
			_ = s.CreateNotification(ctx, &n)

			if linked, _ := s.SetNotificationReply(ctx, n.ID, nextID(), 99); linked != 0 {
				t.Fatal("only the recipient may link a reply")
			}
			if linked, _ := s.SetNotificationReply(ctx, n.ID, recipient, 99); linked != 1 {
				t.Fatal("expected reply link")
			}
			if unlinked, _ := s.UnlinkNotificationReply(ctx, 99); unlinked != 1 {
				t.Fatalf("unlinked = %d", unlinked)
			}
			if deleted, _ := s.DeleteNotificationsForComment(ctx, c.ID); deleted != 1 {
				t.Fatalf("deleted = %d", deleted)
			}
		})
	}
}

func TestMemoryTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	post := seedPost(t, s, 1)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		if err := tx.AddActivity(ctx, post.ID, ActivityDelta{Comments: 5}); err != nil {
			return err
		}
		seedComment(t, tx, post, 2, nil, base)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, _ := s.PostByID(ctx, post.ID)
	if got.Activity.TotalComments != 0 {
		t.Fatalf("counter survived rollback: %d", got.Activity.TotalComments)
	}
	if total, _, _ := s.CountComments(ctx, post.ID); total != 0 {
		t.Fatalf("comment survived rollback")
	}
}
