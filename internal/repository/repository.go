// Package repository is the storage boundary for users, posts, comments and
// notifications. Comment children are derived from parent_id on every read,
// so a comment's children always equal the set of rows that point at it.
package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ActivityDelta is added to a post's counters with a single atomic update.
type ActivityDelta struct {
	Likes          int64
	Comments       int64
	Reads          int64
	ParentComments int64
}

// NotificationQuery selects a recipient's feed. Rows where the actor is the
// recipient are always excluded.
type NotificationQuery struct {
	Recipient models.ID
	Filter    models.NotificationFilter
}

type Store interface {
	// WithTx runs fn against a transactional view of the store. An error
	// returned by fn rolls back every write made through tx.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UsersByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.User, error)

	CreatePost(ctx context.Context, p *models.Post) error
	PostByID(ctx context.Context, id models.ID) (models.Post, error)
	// PostForUpdate reads a post and, inside a transaction, row-locks it until commit.
	PostForUpdate(ctx context.Context, id models.ID) (models.Post, error)
	PostBySlug(ctx context.Context, slug string) (models.Post, error)
	PostsByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.Post, error)
	ListPostIDs(ctx context.Context) ([]models.ID, error)
	AddActivity(ctx context.Context, postID models.ID, d ActivityDelta) error
	SetCommentCounters(ctx context.Context, postID models.ID, comments, parents int64) error

	CreateComment(ctx context.Context, c *models.Comment) error
	CommentByID(ctx context.Context, id models.ID) (models.Comment, error)
	CommentsByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.Comment, error)
	ListTopLevel(ctx context.Context, postID models.ID, skip, limit int) ([]models.Comment, error)
	ListReplies(ctx context.Context, parentID models.ID, skip, limit int) ([]models.Comment, error)
	DeleteComment(ctx context.Context, id models.ID) error
	CountComments(ctx context.Context, postID models.ID) (total, parents int64, err error)

	CreateNotification(ctx context.Context, n *models.Notification) error
	SetNotificationReply(ctx context.Context, notificationID, recipient, replyID models.ID) (int64, error)
	DeleteNotificationsForComment(ctx context.Context, commentID models.ID) (int64, error)
	UnlinkNotificationReply(ctx context.Context, replyID models.ID) (int64, error)
	LikeExists(ctx context.Context, userID, postID models.ID) (bool, error)
	DeleteLike(ctx context.Context, userID, postID models.ID) (int64, error)
	ListNotifications(ctx context.Context, q NotificationQuery, skip, limit int) ([]models.Notification, error)
	CountNotifications(ctx context.Context, q NotificationQuery) (int64, error)
	MarkSeen(ctx context.Context, recipient models.ID, ids []models.ID) error
	HasUnseen(ctx context.Context, recipient models.ID) (bool, error)
}
