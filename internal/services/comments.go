package services

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/apperr"
	"inkwell/internal/events"
	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

// CommentPageSize is the window for both top-level comments and replies.
const CommentPageSize = 5

type AddCommentInput struct {
	PostID      models.ID
	PostAuthor  models.ID
	Body        string
	CommentedBy models.ID
	// ReplyingTo makes the new comment a reply.
	ReplyingTo models.ID
	// NotificationID links the new comment as the reply shown on a feed entry.
	NotificationID models.ID
}

// CommentView is a comment ready for display.
type CommentView struct {
	models.Comment
	Author        models.UserSummary `json:"commented_by"`
	HTML          string             `json:"comment_html"`
	ChildrenLevel *int               `json:"childrenLevel,omitempty"`
}

// Recount is the outcome of a counter reconciliation.
type Recount struct {
	PostID models.ID       `json:"post_id"`
	Before models.Activity `json:"before"`
	After  models.Activity `json:"after"`
}

func (r Recount) Drifted() bool {
	return r.Before.TotalComments != r.After.TotalComments ||
		r.Before.TotalParentComments != r.After.TotalParentComments
}

type CommentService struct {
	Deps
}

func NewCommentService(d Deps) *CommentService {
	return &CommentService{Deps: d.withDefaults()}
}

// AddComment persists a comment or reply and bumps the post counters in the
// same transaction. The notification is written by the dispatcher.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (models.Comment, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return models.Comment{}, apperr.Validation("Write something to leave a comment")
	}

	post, err := s.Store.PostByID(ctx, in.PostID)
	if err != nil {
		return models.Comment{}, storageErr(err, "post not found")
	}

	var parent models.Comment
	if !in.ReplyingTo.IsZero() {
		parent, err = s.Store.CommentByID(ctx, in.ReplyingTo)
		if err != nil {
			return models.Comment{}, storageErr(err, "comment you are replying to was not found")
		}
		if parent.PostID != post.ID {
			return models.Comment{}, apperr.NotFound("comment you are replying to was not found")
		}
	}

	c := models.Comment{
		ID:          s.NewID(),
		PostID:      post.ID,
		PostAuthor:  post.AuthorID,
		Body:        body,
		CommentedBy: in.CommentedBy,
		IsReply:     !parent.ID.IsZero(),
		ParentID:    models.IDPtr(parent.ID),
		CreatedAt:   s.now(),
	}
	delta := repository.ActivityDelta{Comments: 1}
	if !c.IsReply {
		delta.ParentComments = 1
	}

	err = s.Store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.CreateComment(ctx, &c); err != nil {
			return err
		}
		return tx.AddActivity(ctx, post.ID, delta)
	})
	if err != nil {
		return models.Comment{}, storageErr(err, "post not found")
	}
	c.Children = []models.ID{}

	kind := "comment"
	if c.IsReply {
		kind = "reply"
	}
	metrics.CommentsCreated.WithLabelValues(kind).Inc()
	s.publish(ctx, events.Event{Type: events.CommentCreated, PostID: post.ID, ActorID: c.CommentedBy, SubjectID: c.ID, At: c.CreatedAt})

	s.Notifier.Submit(ctx, "comment notification", func(ctx context.Context) error {
		return s.notifyComment(ctx, c, parent, in.NotificationID)
	})
	return c, nil
}

// notifyComment writes the comment or reply notification. A comment deleted
// before the job runs gets no notification.
func (s *CommentService) notifyComment(ctx context.Context, c models.Comment, parent models.Comment, linkTo models.ID) error {
	n := models.Notification{
		ID:              s.NewID(),
		Type:            models.NotificationTypeComment,
		PostID:          c.PostID,
		CommentID:       models.IDPtr(c.ID),
		NotificationFor: c.PostAuthor,
		UserID:          c.CommentedBy,
		CreatedAt:       c.CreatedAt,
	}
	if c.IsReply {
		n.Type = models.NotificationTypeReply
		n.RepliedOnComment = models.IDPtr(parent.ID)
		n.NotificationFor = parent.CommentedBy
	}

	err := s.Store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.CommentByID(ctx, c.ID); err != nil {
			return err
		}
		if err := tx.CreateNotification(ctx, &n); err != nil {
			return err
		}
		if linkTo.IsZero() {
			return nil
		}
		linked, err := tx.SetNotificationReply(ctx, linkTo, c.CommentedBy, c.ID)
		if err != nil {
			return err
		}
		if linked == 0 {
			s.log(ctx).Warn("notification to link reply to not found", "notification_id", linkTo, "user_id", c.CommentedBy)
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	s.Badge.Invalidate(ctx, n.NotificationFor)
	s.publish(ctx, events.Event{Type: events.NotificationCreated, PostID: n.PostID, ActorID: n.UserID, SubjectID: n.ID, At: n.CreatedAt})
	return nil
}

// DeleteComment removes a comment and its whole reply subtree in one
// transaction and returns how many comments were removed.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, callerID models.ID) (int, error) {
	target, err := s.Store.CommentByID(ctx, commentID)
	if err != nil {
		return 0, storageErr(err, "comment not found")
	}
	if callerID != target.CommentedBy && callerID != target.PostAuthor {
		return 0, apperr.Permission("You can not delete this comment")
	}

	removed := 0
	err = s.Store.WithTx(ctx, func(tx repository.Store) error {
		n, err := s.cascade(ctx, tx, target.ID)
		removed = n
		return err
	})
	if err != nil {
		return 0, storageErr(err, "comment not found")
	}

	metrics.CommentsDeleted.Add(float64(removed))
	s.publish(ctx, events.Event{Type: events.CommentDeleted, PostID: target.PostID, ActorID: callerID, SubjectID: target.ID, Removed: removed})
	return removed, nil
}

// cascade deletes root and its descendants depth first. Each removed comment
// drops its own notifications, unlinks it as a reply, and takes one off
// total_comments (and total_parent_comments when it is top-level).
func (s *CommentService) cascade(ctx context.Context, tx repository.Store, root models.ID) (int, error) {
	var (
		removed int
		postID  models.ID
		delta   repository.ActivityDelta
		stack   = []models.ID{root}
	)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c, err := tx.CommentByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if err := tx.DeleteComment(ctx, c.ID); err != nil {
			return 0, err
		}
		if _, err := tx.DeleteNotificationsForComment(ctx, c.ID); err != nil {
			return 0, err
		}
		if _, err := tx.UnlinkNotificationReply(ctx, c.ID); err != nil {
			return 0, err
		}

		postID = c.PostID
		delta.Comments--
		if c.ParentID == nil {
			delta.ParentComments--
		}
		removed++

		for i := len(c.Children) - 1; i >= 0; i-- {
			stack = append(stack, c.Children[i])
		}
	}

	err := tx.AddActivity(ctx, postID, delta)
	if errors.Is(err, repository.ErrNotFound) {
		s.log(ctx).Warn("comments deleted for missing post", "post_id", postID)
		err = nil
	}
	return removed, err
}

// ListTopLevel returns one page of a post's top-level comments, newest first.
func (s *CommentService) ListTopLevel(ctx context.Context, postID models.ID, skip int) ([]CommentView, error) {
	cs, err := s.Store.ListTopLevel(ctx, postID, max(skip, 0), CommentPageSize)
	if err != nil {
		return nil, storageErr(err, "post not found")
	}
	views, err := s.views(ctx, cs)
	if err != nil {
		return nil, err
	}
	for i := range views {
		level := 0
		views[i].ChildrenLevel = &level
	}
	return views, nil
}

// ListReplies returns one page of a comment's direct replies, newest first.
func (s *CommentService) ListReplies(ctx context.Context, commentID models.ID, skip int) ([]CommentView, error) {
	if _, err := s.Store.CommentByID(ctx, commentID); err != nil {
		return nil, storageErr(err, "comment not found")
	}
	cs, err := s.Store.ListReplies(ctx, commentID, max(skip, 0), CommentPageSize)
	if err != nil {
		return nil, storageErr(err, "comment not found")
	}
	return s.views(ctx, cs)
}

func (s *CommentService) views(ctx context.Context, cs []models.Comment) ([]CommentView, error) {
	ids := make([]models.ID, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.CommentedBy)
	}
	users, err := s.Store.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	out := make([]CommentView, len(cs))
	for i, c := range cs {
		if c.Children == nil {
			c.Children = []models.ID{}
		}
		author := models.UserSummary{ID: c.CommentedBy}
		if u, ok := users[c.CommentedBy]; ok {
			author = u.Summary()
		}
		out[i] = CommentView{Comment: c, Author: author, HTML: utils.RenderComment(c.Body)}
	}
	return out, nil
}

// ReconcileCounters recounts a post's comment counters from the comment rows
// and overwrites the cached values.
func (s *CommentService) ReconcileCounters(ctx context.Context, postID models.ID) (Recount, error) {
	var rc Recount
	err := s.Store.WithTx(ctx, func(tx repository.Store) error {
		post, err := tx.PostForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		total, parents, err := tx.CountComments(ctx, postID)
		if err != nil {
			return err
		}
		rc = Recount{PostID: postID, Before: post.Activity, After: post.Activity}
		rc.After.TotalComments = total
		rc.After.TotalParentComments = parents
		if !rc.Drifted() {
			return nil
		}
		return tx.SetCommentCounters(ctx, postID, total, parents)
	})
	if err != nil {
		return Recount{}, storageErr(err, "post not found")
	}

	if rc.Before.TotalComments != rc.After.TotalComments {
		metrics.CounterDrift.WithLabelValues("total_comments").Inc()
	}
	if rc.Before.TotalParentComments != rc.After.TotalParentComments {
		metrics.CounterDrift.WithLabelValues("total_parent_comments").Inc()
	}
	if rc.Drifted() {
		s.log(ctx).Info("comment counters repaired", "post_id", postID,
			"total_comments", rc.After.TotalComments, "total_parent_comments", rc.After.TotalParentComments)
	}
	return rc, nil
}

// ReconcileAll runs ReconcileCounters over every post and returns the ones
// that drifted.
func (s *CommentService) ReconcileAll(ctx context.Context) ([]Recount, error) {
	ids, err := s.Store.ListPostIDs(ctx)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	var drifted []Recount
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return drifted, err
		}
		rc, err := s.ReconcileCounters(ctx, id)
		if err != nil {
			return drifted, err
		}
		if rc.Drifted() {
			drifted = append(drifted, rc)
		}
	}
	return drifted, nil
}
