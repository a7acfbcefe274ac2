package services

import (
	"context"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// NotificationPageSize is the feed window.
const NotificationPageSize = 10

type ListNotificationsInput struct {
	UserID models.ID
	Page   int
	Filter string
	// DeletedDocCount shifts the window back by the number of entries the
	// client removed since it loaded the previous pages.
	DeletedDocCount int
}

type NotificationService struct {
	Deps
}

func NewNotificationService(d Deps) *NotificationService {
	return &NotificationService{Deps: d.withDefaults()}
}

func feedSkip(page, deleted int) int {
	if page < 1 {
		page = 1
	}
	return max((page-1)*NotificationPageSize-deleted, 0)
}

func parseFilter(raw string) (models.NotificationFilter, error) {
	f, err := models.ParseNotificationFilter(raw)
	if err != nil {
		return "", apperr.Validation(err.Error())
	}
	return f, nil
}

// ListNotifications returns one page of the caller's feed, newest first, with
// references resolved, and marks exactly that page as seen. Items report the
// seen state they had before this read.
func (s *NotificationService) ListNotifications(ctx context.Context, in ListNotificationsInput) ([]models.FeedItem, error) {
	filter, err := parseFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	q := repository.NotificationQuery{Recipient: in.UserID, Filter: filter}

	ns, err := s.Store.ListNotifications(ctx, q, feedSkip(in.Page, in.DeletedDocCount), NotificationPageSize)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	items, err := s.resolve(ctx, ns)
	if err != nil {
		return nil, err
	}

	var unseen []models.ID
	for _, n := range ns {
		if !n.Seen {
			unseen = append(unseen, n.ID)
		}
	}
	if len(unseen) > 0 {
		if err := s.Store.MarkSeen(ctx, in.UserID, unseen); err != nil {
			return nil, apperr.Storage(err)
		}
		s.Badge.Invalidate(ctx, in.UserID)
	}
	return items, nil
}

func (s *NotificationService) resolve(ctx context.Context, ns []models.Notification) ([]models.FeedItem, error) {
	var postIDs, userIDs, commentIDs []models.ID
	for _, n := range ns {
		postIDs = append(postIDs, n.PostID)
		userIDs = append(userIDs, n.UserID)
		for _, ref := range []*models.ID{n.CommentID, n.RepliedOnComment, n.ReplyID} {
			if ref != nil {
				commentIDs = append(commentIDs, *ref)
			}
		}
	}

	posts, err := s.Store.PostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	users, err := s.Store.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	comments, err := s.Store.CommentsByIDs(ctx, commentIDs)
	if err != nil {
		return nil, apperr.Storage(err)
	}

	summary := func(ref *models.ID) *models.CommentSummary {
		if ref == nil {
			return nil
		}
		c, ok := comments[*ref]
		if !ok {
			return nil
		}
		cs := c.Summary()
		return &cs
	}

	items := make([]models.FeedItem, len(ns))
	for i, n := range ns {
		item := models.FeedItem{
			ID:               n.ID,
			Type:             n.Type,
			Seen:             n.Seen,
			CreatedAt:        n.CreatedAt,
			Comment:          summary(n.CommentID),
			RepliedOnComment: summary(n.RepliedOnComment),
			Reply:            summary(n.ReplyID),
		}
		if p, ok := posts[n.PostID]; ok {
			ps := p.Summary()
			item.Post = &ps
		}
		if u, ok := users[n.UserID]; ok {
			us := u.Summary()
			item.User = &us
		}
		items[i] = item
	}
	return items, nil
}

// CountNotifications counts the feed entries matching filter.
func (s *NotificationService) CountNotifications(ctx context.Context, userID models.ID, filter string) (int64, error) {
	f, err := parseFilter(filter)
	if err != nil {
		return 0, err
	}
	n, err := s.Store.CountNotifications(ctx, repository.NotificationQuery{Recipient: userID, Filter: f})
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return n, nil
}

// HasNewNotification reports whether the badge should show.
func (s *NotificationService) HasNewNotification(ctx context.Context, userID models.ID) (bool, error) {
	if v, ok := s.Badge.Get(ctx, userID); ok {
		return v, nil
	}
	v, err := s.Store.HasUnseen(ctx, userID)
	if err != nil {
		return false, apperr.Storage(err)
	}
	s.Badge.Set(ctx, userID, v)
	return v, nil
}
