package services

import (
	"context"

	"inkwell/internal/apperr"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type LikeService struct {
	Deps
}

func NewLikeService(d Deps) *LikeService {
	return &LikeService{Deps: d.withDefaults()}
}

// ToggleLike flips the caller's like on a post and reports the new state.
// The current state comes from storage, so a stale client flag can neither
// double count a like nor remove one that is not there.
func (s *LikeService) ToggleLike(ctx context.Context, userID, postID models.ID) (bool, error) {
	var (
		liked  bool
		author models.ID
		note   models.Notification
	)
	err := s.Store.WithTx(ctx, func(tx repository.Store) error {
		post, err := tx.PostForUpdate(ctx, postID)
		if err != nil {
			return err
		}
		author = post.AuthorID

		exists, err := tx.LikeExists(ctx, userID, postID)
		if err != nil {
			return err
		}
		if exists {
			removed, err := tx.DeleteLike(ctx, userID, postID)
			if err != nil {
				return err
			}
			liked = false
			return tx.AddActivity(ctx, postID, repository.ActivityDelta{Likes: -removed})
		}

		note = models.Notification{
			ID:              s.NewID(),
			Type:            models.NotificationTypeLike,
			PostID:          postID,
			NotificationFor: post.AuthorID,
			UserID:          userID,
			CreatedAt:       s.now(),
		}
		if err := tx.CreateNotification(ctx, &note); err != nil {
			return err
		}
		liked = true
		return tx.AddActivity(ctx, postID, repository.ActivityDelta{Likes: 1})
	})
	if err != nil {
		return false, storageErr(err, "post not found")
	}

	s.Badge.Invalidate(ctx, author)
	if liked {
		s.publish(ctx, events.Event{Type: events.PostLiked, PostID: postID, ActorID: userID, SubjectID: note.ID})
		s.publish(ctx, events.Event{Type: events.NotificationCreated, PostID: postID, ActorID: userID, SubjectID: note.ID})
	} else {
		s.publish(ctx, events.Event{Type: events.PostUnliked, PostID: postID, ActorID: userID})
	}
	return liked, nil
}

func (s *LikeService) IsLiked(ctx context.Context, userID, postID models.ID) (bool, error) {
	ok, err := s.Store.LikeExists(ctx, userID, postID)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return ok, nil
}
