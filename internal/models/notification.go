package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationTypeLike    NotificationType = "like"
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeReply   NotificationType = "reply"
)

// NotificationFilter narrows the feed; FilterAll matches every type.
type NotificationFilter string

const FilterAll NotificationFilter = "all"

func ParseNotificationFilter(s string) (NotificationFilter, error) {
	switch NotificationFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case NotificationFilter(NotificationTypeLike), NotificationFilter(NotificationTypeComment), NotificationFilter(NotificationTypeReply):
		return NotificationFilter(s), nil
	}
	return "", fmt.Errorf("unknown notification filter %q", s)
}

type Notification struct {
	ID               ID               `gorm:"primaryKey;autoIncrement:false" json:"_id"`
	Type             NotificationType `gorm:"type:varchar(20);not null;index" json:"type"`
	PostID           ID               `gorm:"not null;index" json:"post"`
	CommentID        *ID              `gorm:"index" json:"comment,omitempty"`
	RepliedOnComment *ID              `json:"replied_on_comment,omitempty"`
	ReplyID          *ID              `gorm:"index" json:"reply,omitempty"`
	NotificationFor  ID               `gorm:"not null;index:idx_notification_feed,priority:1" json:"notification_for"` // recipient
	UserID           ID               `gorm:"not null;index" json:"user"`                                              // actor
	Seen             bool             `gorm:"not null;default:false;index:idx_notification_feed,priority:2" json:"seen"`
	CreatedAt        time.Time        `gorm:"not null;index:idx_notification_feed,priority:3" json:"createdAt"`
}

// FeedItem is a notification with its references resolved for display.
type FeedItem struct {
	ID               ID               `json:"_id"`
	Type             NotificationType `json:"type"`
	Seen             bool             `json:"seen"`
	CreatedAt        time.Time        `json:"createdAt"`
	Post             *PostSummary     `json:"post,omitempty"`
	User             *UserSummary     `json:"user,omitempty"`
	Comment          *CommentSummary  `json:"comment,omitempty"`
	RepliedOnComment *CommentSummary  `json:"replied_on_comment,omitempty"`
	Reply            *CommentSummary  `json:"reply,omitempty"`
}
