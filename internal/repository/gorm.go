package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Gorm) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	})
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error, "create user")
}

func (s *Gorm) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("email = ?", email).First(&u).Error
	return u, translate(err, "user by email")
}

func (s *Gorm) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("username = ?", username).First(&u).Error
	return u, translate(err, "user by username")
}

func (s *Gorm) UsersByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.User, error) {
	out := make(map[models.ID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, translate(err, "users by ids")
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (s *Gorm) CreatePost(ctx context.Context, p *models.Post) error {
	return translate(s.conn(ctx).Create(p).Error, "create post")
}

func (s *Gorm) PostByID(ctx context.Context, id models.ID) (models.Post, error) {
	var p models.Post
	err := s.conn(ctx).First(&p, "id = ?", id).Error
	return p, translate(err, "post by id")
}

func (s *Gorm) PostForUpdate(ctx context.Context, id models.ID) (models.Post, error) {
	var p models.Post
	err := s.conn(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return p, translate(err, "lock post")
}

func (s *Gorm) PostBySlug(ctx context.Context, slug string) (models.Post, error) {
	var p models.Post
	err := s.conn(ctx).Where("slug = ?", slug).First(&p).Error
	return p, translate(err, "post by slug")
}

func (s *Gorm) PostsByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.Post, error) {
	out := make(map[models.ID]models.Post, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var posts []models.Post
	err := s.conn(ctx).Select("id", "slug", "title", "author_id").Where("id IN ?", ids).Find(&posts).Error
	if err != nil {
		return nil, translate(err, "posts by ids")
	}
	for _, p := range posts {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Gorm) ListPostIDs(ctx context.Context) ([]models.ID, error) {
	var ids []models.ID
	err := s.conn(ctx).Model(&models.Post{}).Order("id").Pluck("id", &ids).Error
	return ids, translate(err, "list post ids")
}

// AddActivity applies every non-zero delta as "col = col + ?" in one UPDATE.
func (s *Gorm) AddActivity(ctx context.Context, postID models.ID, d ActivityDelta) error {
	updates := map[string]any{}
	add := func(col string, v int64) {
		if v != 0 {
			updates[col] = gorm.Expr(col+" + ?", v)
		}
	}
	add("total_likes", d.Likes)
	add("total_comments", d.Comments)
	add("total_reads", d.Reads)
	add("total_parent_comments", d.ParentComments)
	if len(updates) == 0 {
		return nil
	}

	res := s.conn(ctx).Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(updates)
	if res.Error != nil {
		return translate(res.Error, "update post activity")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) SetCommentCounters(ctx context.Context, postID models.ID, comments, parents int64) error {
	res := s.conn(ctx).Model(&models.Post{}).Where("id = ?", postID).UpdateColumns(map[string]any{
		"total_comments":        comments,
		"total_parent_comments": parents,
	})
	if res.Error != nil {
		return translate(res.Error, "set comment counters")
	}
	return nil
}

func (s *Gorm) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(s.conn(ctx).Create(c).Error, "create comment")
}

// fillChildren loads the child ids of every comment in cs with one query.
func (s *Gorm) fillChildren(ctx context.Context, cs []models.Comment) error {
	if len(cs) == 0 {
		return nil
	}
	ids := make([]models.ID, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}

	var rows []struct {
		ID       models.ID
		ParentID models.ID
	}
	err := s.conn(ctx).Model(&models.Comment{}).
		Select("id", "parent_id").
		Where("parent_id IN ?", ids).
		Order("created_at DESC, id DESC").
		Scan(&rows).Error
	if err != nil {
		return translate(err, "load children")
	}

	kids := make(map[models.ID][]models.ID, len(cs))
	for _, r := range rows {
		kids[r.ParentID] = append(kids[r.ParentID], r.ID)
	}
	for i := range cs {
		cs[i].Children = kids[cs[i].ID]
		if cs[i].Children == nil {
			cs[i].Children = []models.ID{}
		}
	}
	return nil
}

func (s *Gorm) CommentByID(ctx context.Context, id models.ID) (models.Comment, error) {
	var c models.Comment
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return c, translate(err, "comment by id")
	}
	one := []models.Comment{c}
	if err := s.fillChildren(ctx, one); err != nil {
		return c, err
	}
	return one[0], nil
}

func (s *Gorm) CommentsByIDs(ctx context.Context, ids []models.ID) (map[models.ID]models.Comment, error) {
	out := make(map[models.ID]models.Comment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var cs []models.Comment
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&cs).Error; err != nil {
		return nil, translate(err, "comments by ids")
	}
	for _, c := range cs {
		out[c.ID] = c
	}
	return out, nil
}

func (s *Gorm) ListTopLevel(ctx context.Context, postID models.ID, skip, limit int) ([]models.Comment, error) {
	var cs []models.Comment
	err := s.conn(ctx).
		Where("post_id = ? AND is_reply = ?", postID, false).
		Order("created_at DESC, id DESC").
		Offset(max(skip, 0)).Limit(limit).
		Find(&cs).Error
	if err != nil {
		return nil, translate(err, "list top-level comments")
	}
	return cs, s.fillChildren(ctx, cs)
}

func (s *Gorm) ListReplies(ctx context.Context, parentID models.ID, skip, limit int) ([]models.Comment, error) {
	var cs []models.Comment
	err := s.conn(ctx).
		Where("parent_id = ?", parentID).
		Order("created_at DESC, id DESC").
		Offset(max(skip, 0)).Limit(limit).
		Find(&cs).Error
	if err != nil {
		return nil, translate(err, "list replies")
	}
	return cs, s.fillChildren(ctx, cs)
}

func (s *Gorm) DeleteComment(ctx context.Context, id models.ID) error {
	res := s.conn(ctx).Delete(&models.Comment{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "delete comment")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) CountComments(ctx context.Context, postID models.ID) (int64, int64, error) {
	var row struct {
		Total   int64
		Parents int64
	}
	err := s.conn(ctx).Model(&models.Comment{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_reply THEN 0 ELSE 1 END), 0) AS parents").
		Where("post_id = ?", postID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, translate(err, "count comments")
	}
	return row.Total, row.Parents, nil
}

func (s *Gorm) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate(s.conn(ctx).Create(n).Error, "create notification")
}

func (s *Gorm) SetNotificationReply(ctx context.Context, notificationID, recipient, replyID models.ID) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("id = ? AND notification_for = ?", notificationID, recipient).
		UpdateColumn("reply_id", replyID)
	return res.RowsAffected, translate(res.Error, "link notification reply")
}

func (s *Gorm) DeleteNotificationsForComment(ctx context.Context, commentID models.ID) (int64, error) {
	res := s.conn(ctx).Where("comment_id = ?", commentID).Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error, "delete comment notifications")
}

func (s *Gorm) UnlinkNotificationReply(ctx context.Context, replyID models.ID) (int64, error) {
	res := s.conn(ctx).Model(&models.Notification{}).
		Where("reply_id = ?", replyID).
		UpdateColumn("reply_id", gorm.Expr("NULL"))
	return res.RowsAffected, translate(res.Error, "unlink notification reply")
}

func (s *Gorm) likeScope(userID, postID models.ID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ? AND post_id = ? AND type = ?", userID, postID, models.NotificationTypeLike)
	}
}

func (s *Gorm) LikeExists(ctx context.Context, userID, postID models.ID) (bool, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Notification{}).Scopes(s.likeScope(userID, postID)).Limit(1).Count(&n).Error
	return n > 0, translate(err, "like exists")
}

func (s *Gorm) DeleteLike(ctx context.Context, userID, postID models.ID) (int64, error) {
	res := s.conn(ctx).Scopes(s.likeScope(userID, postID)).Delete(&models.Notification{})
	return res.RowsAffected, translate(res.Error, "delete like")
}

func feedScope(q NotificationQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("notification_for = ? AND user_id <> ?", q.Recipient, q.Recipient)
		if q.Filter != "" && q.Filter != models.FilterAll {
			db = db.Where("type = ?", string(q.Filter))
		}
		return db
	}
}

func (s *Gorm) ListNotifications(ctx context.Context, q NotificationQuery, skip, limit int) ([]models.Notification, error) {
	var ns []models.Notification
	err := s.conn(ctx).Scopes(feedScope(q)).
		Order("created_at DESC, id DESC").
		Offset(max(skip, 0)).Limit(limit).
		Find(&ns).Error
	return ns, translate(err, "list notifications")
}

func (s *Gorm) CountNotifications(ctx context.Context, q NotificationQuery) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Notification{}).Scopes(feedScope(q)).Count(&n).Error
	return n, translate(err, "count notifications")
}

func (s *Gorm) MarkSeen(ctx context.Context, recipient models.ID, ids []models.ID) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.conn(ctx).Model(&models.Notification{}).
		Where("notification_for = ? AND id IN ?", recipient, ids).
		UpdateColumn("seen", true).Error
	return translate(err, "mark notifications seen")
}

func (s *Gorm) HasUnseen(ctx context.Context, recipient models.ID) (bool, error) {
	var id models.ID
	err := s.conn(ctx).Model(&models.Notification{}).
		Select("id").
		Where("notification_for = ? AND user_id <> ? AND seen = ?", recipient, recipient, false).
		Limit(1).
		Scan(&id).Error
	if err != nil {
		return false, translate(err, "has unseen")
	}
	return !id.IsZero(), nil
}
