package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"inkwell/internal/models"
)

type memState struct {
	users         map[models.ID]models.User
	posts         map[models.ID]models.Post
	comments      map[models.ID]models.Comment
	notifications map[models.ID]models.Notification
}

func (s *memState) clone() *memState {
	return &memState{
		users:         maps.Clone(s.users),
		posts:         maps.Clone(s.posts),
		comments:      maps.Clone(s.comments),
		notifications: maps.Clone(s.notifications),
	}
}

// Memory is a mutex-guarded Store used by tests and DATABASE_DRIVER=memory.
// Transactions snapshot the whole state and restore it on error.
type Memory struct {
	mu   *sync.Mutex
	st   *memState
	inTx bool
}

func NewMemory() *Memory {
	return &Memory{
		mu: &sync.Mutex{},
		st: &memState{
			users:         map[models.ID]models.User{},
			posts:         map[models.ID]models.Post{},
			comments:      map[models.ID]models.Comment{},
			notifications: map[models.ID]models.Notification{},
		},
	}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) WithTx(_ context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.st.clone()
	tx := &Memory{mu: m.mu, st: m.st, inTx: true}
	if err := fn(tx); err != nil {
		*m.st = *snapshot
		return err
	}
	return nil
}

// newestFirst orders by created_at desc, id desc.
func newestFirst(a, b models.Comment) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func window[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}

func (m *Memory) CreateUser(_ context.Context, u *models.User) error {
	defer m.lock()()
	for _, existing := range m.st.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	m.st.users[u.ID] = *u
	return nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (models.User, error) {
	defer m.lock()()
	for _, u := range m.st.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) UserByUsername(_ context.Context, username string) (models.User, error) {
	defer m.lock()()
	for _, u := range m.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (m *Memory) UsersByIDs(_ context.Context, ids []models.ID) (map[models.ID]models.User, error) {
	defer m.lock()()
	out := make(map[models.ID]models.User, len(ids))
	for _, id := range ids {
		if u, ok := m.st.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (m *Memory) CreatePost(_ context.Context, p *models.Post) error {
	defer m.lock()()
	for _, existing := range m.st.posts {
		if existing.Slug == p.Slug {
			return ErrDuplicate
		}
	}
	m.st.posts[p.ID] = *p
	return nil
}

func (m *Memory) PostByID(_ context.Context, id models.ID) (models.Post, error) {
	defer m.lock()()
	p, ok := m.st.posts[id]
	if !ok {
		return models.Post{}, ErrNotFound
	}
	return p, nil
}

// PostForUpdate needs no row lock; transactions already hold the store mutex.
func (m *Memory) PostForUpdate(ctx context.Context, id models.ID) (models.Post, error) {
	return m.PostByID(ctx, id)
}

func (m *Memory) PostBySlug(_ context.Context, slug string) (models.Post, error) {
	defer m.lock()()
	for _, p := range m.st.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return models.Post{}, ErrNotFound
}

func (m *Memory) PostsByIDs(_ context.Context, ids []models.ID) (map[models.ID]models.Post, error) {
	defer m.lock()()
	out := make(map[models.ID]models.Post, len(ids))
	for _, id := range ids {
		if p, ok := m.st.posts[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *Memory) ListPostIDs(_ context.Context) ([]models.ID, error) {
	defer m.lock()()
	ids := slices.Collect(maps.Keys(m.st.posts))
	slices.Sort(ids)
	return ids, nil
}

func (m *Memory) AddActivity(_ context.Context, postID models.ID, d ActivityDelta) error {
	defer m.lock()()
	p, ok := m.st.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Activity.TotalLikes += d.Likes
	p.Activity.TotalComments += d.Comments
	p.Activity.TotalReads += d.Reads
	p.Activity.TotalParentComments += d.ParentComments
	m.st.posts[postID] = p
	return nil
}

func (m *Memory) SetCommentCounters(_ context.Context, postID models.ID, comments, parents int64) error {
	defer m.lock()()
	p, ok := m.st.posts[postID]
	if !ok {
		return ErrNotFound
	}
	p.Activity.TotalComments = comments
	p.Activity.TotalParentComments = parents
	m.st.posts[postID] = p
	return nil
}

func (m *Memory) CreateComment(_ context.Context, c *models.Comment) error {
	defer m.lock()()
	if _, ok := m.st.comments[c.ID]; ok {
		return ErrDuplicate
	}
	stored := *c
	stored.Children = nil
	m.st.comments[c.ID] = stored
	return nil
}

// childrenOf must be called with the lock held.
func (m *Memory) childrenOf(id models.ID) []models.Comment {
	var out []models.Comment
	for _, c := range m.st.comments {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, newestFirst)
	return out
}

func (m *Memory) withChildren(c models.Comment) models.Comment {
	kids := m.childrenOf(c.ID)
	c.Children = make([]models.ID, len(kids))
	for i, k := range kids {
		c.Children[i] = k.ID
	}
	return c
}

func (m *Memory) CommentByID(_ context.Context, id models.ID) (models.Comment, error) {
	defer m.lock()()
	c, ok := m.st.comments[id]
	if !ok {
		return models.Comment{}, ErrNotFound
	}
	return m.withChildren(c), nil
}

func (m *Memory) CommentsByIDs(_ context.Context, ids []models.ID) (map[models.ID]models.Comment, error) {
	defer m.lock()()
	out := make(map[models.ID]models.Comment, len(ids))
	for _, id := range ids {
		if c, ok := m.st.comments[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *Memory) ListTopLevel(_ context.Context, postID models.ID, skip, limit int) ([]models.Comment, error) {
	defer m.lock()()
	var top []models.Comment
	for _, c := range m.st.comments {
		if c.PostID == postID && !c.IsReply {
			top = append(top, c)
		}
	}
	slices.SortFunc(top, newestFirst)
	page := window(top, skip, limit)
	out := make([]models.Comment, len(page))
	for i, c := range page {
		out[i] = m.withChildren(c)
	}
	return out, nil
}

func (m *Memory) ListReplies(_ context.Context, parentID models.ID, skip, limit int) ([]models.Comment, error) {
	defer m.lock()()
	page := window(m.childrenOf(parentID), skip, limit)
	out := make([]models.Comment, len(page))
	for i, c := range page {
		out[i] = m.withChildren(c)
	}
	return out, nil
}

func (m *Memory) DeleteComment(_ context.Context, id models.ID) error {
	defer m.lock()()
	if _, ok := m.st.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.st.comments, id)
	return nil
}

func (m *Memory) CountComments(_ context.Context, postID models.ID) (int64, int64, error) {
	defer m.lock()()
	var total, parents int64
	for _, c := range m.st.comments {
		if c.PostID != postID {
			continue
		}
		total++
		if !c.IsReply {
			parents++
		}
	}
	return total, parents, nil
}

func (m *Memory) CreateNotification(_ context.Context, n *models.Notification) error {
	defer m.lock()()
	if _, ok := m.st.notifications[n.ID]; ok {
		return ErrDuplicate
	}
	m.st.notifications[n.ID] = *n
	return nil
}

func (m *Memory) SetNotificationReply(_ context.Context, notificationID, recipient, replyID models.ID) (int64, error) {
	defer m.lock()()
	n, ok := m.st.notifications[notificationID]
	if !ok || n.NotificationFor != recipient {
		return 0, nil
	}
	n.ReplyID = models.IDPtr(replyID)
	m.st.notifications[notificationID] = n
	return 1, nil
}

func (m *Memory) DeleteNotificationsForComment(_ context.Context, commentID models.ID) (int64, error) {
	defer m.lock()()
	var n int64
	for id, note := range m.st.notifications {
		if note.CommentID != nil && *note.CommentID == commentID {
			delete(m.st.notifications, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) UnlinkNotificationReply(_ context.Context, replyID models.ID) (int64, error) {
	defer m.lock()()
	var n int64
	for id, note := range m.st.notifications {
		if note.ReplyID != nil && *note.ReplyID == replyID {
			note.ReplyID = nil
			m.st.notifications[id] = note
			n++
		}
	}
	return n, nil
}

func isLike(n models.Notification, userID, postID models.ID) bool {
	return n.Type == models.NotificationTypeLike && n.UserID == userID && n.PostID == postID
}

func (m *Memory) LikeExists(_ context.Context, userID, postID models.ID) (bool, error) {
	defer m.lock()()
	for _, n := range m.st.notifications {
		if isLike(n, userID, postID) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) DeleteLike(_ context.Context, userID, postID models.ID) (int64, error) {
	defer m.lock()()
	var n int64
	for id, note := range m.st.notifications {
		if isLike(note, userID, postID) {
			delete(m.st.notifications, id)
			n++
		}
	}
	return n, nil
}

func (m *Memory) feed(q NotificationQuery) []models.Notification {
	var out []models.Notification
	for _, n := range m.st.notifications {
		if n.NotificationFor != q.Recipient || n.UserID == q.Recipient {
			continue
		}
		if q.Filter != "" && q.Filter != models.FilterAll && string(n.Type) != string(q.Filter) {
			continue
		}
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b models.Notification) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (m *Memory) ListNotifications(_ context.Context, q NotificationQuery, skip, limit int) ([]models.Notification, error) {
	defer m.lock()()
	return slices.Clone(window(m.feed(q), skip, limit)), nil
}

func (m *Memory) CountNotifications(_ context.Context, q NotificationQuery) (int64, error) {
	defer m.lock()()
	return int64(len(m.feed(q))), nil
}

func (m *Memory) MarkSeen(_ context.Context, recipient models.ID, ids []models.ID) error {
	defer m.lock()()
	for _, id := range ids {
		n, ok := m.st.notifications[id]
		if !ok || n.NotificationFor != recipient {
			continue
		}
		n.Seen = true
		m.st.notifications[id] = n
	}
	return nil
}

func (m *Memory) HasUnseen(_ context.Context, recipient models.ID) (bool, error) {
	defer m.lock()()
	for _, n := range m.st.notifications {
		if n.NotificationFor == recipient && n.UserID != recipient && !n.Seen {
			return true, nil
		}
	}
	return false, nil
}
