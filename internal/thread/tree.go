// Package thread keeps the client-side view of a post's comment thread: which
// top-level comments and replies have been fetched, which reply lists are
// expanded, and the indented rows to render.
package thread

import (
	"errors"
	"slices"

	"inkwell/internal/client"
	"inkwell/internal/models"
)

var ErrUnknownComment = errors.New("thread: comment not loaded")

type node struct {
	comment     client.Comment
	parent      models.ID
	level       int
	replies     []models.ID // loaded replies in display order
	replyLoaded bool
}

// Tree is keyed by comment id. Positions only exist in the output of Flatten,
// so inserts and removals never shift a stored reference.
type Tree struct {
	nodes         map[models.ID]*node
	roots         []models.ID
	parentsLoaded int
}

func New() *Tree {
	return &Tree{nodes: make(map[models.ID]*node)}
}

// Row is one line of the rendered thread.
type Row struct {
	Comment       client.Comment
	ChildrenLevel int
	// ParentIndex is the row index of the parent in the same Flatten result,
	// or -1 for top-level comments.
	ParentIndex   int
	IsReplyLoaded bool
	// MoreReplies counts replies the server has that are not loaded yet.
	MoreReplies int
}

func (t *Tree) Len() int { return len(t.nodes) }

// ParentsLoaded is the skip offset for the next top-level page.
func (t *Tree) ParentsLoaded() int { return t.parentsLoaded }

func (t *Tree) Get(id models.ID) (client.Comment, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return client.Comment{}, false
	}
	return n.comment, true
}

// LoadedReplies is the skip offset for the next page of id's replies.
func (t *Tree) LoadedReplies(id models.ID) int {
	if n, ok := t.nodes[id]; ok && n.replyLoaded {
		return len(n.replies)
	}
	return 0
}

// AppendParents adds a fetched page of top-level comments below the ones
// already shown. Comments already in the tree are skipped.
func (t *Tree) AppendParents(page []client.Comment) int {
	added := 0
	for _, c := range page {
		if _, ok := t.nodes[c.ID]; ok {
			continue
		}
		t.nodes[c.ID] = &node{comment: c}
		t.roots = append(t.roots, c.ID)
		added++
	}
	t.parentsLoaded += added
	return added
}

// LoadReplies attaches a fetched page of replies to parentID. The first page
// expands the parent; later pages go after the last reply already loaded.
func (t *Tree) LoadReplies(parentID models.ID, page []client.Comment) (int, error) {
	p, ok := t.nodes[parentID]
	if !ok {
		return 0, ErrUnknownComment
	}
	if !p.replyLoaded {
		p.replies = p.replies[:0]
	}
	added := 0
	for _, c := range page {
		if _, ok := t.nodes[c.ID]; ok {
			continue
		}
		t.nodes[c.ID] = &node{comment: c, parent: parentID, level: p.level + 1}
		p.replies = append(p.replies, c.ID)
		added++
	}
	p.replyLoaded = true
	return added, nil
}

// HideReplies collapses parentID, dropping every loaded descendant.
func (t *Tree) HideReplies(parentID models.ID) error {
	p, ok := t.nodes[parentID]
	if !ok {
		return ErrUnknownComment
	}
	for _, id := range p.replies {
		t.drop(id)
	}
	p.replies = nil
	p.replyLoaded = false
	return nil
}

// AddComment places a comment the user just wrote. A top-level comment goes
// first; a reply goes directly under replyingTo and expands it.
func (t *Tree) AddComment(c client.Comment, replyingTo models.ID) error {
	if _, ok := t.nodes[c.ID]; ok {
		return nil
	}
	if replyingTo.IsZero() {
		t.nodes[c.ID] = &node{comment: c}
		t.roots = slices.Insert(t.roots, 0, c.ID)
		t.parentsLoaded++
		return nil
	}

	p, ok := t.nodes[replyingTo]
	if !ok {
		return ErrUnknownComment
	}
	if !p.replyLoaded {
		p.replies = nil
	}
	t.nodes[c.ID] = &node{comment: c, parent: replyingTo, level: p.level + 1}
	p.replies = slices.Insert(p.replies, 0, c.ID)
	p.comment.Children = append(p.comment.Children, c.ID)
	p.replyLoaded = true
	return nil
}

// Remove deletes id and its loaded subtree, as after a successful delete.
func (t *Tree) Remove(id models.ID) error {
	n, ok := t.nodes[id]
	if !ok {
		return ErrUnknownComment
	}

	if n.parent.IsZero() {
		t.roots = slices.DeleteFunc(t.roots, func(r models.ID) bool { return r == id })
		t.parentsLoaded = max(t.parentsLoaded-1, 0)
	} else if p, ok := t.nodes[n.parent]; ok {
		p.replies = slices.DeleteFunc(p.replies, func(r models.ID) bool { return r == id })
		p.comment.Children = slices.DeleteFunc(p.comment.Children, func(r models.ID) bool { return r == id })
		if len(p.comment.Children) == 0 {
			p.replyLoaded = false
		}
	}
	t.drop(id)
	return nil
}

// drop removes id and its loaded descendants from the index.
func (t *Tree) drop(id models.ID) {
	stack := []models.ID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n, ok := t.nodes[cur]; ok {
			stack = append(stack, n.replies...)
			delete(t.nodes, cur)
		}
	}
}

// Flatten walks the tree depth first and returns the rows to render.
func (t *Tree) Flatten() []Row {
	rows := make([]Row, 0, len(t.nodes))
	var walk func(id models.ID, parentIndex int)
	walk = func(id models.ID, parentIndex int) {
		n := t.nodes[id]
		row := Row{
			Comment:       n.comment,
			ChildrenLevel: n.level,
			ParentIndex:   parentIndex,
			IsReplyLoaded: n.replyLoaded,
		}
		if n.replyLoaded {
			row.MoreReplies = max(len(n.comment.Children)-len(n.replies), 0)
		}
		rows = append(rows, row)
		self := len(rows) - 1
		if !n.replyLoaded {
			return
		}
		for _, child := range n.replies {
			walk(child, self)
		}
	}
	for _, id := range t.roots {
		walk(id, -1)
	}
	return rows
}
