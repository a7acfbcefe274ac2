package thread

import (
	"context"
	"fmt"

	"inkwell/internal/client"
	"inkwell/internal/models"
)

// Source is the subset of the API the loader reads from. *client.Client
// satisfies it.
type Source interface {
	PostComments(ctx context.Context, postID models.ID, skip int) ([]client.Comment, error)
	Replies(ctx context.Context, commentID models.ID, skip int) ([]client.Comment, error)
}

// Loader fills a Tree for one post, deriving every skip offset from what the
// tree already holds.
type Loader struct {
	src    Source
	postID models.ID
	tree   *Tree
}

func NewLoader(src Source, postID models.ID, tree *Tree) *Loader {
	if tree == nil {
		tree = New()
	}
	return &Loader{src: src, postID: postID, tree: tree}
}

func (l *Loader) Tree() *Tree { return l.tree }

// MoreParents fetches the next page of top-level comments.
func (l *Loader) MoreParents(ctx context.Context) (int, error) {
	page, err := l.src.PostComments(ctx, l.postID, l.tree.ParentsLoaded())
	if err != nil {
		return 0, fmt.Errorf("load comments of post %s: %w", l.postID, err)
	}
	return l.tree.AppendParents(page), nil
}

// Expand loads the first page of id's replies, or the next one when the
// replies are already shown.
func (l *Loader) Expand(ctx context.Context, id models.ID) (int, error) {
	if _, ok := l.tree.Get(id); !ok {
		return 0, ErrUnknownComment
	}
	page, err := l.src.Replies(ctx, id, l.tree.LoadedReplies(id))
	if err != nil {
		return 0, fmt.Errorf("load replies of %s: %w", id, err)
	}
	return l.tree.LoadReplies(id, page)
}
