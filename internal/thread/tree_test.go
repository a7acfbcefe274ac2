package thread

import (
	"errors"
	"slices"
	"testing"

	"inkwell/internal/client"
	"inkwell/internal/models"
)

func cm(id models.ID, children ...models.ID) client.Comment {
	if children == nil {
		children = []models.ID{}
	}
	return client.Comment{ID: id, Children: children}
}

func ids(rows []Row) []models.ID {
	out := make([]models.ID, len(rows))
	for i, r := range rows {
		out[i] = r.Comment.ID
	}
	return out
}

func assertRows(t *testing.T, tr *Tree, want ...models.ID) []Row {
	t.Helper()
	rows := tr.Flatten()
	if got := ids(rows); !slices.Equal(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	return rows
}

func TestAppendParents(t *testing.T) {
	tr := New()
	if n := tr.AppendParents([]client.Comment{cm(1), cm(2)}); n != 2 {
		t.Fatalf("added = %d", n)
	}
	if n := tr.AppendParents([]client.Comment{cm(2), cm(3)}); n != 1 {
		t.Fatalf("duplicate should be skipped, added = %d", n)
	}
	rows := assertRows(t, tr, 1, 2, 3)
	for _, r := range rows {
		if r.ChildrenLevel != 0 || r.ParentIndex != -1 || r.IsReplyLoaded {
			t.Fatalf("root row = %+v", r)
		}
	}
	if tr.ParentsLoaded() != 3 {
		t.Fatalf("parents loaded = %d", tr.ParentsLoaded())
	}
}

func TestLoadRepliesAndLoadMore(t *testing.T) {
	tr := New()
	tr.AppendParents([]client.Comment{cm(1, 11, 12, 13), cm(2)})

	if _, err := tr.LoadReplies(1, []client.Comment{cm(11, 111), cm(12)}); err != nil {
		t.Fatal(err)
	}
	rows := assertRows(t, tr, 1, 11, 12, 2)
	if !rows[0].IsReplyLoaded || rows[0].MoreReplies != 1 {
		t.Fatalf("parent row = %+v", rows[0])
	}
	if rows[1].ChildrenLevel != 1 || rows[1].ParentIndex != 0 || rows[2].ParentIndex != 0 {
		t.Fatalf("reply rows = %+v %+v", rows[1], rows[2])
	}
	if tr.LoadedReplies(1) != 2 {
		t.Fatalf("loaded replies = %d", tr.LoadedReplies(1))
	}

	// Load more lands after the last loaded reply, not after the parent.
	if _, err := tr.LoadReplies(1, []client.Comment{cm(13)}); err != nil {
		t.Fatal(err)
	}
	rows = assertRows(t, tr, 1, 11, 12, 13, 2)
	if rows[0].MoreReplies != 0 {
		t.Fatalf("all replies loaded, more = %d", rows[0].MoreReplies)
	}

	if _, err := tr.LoadReplies(11, []client.Comment{cm(111)}); err != nil {
		t.Fatal(err)
	}
	rows = assertRows(t, tr, 1, 11, 111, 12, 13, 2)
	if rows[2].ChildrenLevel != 2 || rows[2].ParentIndex != 1 {
		t.Fatalf("nested row = %+v", rows[2])
	}
	if rows[4].ParentIndex != 0 {
		t.Fatalf("parent index must follow the insert, got %d", rows[4].ParentIndex)
	}

	if _, err := tr.LoadReplies(99, nil); !errors.Is(err, ErrUnknownComment) {
		t.Fatalf("unknown parent err = %v", err)
	}
}

func TestHideReplies(t *testing.T) {
	tr := New()
	tr.AppendParents([]client.Comment{cm(1, 11), cm(2)})
	_, _ = tr.LoadReplies(1, []client.Comment{cm(11, 111)})
	_, _ = tr.LoadReplies(11, []client.Comment{cm(111)})
	assertRows(t, tr, 1, 11, 111, 2)

	if err := tr.HideReplies(1); err != nil {
		t.Fatal(err)
	}
	rows := assertRows(t, tr, 1, 2)
	if rows[0].IsReplyLoaded {
		t.Fatal("hidden parent should not report loaded replies")
	}
	if _, ok := tr.Get(111); ok {
		t.Fatal("grandchild should be dropped with the subtree")
	}
	if tr.Len() != 2 || tr.LoadedReplies(1) != 0 {
		t.Fatalf("len = %d, loaded = %d", tr.Len(), tr.LoadedReplies(1))
	}

	// Expanding again starts from the first page.
	_, _ = tr.LoadReplies(1, []client.Comment{cm(11)})
	assertRows(t, tr, 1, 11, 2)
}

func TestAddComment(t *testing.T) {
	tr := New()
	tr.AppendParents([]client.Comment{cm(1), cm(2, 21)})

	if err := tr.AddComment(cm(3), 0); err != nil {
		t.Fatal(err)
	}
	assertRows(t, tr, 3, 1, 2)
	if tr.ParentsLoaded() != 3 {
		t.Fatalf("top-level add should bump parents loaded, got %d", tr.ParentsLoaded())
	}

	if err := tr.AddComment(cm(4), 1); err != nil {
		t.Fatal(err)
	}
	rows := assertRows(t, tr, 3, 1, 4, 2)
	if !rows[1].IsReplyLoaded || len(rows[1].Comment.Children) != 1 || rows[2].ChildrenLevel != 1 || rows[2].ParentIndex != 1 {
		t.Fatalf("reply placement = %+v %+v", rows[1], rows[2])
	}
	if tr.ParentsLoaded() != 3 {
		t.Fatalf("reply must not bump parents loaded, got %d", tr.ParentsLoaded())
	}

	// Replying to a collapsed comment shows only the new reply and leaves the
	// rest to load more.
	if err := tr.AddComment(cm(22), 2); err != nil {
		t.Fatal(err)
	}
	rows = assertRows(t, tr, 3, 1, 4, 2, 22)
	if rows[3].MoreReplies != 1 || tr.LoadedReplies(2) != 1 {
		t.Fatalf("collapsed parent row = %+v", rows[3])
	}

	// A second reply goes directly under the parent, above older ones.
	_ = tr.AddComment(cm(5), 1)
	assertRows(t, tr, 3, 1, 5, 4, 2, 22)

	if err := tr.AddComment(cm(6), 99); !errors.Is(err, ErrUnknownComment) {
		t.Fatalf("unknown parent err = %v", err)
	}
}

func TestRemove(t *testing.T) {
	tr := New()
	tr.AppendParents([]client.Comment{cm(1, 11, 12), cm(2)})
	_, _ = tr.LoadReplies(1, []client.Comment{cm(11, 111), cm(12)})
	_, _ = tr.LoadReplies(11, []client.Comment{cm(111)})

	if err := tr.Remove(11); err != nil {
		t.Fatal(err)
	}
	rows := assertRows(t, tr, 1, 12, 2)
	if !rows[0].IsReplyLoaded || len(rows[0].Comment.Children) != 1 {
		t.Fatalf("parent after removing one reply = %+v", rows[0])
	}
	if _, ok := tr.Get(111); ok {
		t.Fatal("descendants go with their ancestor")
	}

	_ = tr.Remove(12)
	rows = assertRows(t, tr, 1, 2)
	if rows[0].IsReplyLoaded {
		t.Fatal("a parent with no children left is no longer expanded")
	}

	_ = tr.Remove(1)
	assertRows(t, tr, 2)
	if tr.ParentsLoaded() != 1 {
		t.Fatalf("parents loaded = %d", tr.ParentsLoaded())
	}
	if err := tr.Remove(1); !errors.Is(err, ErrUnknownComment) {
		t.Fatalf("second remove err = %v", err)
	}
}
