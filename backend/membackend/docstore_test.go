package membackend

import (
	"context"
	"errors"
	"testing"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"
)

func TestGetMissing(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	if _, err := s.Get(ctx, "posts", "nope"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	want := &dbtypes.User{Role: "admin", Username: "Pam", Email: "pam@example.com"}
	if err := s.Set(ctx, "users", "uid-1", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Mutating the caller's struct after Set must not change the store.
	want.Username = "changed"

	doc, err := s.Get(ctx, "users", "uid-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	got := &dbtypes.User{}
	if err := doc.DataTo(got); err != nil {
		t.Fatalf("DataTo: %v", err)
	}
	if got.Username != "Pam" {
		t.Errorf("Stored Username = %q, want %q", got.Username, "Pam")
	}
}

func TestQueryFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	likes := []*dbtypes.Like{
		{PostID: "p1", UserID: "u1", Timestamp: base},
		{PostID: "p1", UserID: "u2", Timestamp: base.Add(time.Minute)},
		{PostID: "p2", UserID: "u1", Timestamp: base.Add(2 * time.Minute)},
	}
	for _, like := range likes {
		if _, err := s.Add(ctx, "likes", like); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	docs, err := s.Query(ctx, backend.Query{
		Collection: "likes",
		Filters:    []backend.Filter{{Path: "postId", Op: "==", Value: "p1"}},
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("Query returned %d docs, want 2", len(docs))
	}

	first := &dbtypes.Like{}
	if err := docs[0].DataTo(first); err != nil {
		t.Fatalf("DataTo: %v", err)
	}
	if first.UserID != "u2" {
		t.Errorf("First doc UserID = %q, want the newest like %q", first.UserID, "u2")
	}
}

func TestQueryNestedFieldPath(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	post := &dbtypes.Post{
		ID:     "p1",
		Author: dbtypes.PostAuthor{ID: "admin-1", Username: "Pam"},
	}
	if err := s.Set(ctx, "posts", "p1", post); err != nil {
		t.Fatalf("Set: %v", err)
	}

	docs, err := s.Query(ctx, backend.Query{
		Collection: "posts",
		Filters:    []backend.Filter{{Path: "author.id", Op: "==", Value: "admin-1"}},
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Query on nested path returned %d docs, want 1", len(docs))
	}
}

func TestBatchWrite(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	if err := s.Set(ctx, "posts", "p1", &dbtypes.Post{ID: "p1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := s.BatchWrite(ctx, []backend.WriteOp{
		{Kind: backend.WriteDelete, Collection: "posts", ID: "p1"},
		{Kind: backend.WriteSet, Collection: "posts", ID: "p2", Data: &dbtypes.Post{ID: "p2"}},
	})
	if err != nil {
		t.Fatalf("BatchWrite: %v", err)
	}

	if _, err := s.Get(ctx, "posts", "p1"); !errors.Is(err, backend.ErrNotFound) {
		t.Errorf("Deleted doc still present: %v", err)
	}
	if _, err := s.Get(ctx, "posts", "p2"); err != nil {
		t.Errorf("Written doc missing: %v", err)
	}
}

func TestSnapshots(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	sub, err := s.Snapshots(ctx, backend.Query{Collection: "posts"})
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}

	// The first Next delivers the initial (empty) contents.
	docs, err := sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Initial snapshot = %d docs, want 0", len(docs))
	}

	if err := s.Set(ctx, "posts", "p1", &dbtypes.Post{ID: "p1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	docs, err = sub.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("Snapshot after write = %d docs, want 1", len(docs))
	}

	sub.Stop()
	if _, err := sub.Next(ctx); err == nil {
		t.Errorf("Next after Stop succeeded, want an error")
	}
}

func TestSnapshotsIgnoreOtherCollections(t *testing.T) {
	ctx := context.Background()
	s := NewDocStore()

	sub, err := s.Snapshots(ctx, backend.Query{Collection: "posts"})
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	defer sub.Stop()

	if _, err := sub.Next(ctx); err != nil {
		t.Fatalf("Next: %v", err)
	}

	if err := s.Set(ctx, "likes", "l1", &dbtypes.Like{ID: "l1"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	if _, err := sub.Next(waitCtx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Next saw a change from an unrelated collection: %v", err)
	}
}
