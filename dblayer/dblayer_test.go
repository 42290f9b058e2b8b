package dblayer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"drilldeck/backend/membackend"
	"drilldeck/dbtypes"
)

func newTestDB(policy Policy) (*DB, *membackend.DocStore, *membackend.FileStore) {
	docs := membackend.NewDocStore()
	files := membackend.NewFileStore()
	return New(docs, files, policy), docs, files
}

func TestCreatePostUploadsImages(t *testing.T) {
	ctx := context.Background()
	db, _, files := newTestDB(Policy{})

	author := dbtypes.PostAuthor{ID: "admin-1", Username: "Pam"}
	post, err := db.CreatePost(ctx, author, "Never reuse passwords across services.", []ImageUpload{
		{Name: "poster.jpg", Data: strings.NewReader("jpeg-bytes")},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if len(post.ImageURLs) != 1 {
		t.Fatalf("CreatePost stored %d image URLs, want 1", len(post.ImageURLs))
	}
	if data, ok := files.Blob(post.ImageURLs[0]); !ok || string(data) != "jpeg-bytes" {
		t.Errorf("Uploaded blob at %q = %q, %v; want the uploaded bytes", post.ImageURLs[0], data, ok)
	}

	posts, err := db.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].Description != post.Description {
		t.Errorf("ListPosts = %+v, want the created post", posts)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	db, docs, _ := newTestDB(Policy{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, description := range []string{"oldest", "middle", "newest"} {
		id := docs.NewID(PostsCollection)
		err := docs.Set(ctx, PostsCollection, id, &dbtypes.Post{
			ID:          id,
			Description: description,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	posts, err := db.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}

	var got []string
	for _, post := range posts {
		got = append(got, post.Description)
	}
	want := []string{"newest", "middle", "oldest"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("ListPosts order = %v, want %v", got, want)
		}
	}
}

func TestDeletePostCascades(t *testing.T) {
	ctx := context.Background()
	db, _, files := newTestDB(Policy{})

	post, err := db.CreatePost(ctx, dbtypes.PostAuthor{ID: "admin-1"}, "Lock your screen when you step away.", []ImageUpload{
		{Name: "lock.jpg", Data: strings.NewReader("img")},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := db.LikePost(ctx, post.ID, "user-1"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if err := db.LikePost(ctx, post.ID, "user-2"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}

	if err := db.DeletePost(ctx, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	posts, err := db.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("ListPosts after delete = %+v, want empty", posts)
	}

	likes, err := db.LikesForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikesForPost: %v", err)
	}
	if len(likes) != 0 {
		t.Errorf("LikesForPost after delete = %+v, want empty", likes)
	}

	if _, ok := files.Blob(post.ImageURLs[0]); ok {
		t.Errorf("Post image still present after delete")
	}
}

func TestDeletePostMissing(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{})

	if err := db.DeletePost(ctx, "no-such-post"); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("DeletePost = %v, want ErrPostNotFound", err)
	}
}

// failingDeleteFileStore lets uploads succeed but fails every delete.
type failingDeleteFileStore struct {
	*membackend.FileStore
	err error
}

func (fs *failingDeleteFileStore) Delete(ctx context.Context, ref string) error {
	return fs.err
}

func TestDeletePostSurfacesImageDeleteFailure(t *testing.T) {
	ctx := context.Background()

	boom := errors.New("blob store down")
	docs := membackend.NewDocStore()
	files := &failingDeleteFileStore{FileStore: membackend.NewFileStore(), err: boom}
	db := New(docs, files, Policy{})

	post, err := db.CreatePost(ctx, dbtypes.PostAuthor{ID: "admin-1"}, "Report phishing to the security desk.", []ImageUpload{
		{Name: "phish.jpg", Data: strings.NewReader("img")},
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := db.DeletePost(ctx, post.ID); !errors.Is(err, boom) {
		t.Errorf("DeletePost = %v, want the blob store error", err)
	}

	// The document must survive an aborted delete.
	posts, err := db.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("ListPosts after aborted delete = %+v, want the post intact", posts)
	}
}

func TestDuplicateLikesAllowedByDefault(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{})

	post, err := db.CreatePost(ctx, dbtypes.PostAuthor{ID: "admin-1"}, "Use the password manager for shared credentials.", nil)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := db.LikePost(ctx, post.ID, "user-1"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if err := db.LikePost(ctx, post.ID, "user-1"); err != nil {
		t.Fatalf("Second LikePost: %v", err)
	}

	likes, err := db.LikesForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikesForPost: %v", err)
	}
	if len(likes) != 2 {
		t.Errorf("LikesForPost = %d likes, want 2 with the permissive policy", len(likes))
	}

	// Unlike cleans up both duplicates.
	if err := db.UnlikePost(ctx, post.ID, "user-1"); err != nil {
		t.Fatalf("UnlikePost: %v", err)
	}
	likes, err = db.LikesForPost(ctx, post.ID)
	if err != nil {
		t.Fatalf("LikesForPost: %v", err)
	}
	if len(likes) != 0 {
		t.Errorf("LikesForPost after unlike = %d likes, want 0", len(likes))
	}
}

func TestDuplicateLikesRejectedByPolicy(t *testing.T) {
	ctx := context.Background()
	db, _, _ := newTestDB(Policy{RejectDuplicateLikes: true})

	post, err := db.CreatePost(ctx, dbtypes.PostAuthor{ID: "admin-1"}, "Badge in one person at a time.", nil)
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if err := db.LikePost(ctx, post.ID, "user-1"); err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if err := db.LikePost(ctx, post.ID, "user-1"); !errors.Is(err, ErrAlreadyLiked) {
		t.Errorf("Second LikePost = %v, want ErrAlreadyLiked", err)
	}
}
