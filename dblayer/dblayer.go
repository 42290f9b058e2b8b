// Package dblayer packages up most document-store access behind typed
// operations.
package dblayer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"

	"github.com/google/uuid"
)

// Collection names in the shared project.
const (
	UsersCollection           = "users"
	PostsCollection           = "posts"
	LikesCollection           = "likes"
	MessagesCollection        = "messages"
	FeedbackCollection        = "feedback"
	QuizCollectionsCollection = "quizCollections"
	QuizAnswersCollection     = "quizAnswers"
)

var (
	ErrPostNotFound        = errors.New("no post with that ID")
	ErrQuizNotFound        = errors.New("no quiz collection with that ID")
	ErrAlreadyLiked        = errors.New("post is already liked by this user")
	ErrAlreadySubmitted    = errors.New("quiz was already submitted by this employee")
	ErrUnansweredQuestions = errors.New("every question must be answered")
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
)

// Policy resolves behavior the backend does not enforce.  The defaults
// match observed production behavior: duplicate likes are possible when
// clients race, and quiz retakes are allowed.
type Policy struct {
	RejectDuplicateLikes bool
	RejectQuizRetakes    bool
}

// DB is the application's view of the document and file stores.
type DB struct {
	docs   backend.DocStore
	files  backend.FileStore
	policy Policy
}

func New(docs backend.DocStore, files backend.FileStore, policy Policy) *DB {
	return &DB{
		docs:   docs,
		files:  files,
		policy: policy,
	}
}

// SetUser writes the users/{uid} document.
func (db *DB) SetUser(ctx context.Context, uid string, user *dbtypes.User) error {
	if err := db.docs.Set(ctx, UsersCollection, uid, user); err != nil {
		return fmt.Errorf("while writing user document %s: %w", uid, err)
	}
	return nil
}

// ListUsers returns every users/{uid} document, for the admin people
// page.
func (db *DB) ListUsers(ctx context.Context) ([]*dbtypes.User, error) {
	docs, err := db.docs.Query(ctx, backend.Query{Collection: UsersCollection})
	if err != nil {
		return nil, fmt.Errorf("while querying users: %w", err)
	}

	var users []*dbtypes.User
	for _, doc := range docs {
		user := &dbtypes.User{}
		if err := doc.DataTo(user); err != nil {
			return nil, fmt.Errorf("while unmarshaling user %s: %w", doc.ID(), err)
		}
		users = append(users, user)
	}
	return users, nil
}

// PostsQuery is the canonical posts query, shared with the live feed.
func PostsQuery() backend.Query {
	return backend.Query{
		Collection: PostsCollection,
		OrderBy:    "timestamp",
		Desc:       true,
	}
}

// PostsFromDocs decodes a posts snapshot and re-sorts it newest-first.
func PostsFromDocs(docs []backend.Doc) ([]*dbtypes.Post, error) {
	var posts []*dbtypes.Post
	for _, doc := range docs {
		post := &dbtypes.Post{}
		if err := doc.DataTo(post); err != nil {
			return nil, fmt.Errorf("while unmarshaling post %s: %w", doc.ID(), err)
		}
		post.ID = doc.ID()
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Timestamp.After(posts[j].Timestamp)
	})
	return posts, nil
}

func (db *DB) ListPosts(ctx context.Context) ([]*dbtypes.Post, error) {
	docs, err := db.docs.Query(ctx, PostsQuery())
	if err != nil {
		return nil, fmt.Errorf("while querying posts: %w", err)
	}
	return PostsFromDocs(docs)
}

// ImageUpload is one selected image for a new post.
type ImageUpload struct {
	Name string
	Data io.Reader
}

// UploadProfilePhoto stores a profile picture and returns its download
// URL.  Old photos are not cleaned up; the account just points at the
// newest one.
func (db *DB) UploadProfilePhoto(ctx context.Context, uid string, photo ImageUpload) (string, error) {
	path := fmt.Sprintf("profilePhotos/%s/%s.jpg", uid, uuid.New().String())

	ref, err := db.files.Upload(ctx, path, photo.Data)
	if err != nil {
		return "", fmt.Errorf("while uploading profile photo %q: %w", photo.Name, err)
	}

	url, err := db.files.DownloadURL(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("while resolving download URL for %q: %w", photo.Name, err)
	}
	return url, nil
}

// CreatePost uploads the images in selection order, then commits the post
// document.  One failed upload aborts the whole creation; blobs uploaded
// before the failure are left behind for operator cleanup.
func (db *DB) CreatePost(ctx context.Context, author dbtypes.PostAuthor, description string, images []ImageUpload) (*dbtypes.Post, error) {
	postID := db.docs.NewID(PostsCollection)

	var imageURLs []string
	for i, img := range images {
		path := fmt.Sprintf("posts/%s/%s_%d.jpg", postID, uuid.New().String(), i)

		ref, err := db.files.Upload(ctx, path, img.Data)
		if err != nil {
			return nil, fmt.Errorf("while uploading image %q: %w", img.Name, err)
		}

		url, err := db.files.DownloadURL(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("while resolving download URL for %q: %w", img.Name, err)
		}
		imageURLs = append(imageURLs, url)
	}

	post := &dbtypes.Post{
		ID:          postID,
		Description: description,
		ImageURLs:   imageURLs,
		Author:      author,
		Timestamp:   time.Now(),
	}

	err := db.docs.BatchWrite(ctx, []backend.WriteOp{
		{Kind: backend.WriteSet, Collection: PostsCollection, ID: postID, Data: post},
	})
	if err != nil {
		return nil, fmt.Errorf("while committing post: %w", err)
	}

	return post, nil
}

// DeletePost removes a post, its images, and every like referencing it.
// The image deletes happen first and a failure there aborts the whole
// operation; the document-store portion commits atomically.
func (db *DB) DeletePost(ctx context.Context, postID string) error {
	doc, err := db.docs.Get(ctx, PostsCollection, postID)
	if errors.Is(err, backend.ErrNotFound) {
		return ErrPostNotFound
	}
	if err != nil {
		return fmt.Errorf("while reading post %s: %w", postID, err)
	}

	post := &dbtypes.Post{}
	if err := doc.DataTo(post); err != nil {
		return fmt.Errorf("while unmarshaling post %s: %w", postID, err)
	}

	for _, url := range post.ImageURLs {
		if err := db.files.Delete(ctx, url); err != nil {
			return fmt.Errorf("while deleting post image %q: %w", url, err)
		}
	}

	likeDocs, err := db.docs.Query(ctx, backend.Query{
		Collection: LikesCollection,
		Filters:    []backend.Filter{{Path: "postId", Op: "==", Value: postID}},
	})
	if err != nil {
		return fmt.Errorf("while querying likes for post %s: %w", postID, err)
	}

	ops := []backend.WriteOp{
		{Kind: backend.WriteDelete, Collection: PostsCollection, ID: postID},
	}
	for _, likeDoc := range likeDocs {
		ops = append(ops, backend.WriteOp{Kind: backend.WriteDelete, Collection: LikesCollection, ID: likeDoc.ID()})
	}

	if err := db.docs.BatchWrite(ctx, ops); err != nil {
		return fmt.Errorf("while committing post deletion: %w", err)
	}

	slog.InfoContext(ctx, "Deleted post and associated likes", slog.String("post", postID), slog.Int("likes", len(likeDocs)))
	return nil
}

// LikePost records a like.  Duplicate detection is policy-driven; the
// backend does not enforce uniqueness of (postId, userId).
func (db *DB) LikePost(ctx context.Context, postID, userID string) error {
	if db.policy.RejectDuplicateLikes {
		existing, err := db.likesFor(ctx, postID, userID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return ErrAlreadyLiked
		}
	}

	like := &dbtypes.Like{
		PostID:    postID,
		UserID:    userID,
		Timestamp: time.Now(),
	}
	if _, err := db.docs.Add(ctx, LikesCollection, like); err != nil {
		return fmt.Errorf("while adding like: %w", err)
	}
	return nil
}

// UnlikePost removes every like this user holds on the post, so a
// duplicate produced by a racing client is cleaned up too.
func (db *DB) UnlikePost(ctx context.Context, postID, userID string) error {
	likeDocs, err := db.likesFor(ctx, postID, userID)
	if err != nil {
		return err
	}

	for _, likeDoc := range likeDocs {
		if err := db.docs.Delete(ctx, LikesCollection, likeDoc.ID()); err != nil {
			return fmt.Errorf("while deleting like %s: %w", likeDoc.ID(), err)
		}
	}
	return nil
}

func (db *DB) likesFor(ctx context.Context, postID, userID string) ([]backend.Doc, error) {
	likeDocs, err := db.docs.Query(ctx, backend.Query{
		Collection: LikesCollection,
		Filters: []backend.Filter{
			{Path: "postId", Op: "==", Value: postID},
			{Path: "userId", Op: "==", Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("while querying likes for post %s: %w", postID, err)
	}
	return likeDocs, nil
}

// LikesForPost lists likes newest-first.
func (db *DB) LikesForPost(ctx context.Context, postID string) ([]*dbtypes.Like, error) {
	likeDocs, err := db.docs.Query(ctx, backend.Query{
		Collection: LikesCollection,
		Filters:    []backend.Filter{{Path: "postId", Op: "==", Value: postID}},
		OrderBy:    "timestamp",
		Desc:       true,
	})
	if err != nil {
		return nil, fmt.Errorf("while querying likes for post %s: %w", postID, err)
	}

	var likes []*dbtypes.Like
	for _, likeDoc := range likeDocs {
		like := &dbtypes.Like{}
		if err := likeDoc.DataTo(like); err != nil {
			return nil, fmt.Errorf("while unmarshaling like %s: %w", likeDoc.ID(), err)
		}
		like.ID = likeDoc.ID()
		likes = append(likes, like)
	}
	return likes, nil
}
