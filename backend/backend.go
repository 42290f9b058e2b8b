// Package backend defines the backend-as-a-service contract drilldeck is
// written against: an identity service, a document store, and a file
// store.  Consumers take these interfaces by injection; the concrete
// realizations live in gcpbackend and membackend.
package backend

import (
	"context"
	"errors"
	"io"

	"drilldeck/dbtypes"
)

var (
	ErrNotFound                   = errors.New("document not found")
	ErrEmailAlreadyRegistered     = errors.New("email is already registered")
	ErrUnknownUserOrWrongPassword = errors.New("unknown user or wrong password")
	ErrNotSignedIn                = errors.New("no user is signed in")
)

// Identity is the authentication service.  One signed-in account per
// process, mirroring a device-local identity SDK.
type Identity interface {
	CreateAccount(ctx context.Context, email, password string) (*dbtypes.Account, error)
	SignIn(ctx context.Context, email, password string) (*dbtypes.Account, error)
	SignOut(ctx context.Context) error
	UpdateDisplayName(ctx context.Context, displayName string) error
	UpdatePhotoURL(ctx context.Context, photoURL string) error

	// AuthStateChanges emits the current account (or nil) immediately on
	// subscription, then again on every sign-in or sign-out.  The returned
	// func detaches the listener; calling it more than once is safe.
	AuthStateChanges() (<-chan *dbtypes.Account, func())
}

// Doc is one document returned from the store.
type Doc interface {
	ID() string
	DataTo(dst interface{}) error
}

// Filter narrows a Query.  Op is a firestore comparison operator; only
// "==" is used here.
type Filter struct {
	Path  string
	Op    string
	Value interface{}
}

// Query selects documents from one collection.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Desc       bool
}

// Subscription delivers full query snapshots.  Next blocks until the
// watched result set changes (the first call delivers the initial
// contents).  Stop disposes of the listener; it must be called exactly
// once, and Next returns an error after it.
type Subscription interface {
	Next(ctx context.Context) ([]Doc, error)
	Stop()
}

type WriteKind int

const (
	WriteSet WriteKind = iota
	WriteDelete
)

// WriteOp is one element of an atomic batch commit.
type WriteOp struct {
	Kind       WriteKind
	Collection string
	ID         string
	Data       interface{}
}

// DocStore is the document database.
type DocStore interface {
	// NewID reserves a fresh document ID without writing anything.
	NewID(collection string) string

	// Get returns ErrNotFound if no document has that ID.
	Get(ctx context.Context, collection, id string) (Doc, error)
	Query(ctx context.Context, q Query) ([]Doc, error)
	Add(ctx context.Context, collection string, data interface{}) (string, error)
	Set(ctx context.Context, collection, id string, data interface{}) error
	Delete(ctx context.Context, collection, id string) error

	// Snapshots opens a standing listener for q.
	Snapshots(ctx context.Context, q Query) (Subscription, error)

	// BatchWrite commits all ops atomically, or none of them.
	BatchWrite(ctx context.Context, ops []WriteOp) error
}

// FileStore is the blob store for post images and profile photos.
type FileStore interface {
	Upload(ctx context.Context, path string, r io.Reader) (ref string, err error)
	DownloadURL(ctx context.Context, ref string) (string, error)
	Delete(ctx context.Context, ref string) error
}
