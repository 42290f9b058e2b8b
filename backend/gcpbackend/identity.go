package gcpbackend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"log/slog"
	"os"
	"sync"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"

	"cloud.google.com/go/firestore"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/iterator"
)

const sessionLifetime = 30 * 24 * time.Hour

// accountDoc is the accounts/{uid} document.  It is private to the
// identity realization; the application-level users/{uid} document is a
// separate thing.
type accountDoc struct {
	Email        string    `firestore:"email"`
	PasswordHash string    `firestore:"passwordHash"`
	DisplayName  string    `firestore:"displayName"`
	PhotoURL     string    `firestore:"photoUrl"`
	CreatedAt    time.Time `firestore:"createdAt"`
}

// sessionDoc is the sessions/{id} document.
type sessionDoc struct {
	Token   string                 `firestore:"token"`
	Account *firestore.DocumentRef `firestore:"account"`
	Expires time.Time              `firestore:"expires"`
}

// Identity implements sign-in over an accounts collection with bcrypt
// password hashes and a sessions collection, with the session token
// persisted to disk so a restarted process resumes where it left off.
type Identity struct {
	client    *firestore.Client
	tokenPath string

	mu        sync.Mutex
	current   *dbtypes.Account
	token     string
	listeners map[chan *dbtypes.Account]struct{}
}

// NewIdentity builds the identity service and resumes any persisted
// session.  A stale or expired token degrades to signed-out rather than
// failing construction.
func NewIdentity(ctx context.Context, client *firestore.Client, tokenPath string) (*Identity, error) {
	id := &Identity{
		client:    client,
		tokenPath: tokenPath,
		listeners: map[chan *dbtypes.Account]struct{}{},
	}

	token, err := ioutil.ReadFile(tokenPath)
	if os.IsNotExist(err) {
		return id, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while reading session token: %w", err)
	}

	account, err := id.accountFromToken(ctx, string(token))
	if err != nil {
		return nil, fmt.Errorf("while resuming session: %w", err)
	}
	if account == nil {
		slog.InfoContext(ctx, "Persisted session token no longer corresponds to an active session")
		os.Remove(tokenPath)
		return id, nil
	}

	id.current = account
	id.token = string(token)
	return id, nil
}

// accountFromToken looks up a session by token and returns its account,
// or nil if the session is gone or expired.
func (id *Identity) accountFromToken(ctx context.Context, token string) (*dbtypes.Account, error) {
	var sessionSnapshot *firestore.DocumentSnapshot
	sessionIter := id.client.Collection("sessions").Where("token", "==", token).Documents(ctx)
	defer sessionIter.Stop()
	for {
		var err error
		sessionSnapshot, err = sessionIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up session: %w", err)
		}

		// We only consider a single session.
		break
	}
	if sessionSnapshot == nil {
		return nil, nil
	}

	session := &sessionDoc{}
	if err := sessionSnapshot.DataTo(session); err != nil {
		return nil, fmt.Errorf("while unmarshaling session: %w", err)
	}

	if session.Expires.Before(time.Now()) {
		return nil, nil
	}

	accountSnapshot, err := session.Account.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("while getting account linked from session: %w", err)
	}

	return accountFromSnapshot(accountSnapshot)
}

func accountFromSnapshot(snap *firestore.DocumentSnapshot) (*dbtypes.Account, error) {
	doc := &accountDoc{}
	if err := snap.DataTo(doc); err != nil {
		return nil, fmt.Errorf("while unmarshaling account: %w", err)
	}

	return &dbtypes.Account{
		UID:         snap.Ref.ID,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
		PhotoURL:    doc.PhotoURL,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

func (id *Identity) CreateAccount(ctx context.Context, email, password string) (*dbtypes.Account, error) {
	existingIter := id.client.Collection("accounts").Where("email", "==", email).Documents(ctx)
	defer existingIter.Stop()
	_, err := existingIter.Next()
	if err == nil {
		return nil, backend.ErrEmailAlreadyRegistered
	}
	if err != iterator.Done {
		return nil, fmt.Errorf("while checking for existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("while hashing password: %w", err)
	}

	accountRef := id.client.Collection("accounts").NewDoc()
	doc := &accountDoc{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if _, err := accountRef.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("while creating account: %w", err)
	}

	account := &dbtypes.Account{
		UID:       accountRef.ID,
		Email:     email,
		CreatedAt: doc.CreatedAt,
	}

	if err := id.openSession(ctx, accountRef, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (id *Identity) SignIn(ctx context.Context, email, password string) (*dbtypes.Account, error) {
	var accountSnapshot *firestore.DocumentSnapshot
	accountIter := id.client.Collection("accounts").Where("email", "==", email).Documents(ctx)
	defer accountIter.Stop()
	for {
		var err error
		accountSnapshot, err = accountIter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while looking up account with email %q: %w", email, err)
		}

		// We only consider a single account.
		break
	}

	if accountSnapshot == nil {
		return nil, backend.ErrUnknownUserOrWrongPassword
	}

	doc := &accountDoc{}
	if err := accountSnapshot.DataTo(doc); err != nil {
		return nil, fmt.Errorf("while unmarshaling account %q: %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)); err != nil {
		return nil, backend.ErrUnknownUserOrWrongPassword
	}

	account, err := accountFromSnapshot(accountSnapshot)
	if err != nil {
		return nil, err
	}

	if err := id.openSession(ctx, accountSnapshot.Ref, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (id *Identity) openSession(ctx context.Context, accountRef *firestore.DocumentRef, account *dbtypes.Account) error {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return fmt.Errorf("while generating session token: %w", err)
	}
	token := base64.StdEncoding.EncodeToString(tokenBytes)

	session := &sessionDoc{
		Token:   token,
		Account: accountRef,
		Expires: time.Now().Add(sessionLifetime),
	}
	if _, _, err := id.client.Collection("sessions").Add(ctx, session); err != nil {
		return fmt.Errorf("while storing session: %w", err)
	}

	if err := ioutil.WriteFile(id.tokenPath, []byte(token), 0600); err != nil {
		return fmt.Errorf("while persisting session token: %w", err)
	}

	id.mu.Lock()
	defer id.mu.Unlock()
	out := *account
	id.current = &out
	id.token = token
	id.broadcastLocked()
	return nil
}

func (id *Identity) SignOut(ctx context.Context) error {
	id.mu.Lock()
	token := id.token
	id.mu.Unlock()

	if token != "" {
		sessionIter := id.client.Collection("sessions").Where("token", "==", token).Documents(ctx)
		defer sessionIter.Stop()
		for {
			sessionSnapshot, err := sessionIter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return fmt.Errorf("while looking up session: %w", err)
			}

			if _, err := sessionSnapshot.Ref.Delete(ctx); err != nil {
				return fmt.Errorf("while deleting session: %w", err)
			}
		}
	}

	os.Remove(id.tokenPath)

	id.mu.Lock()
	defer id.mu.Unlock()
	id.current = nil
	id.token = ""
	id.broadcastLocked()
	return nil
}

func (id *Identity) UpdateDisplayName(ctx context.Context, displayName string) error {
	id.mu.Lock()
	current := id.current
	id.mu.Unlock()

	if current == nil {
		return backend.ErrNotSignedIn
	}

	accountRef := id.client.Collection("accounts").Doc(current.UID)
	_, err := accountRef.Update(ctx, []firestore.Update{{Path: "displayName", Value: displayName}})
	if err != nil {
		return fmt.Errorf("while updating display name: %w", err)
	}

	id.mu.Lock()
	defer id.mu.Unlock()
	if id.current != nil && id.current.UID == current.UID {
		id.current.DisplayName = displayName
	}
	return nil
}

func (id *Identity) UpdatePhotoURL(ctx context.Context, photoURL string) error {
	id.mu.Lock()
	current := id.current
	id.mu.Unlock()

	if current == nil {
		return backend.ErrNotSignedIn
	}

	accountRef := id.client.Collection("accounts").Doc(current.UID)
	_, err := accountRef.Update(ctx, []firestore.Update{{Path: "photoUrl", Value: photoURL}})
	if err != nil {
		return fmt.Errorf("while updating photo URL: %w", err)
	}

	id.mu.Lock()
	defer id.mu.Unlock()
	if id.current != nil && id.current.UID == current.UID {
		id.current.PhotoURL = photoURL
	}
	return nil
}

func (id *Identity) AuthStateChanges() (<-chan *dbtypes.Account, func()) {
	id.mu.Lock()
	defer id.mu.Unlock()

	ch := make(chan *dbtypes.Account, 8)
	id.listeners[ch] = struct{}{}

	if id.current != nil {
		out := *id.current
		ch <- &out
	} else {
		ch <- nil
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			id.mu.Lock()
			delete(id.listeners, ch)
			id.mu.Unlock()
		})
	}
	return ch, unsubscribe
}

func (id *Identity) broadcastLocked() {
	for ch := range id.listeners {
		var state *dbtypes.Account
		if id.current != nil {
			out := *id.current
			state = &out
		}
		select {
		case ch <- state:
		default:
			// Listener is not draining; drop rather than block sign-in.
		}
	}
}
