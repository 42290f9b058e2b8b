package membackend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"drilldeck/backend"
	"drilldeck/dbtypes"

	"golang.org/x/crypto/bcrypt"
)

type memAccount struct {
	account      dbtypes.Account
	passwordHash []byte
}

// Identity is an in-memory identity service.  It holds at most one
// signed-in account, like a device-local identity SDK.
type Identity struct {
	mu        sync.Mutex
	accounts  map[string]*memAccount // keyed by email
	current   *dbtypes.Account
	listeners map[chan *dbtypes.Account]struct{}
	seq       int
}

func NewIdentity() *Identity {
	return &Identity{
		accounts:  map[string]*memAccount{},
		listeners: map[chan *dbtypes.Account]struct{}{},
	}
}

func (id *Identity) CreateAccount(ctx context.Context, email, password string) (*dbtypes.Account, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	if _, ok := id.accounts[email]; ok {
		return nil, backend.ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	id.seq++
	account := dbtypes.Account{
		UID:       fmt.Sprintf("uid-%08d", id.seq),
		Email:     email,
		CreatedAt: time.Now(),
	}
	id.accounts[email] = &memAccount{account: account, passwordHash: hash}

	id.current = &account
	id.broadcastLocked()

	out := account
	return &out, nil
}

func (id *Identity) SignIn(ctx context.Context, email, password string) (*dbtypes.Account, error) {
	id.mu.Lock()
	defer id.mu.Unlock()

	stored, ok := id.accounts[email]
	if !ok {
		return nil, backend.ErrUnknownUserOrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(password)); err != nil {
		return nil, backend.ErrUnknownUserOrWrongPassword
	}

	account := stored.account
	id.current = &account
	id.broadcastLocked()

	out := account
	return &out, nil
}

func (id *Identity) SignOut(ctx context.Context) error {
	id.mu.Lock()
	defer id.mu.Unlock()

	id.current = nil
	id.broadcastLocked()
	return nil
}

func (id *Identity) UpdateDisplayName(ctx context.Context, displayName string) error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.current == nil {
		return backend.ErrNotSignedIn
	}

	id.current.DisplayName = displayName
	if stored, ok := id.accounts[id.current.Email]; ok {
		stored.account.DisplayName = displayName
	}
	return nil
}

func (id *Identity) UpdatePhotoURL(ctx context.Context, photoURL string) error {
	id.mu.Lock()
	defer id.mu.Unlock()

	if id.current == nil {
		return backend.ErrNotSignedIn
	}

	id.current.PhotoURL = photoURL
	if stored, ok := id.accounts[id.current.Email]; ok {
		stored.account.PhotoURL = photoURL
	}
	return nil
}

func (id *Identity) AuthStateChanges() (<-chan *dbtypes.Account, func()) {
	id.mu.Lock()
	defer id.mu.Unlock()

	ch := make(chan *dbtypes.Account, 8)
	id.listeners[ch] = struct{}{}

	// Subscribers see the current state right away.
	ch <- snapshotAccount(id.current)

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
		select {
		case ch <- snapshotAccount(id.current):
		default:
			// Listener is not draining; drop rather than block the
			// mutation that triggered the change.
		}
	}
}

func snapshotAccount(a *dbtypes.Account) *dbtypes.Account {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}
