// Package session resumes the signed-in user at process start.
package session

import (
	"context"
	"errors"
	"fmt"

	"drilldeck/backend"
	"drilldeck/dbtypes"
)

// Resolver answers "who is signed in, if anyone" exactly once.
type Resolver struct {
	identity backend.Identity
	docs     backend.DocStore
}

func NewResolver(identity backend.Identity, docs backend.DocStore) *Resolver {
	return &Resolver{
		identity: identity,
		docs:     docs,
	}
}

// Resolve subscribes to identity state changes, consumes the first event,
// and detaches.  Later sign-ins and sign-outs during the process lifetime
// are not observed here; the mutation flows write the cache directly.
func (r *Resolver) Resolve(ctx context.Context) (*dbtypes.CurrentUser, error) {
	events, unsubscribe := r.identity.AuthStateChanges()
	defer unsubscribe()

	var account *dbtypes.Account
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case account = <-events:
	}

	if account == nil {
		return nil, nil
	}

	return r.Enrich(ctx, account)
}

// Enrich merges the users/{uid} document into a raw identity account.  A
// missing document degrades to an empty role and the identity-provider
// profile fields; any other read error rejects the resolution.
func (r *Resolver) Enrich(ctx context.Context, account *dbtypes.Account) (*dbtypes.CurrentUser, error) {
	user := &dbtypes.CurrentUser{
		Account:  *account,
		Username: account.DisplayName,
	}

	doc, err := r.docs.Get(ctx, "users", account.UID)
	if errors.Is(err, backend.ErrNotFound) {
		return user, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while reading user document for %s: %w", account.UID, err)
	}

	userDoc := &dbtypes.User{}
	if err := doc.DataTo(userDoc); err != nil {
		return nil, fmt.Errorf("while unmarshaling user document for %s: %w", account.UID, err)
	}

	user.Role = userDoc.Role
	if userDoc.Username != "" {
		user.Username = userDoc.Username
	}
	if userDoc.Email != "" {
		user.Email = userDoc.Email
	}

	return user, nil
}
