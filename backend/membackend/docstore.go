// Package membackend is a complete in-memory realization of the backend
// contract.  It backs the test suites and the `backend: mem` development
// mode of cmd/drilldeck.
package membackend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"drilldeck/backend"
)

type memDoc struct {
	id   string
	data interface{}
}

func (d *memDoc) ID() string { return d.id }

// DataTo copies the stored value into dst, which must be a non-nil
// pointer to the same struct type that was written.
func (d *memDoc) DataTo(dst interface{}) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("dst must be a non-nil pointer, got %T", dst)
	}

	sv := reflect.ValueOf(d.data)
	if sv.Kind() == reflect.Ptr {
		sv = sv.Elem()
	}

	if sv.Type() != dv.Elem().Type() {
		return fmt.Errorf("document holds %s, but dst is %s", sv.Type(), dv.Elem().Type())
	}

	dv.Elem().Set(sv)
	return nil
}

// DocStore is an in-memory document store with snapshot push.
type DocStore struct {
	mu          sync.Mutex
	collections map[string]map[string]interface{}
	seq         int
	subs        map[*subscription]struct{}
}

func NewDocStore() *DocStore {
	return &DocStore{
		collections: map[string]map[string]interface{}{},
		subs:        map[*subscription]struct{}{},
	}
}

func (s *DocStore) NewID(collection string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return fmt.Sprintf("%s-%08d", collection, s.seq)
}

func (s *DocStore) Get(ctx context.Context, collection, id string) (backend.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return &memDoc{id: id, data: data}, nil
}

func (s *DocStore) Query(ctx context.Context, q backend.Query) ([]backend.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryLocked(q)
}

func (s *DocStore) queryLocked(q backend.Query) ([]backend.Doc, error) {
	var docs []backend.Doc
	for id, data := range s.collections[q.Collection] {
		matched := true
		for _, f := range q.Filters {
			got, ok := fieldByPath(data, f.Path)
			if !ok {
				return nil, fmt.Errorf("no field %q on documents in collection %q", f.Path, q.Collection)
			}
			if f.Op != "==" {
				return nil, fmt.Errorf("unsupported filter operator %q", f.Op)
			}
			if !reflect.DeepEqual(got, f.Value) {
				matched = false
				break
			}
		}
		if matched {
			docs = append(docs, &memDoc{id: id, data: data})
		}
	}

	// Sort by the order-by field, falling back to ID so results are
	// deterministic.
	sort.Slice(docs, func(i, j int) bool {
		if q.OrderBy != "" {
			a, aok := fieldByPath(docs[i].(*memDoc).data, q.OrderBy)
			b, bok := fieldByPath(docs[j].(*memDoc).data, q.OrderBy)
			if aok && bok && !reflect.DeepEqual(a, b) {
				if q.Desc {
					return fieldLess(b, a)
				}
				return fieldLess(a, b)
			}
		}
		return docs[i].ID() < docs[j].ID()
	})

	return docs, nil
}

func (s *DocStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	id := s.NewID(collection)
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *DocStore) Set(ctx context.Context, collection, id string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(collection, id, data)
	s.notifyLocked(collection)
	return nil
}

func (s *DocStore) setLocked(collection, id string, data interface{}) {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		// Store a copy so later mutation of the caller's struct doesn't
		// leak into the store.
		data = v.Elem().Interface()
	}

	if s.collections[collection] == nil {
		s.collections[collection] = map[string]interface{}{}
	}
	s.collections[collection][id] = data
}

func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	s.notifyLocked(collection)
	return nil
}

func (s *DocStore) BatchWrite(ctx context.Context, ops []backend.WriteOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := map[string]bool{}
	for _, op := range ops {
		switch op.Kind {
		case backend.WriteSet:
			s.setLocked(op.Collection, op.ID, op.Data)
		case backend.WriteDelete:
			delete(s.collections[op.Collection], op.ID)
		default:
			return fmt.Errorf("unknown write kind %d", op.Kind)
		}
		touched[op.Collection] = true
	}

	for collection := range touched {
		s.notifyLocked(collection)
	}
	return nil
}

func (s *DocStore) notifyLocked(collection string) {
	for sub := range s.subs {
		if sub.q.Collection != collection {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
			// A change signal is already pending; the subscriber will see
			// this write in the snapshot it is about to read.
		}
	}
}

type subscription struct {
	store    *DocStore
	q        backend.Query
	ch       chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func (s *DocStore) Snapshots(ctx context.Context, q backend.Query) (backend.Subscription, error) {
	sub := &subscription{
		store: s,
		q:     q,
		ch:    make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	// Queue the initial snapshot delivery.
	sub.ch <- struct{}{}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub, nil
}

func (s *subscription) Next(ctx context.Context) ([]backend.Doc, error) {
	// Teardown wins over a pending change signal.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, errors.New("subscription is stopped")
	default:
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, errors.New("subscription is stopped")
	case <-s.ch:
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.queryLocked(s.q)
}

func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.store.mu.Lock()
		delete(s.store.subs, s)
		s.store.mu.Unlock()
		close(s.done)
	})
}

// fieldByPath resolves a firestore field path like "author.id" against a
// stored struct value, honoring `firestore:"..."` tags.
func fieldByPath(data interface{}, path string) (interface{}, bool) {
	v := reflect.ValueOf(data)
	for _, part := range strings.Split(path, ".") {
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return nil, false
		}

		found := false
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			name := t.Field(i).Tag.Get("firestore")
			if name == "" {
				name = strings.ToLower(t.Field(i).Name)
			}
			if name == part {
				v = v.Field(i)
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return v.Interface(), true
}

func fieldLess(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Before(bv)
	case string:
		bv, ok := b.(string)
		return ok && av < bv
	case int:
		bv, ok := b.(int)
		return ok && av < bv
	case int64:
		bv, ok := b.(int64)
		return ok && av < bv
	case float64:
		bv, ok := b.(float64)
		return ok && av < bv
	}
	return false
}
