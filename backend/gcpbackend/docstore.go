// Package gcpbackend realizes the backend contract over Cloud Firestore
// and Google Cloud Storage.
package gcpbackend

import (
	"context"
	"fmt"

	"drilldeck/backend"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type gcpDoc struct {
	snap *firestore.DocumentSnapshot
}

func (d *gcpDoc) ID() string                   { return d.snap.Ref.ID }
func (d *gcpDoc) DataTo(dst interface{}) error { return d.snap.DataTo(dst) }

// DocStore wraps a firestore client.
type DocStore struct {
	client *firestore.Client
}

func NewDocStore(client *firestore.Client) *DocStore {
	return &DocStore{client: client}
}

func (s *DocStore) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

func (s *DocStore) Get(ctx context.Context, collection, id string) (backend.Doc, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, backend.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("while getting %s/%s: %w", collection, id, err)
	}
	return &gcpDoc{snap: snap}, nil
}

func (s *DocStore) buildQuery(q backend.Query) firestore.Query {
	fq := s.client.Collection(q.Collection).Query
	for _, f := range q.Filters {
		fq = fq.Where(f.Path, f.Op, f.Value)
	}
	if q.OrderBy != "" {
		dir := firestore.Asc
		if q.Desc {
			dir = firestore.Desc
		}
		fq = fq.OrderBy(q.OrderBy, dir)
	}
	return fq
}

func (s *DocStore) Query(ctx context.Context, q backend.Query) ([]backend.Doc, error) {
	var docs []backend.Doc

	iter := s.buildQuery(q).Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating %s: %w", q.Collection, err)
		}
		docs = append(docs, &gcpDoc{snap: snap})
	}

	return docs, nil
}

func (s *DocStore) Add(ctx context.Context, collection string, data interface{}) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("while adding to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *DocStore) Set(ctx context.Context, collection, id string, data interface{}) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("while setting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DocStore) BatchWrite(ctx context.Context, ops []backend.WriteOp) error {
	batch := s.client.Batch()
	for _, op := range ops {
		ref := s.client.Collection(op.Collection).Doc(op.ID)
		switch op.Kind {
		case backend.WriteSet:
			batch.Set(ref, op.Data)
		case backend.WriteDelete:
			batch.Delete(ref)
		default:
			return fmt.Errorf("unknown write kind %d", op.Kind)
		}
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("while committing batch: %w", err)
	}
	return nil
}

type gcpSubscription struct {
	iter *firestore.QuerySnapshotIterator
}

func (s *DocStore) Snapshots(ctx context.Context, q backend.Query) (backend.Subscription, error) {
	return &gcpSubscription{iter: s.buildQuery(q).Snapshots(ctx)}, nil
}

func (s *gcpSubscription) Next(ctx context.Context) ([]backend.Doc, error) {
	snap, err := s.iter.Next()
	if err != nil {
		return nil, fmt.Errorf("while waiting for snapshot: %w", err)
	}

	var docs []backend.Doc
	for {
		docSnap, err := snap.Documents.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while iterating snapshot documents: %w", err)
		}
		docs = append(docs, &gcpDoc{snap: docSnap})
	}

	return docs, nil
}

func (s *gcpSubscription) Stop() {
	s.iter.Stop()
}
