// Package feed keeps the posts cache in sync with the remote collection
// through a standing snapshot listener.
package feed

import (
	"context"
	"sync"

	"drilldeck/backend"
	"drilldeck/dblayer"
	"drilldeck/dbtypes"

	"github.com/golang/glog"
)

// Feed watches the posts collection.
type Feed struct {
	docs backend.DocStore
}

func New(docs backend.DocStore) *Feed {
	return &Feed{docs: docs}
}

// Subscribe opens the listener and invokes onChange with the full,
// newest-first snapshot on the initial contents and on every remote
// change.  The returned stop func tears the listener down; it must be
// called exactly once, and calling it again is a no-op.
//
// A listener error is logged and the feed silently stops updating; there
// is no reconnect.
func (f *Feed) Subscribe(ctx context.Context, onChange func([]*dbtypes.Post)) (func(), error) {
	sub, err := f.docs.Snapshots(ctx, dblayer.PostsQuery())
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			docs, err := sub.Next(ctx)
			if err != nil {
				if ctx.Err() == nil {
					glog.Errorf("Post feed listener failed, feed is now stale: %v", err)
				}
				return
			}

			posts, err := dblayer.PostsFromDocs(docs)
			if err != nil {
				glog.Errorf("Error while decoding post feed snapshot: %v", err)
				return
			}

			// A teardown that raced the snapshot delivery wins; the
			// subscriber must see nothing after stop.
			if ctx.Err() != nil {
				return
			}

			onChange(posts)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			sub.Stop()
			<-done
		})
	}
	return stop, nil
}
