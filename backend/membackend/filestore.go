package membackend

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"sync"

	"drilldeck/backend"
)

// FileStore keeps uploaded blobs in memory, keyed by path.
type FileStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewFileStore() *FileStore {
	return &FileStore{blobs: map[string][]byte{}}
}

func (fs *FileStore) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return "", err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.blobs[path] = data
	return path, nil
}

func (fs *FileStore) DownloadURL(ctx context.Context, ref string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.blobs[ref]; !ok {
		return "", backend.ErrNotFound
	}
	return "/blobs/" + ref, nil
}

// Delete accepts either a bare ref or a download URL produced by
// DownloadURL, matching how the real blob store resolves URLs back to
// objects.
func (fs *FileStore) Delete(ctx context.Context, ref string) error {
	ref = strings.TrimPrefix(ref, "/blobs/")

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if _, ok := fs.blobs[ref]; !ok {
		return backend.ErrNotFound
	}
	delete(fs.blobs, ref)
	return nil
}

// Blob returns the stored bytes for ref, for tests and the local dev
// image handler.
func (fs *FileStore) Blob(ref string) ([]byte, bool) {
	ref = strings.TrimPrefix(ref, "/blobs/")

	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, ok := fs.blobs[ref]
	return data, ok
}
