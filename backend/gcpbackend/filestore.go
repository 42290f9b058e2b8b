package gcpbackend

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// FileStore wraps a GCS bucket.
type FileStore struct {
	client *storage.Client
	bucket string
}

func NewFileStore(client *storage.Client, bucket string) *FileStore {
	return &FileStore{client: client, bucket: bucket}
}

func (fs *FileStore) Upload(ctx context.Context, path string, r io.Reader) (string, error) {
	w := fs.client.Bucket(fs.bucket).Object(path).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("while writing object %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("while finalizing object %s: %w", path, err)
	}
	return path, nil
}

func (fs *FileStore) DownloadURL(ctx context.Context, ref string) (string, error) {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", fs.bucket, ref), nil
}

// Delete accepts either a bare object name or a download URL produced by
// DownloadURL.
func (fs *FileStore) Delete(ctx context.Context, ref string) error {
	ref = strings.TrimPrefix(ref, fmt.Sprintf("https://storage.googleapis.com/%s/", fs.bucket))

	if err := fs.client.Bucket(fs.bucket).Object(ref).Delete(ctx); err != nil {
		return fmt.Errorf("while deleting object %s: %w", ref, err)
	}
	return nil
}
