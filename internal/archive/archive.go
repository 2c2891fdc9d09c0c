package archive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

const uploadTimeout = 2 * time.Minute

// GCSArchiver stores raw alert-email text in a GCS bucket for audit and
// debugging. Archiving is best effort: callers log failures and keep going.
type GCSArchiver struct {
	client *storage.Client
	bucket string
}

// NewGCSArchiver creates an archiver writing to the given bucket. It assumes
// Application Default Credentials are configured.
func NewGCSArchiver(ctx context.Context, bucket string) (*GCSArchiver, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSArchiver: create storage client: %w", err)
	}
	return &GCSArchiver{client: client, bucket: bucket}, nil
}

// Put writes one message's text under messages/<id>.txt.
func (a *GCSArchiver) Put(ctx context.Context, messageID, text string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	obj := a.client.Bucket(a.bucket).Object(ObjectName(messageID))
	w := obj.NewWriter(ctx)
	w.ContentType = "text/plain; charset=utf-8"

	if _, err := io.Copy(w, strings.NewReader(text)); err != nil {
		_ = w.Close()
		return fmt.Errorf("Put: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Put: finalize upload: %w", err)
	}
	return nil
}

// Close releases the storage client.
func (a *GCSArchiver) Close() error {
	return a.client.Close()
}

// ObjectName is where a message's raw text lives inside the bucket.
func ObjectName(messageID string) string {
	return "messages/" + messageID + ".txt"
}
