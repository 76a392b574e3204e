package filesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GCSUploader writes files to a Google Cloud Storage bucket.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

// NewGCSUploader connects to Cloud Storage. Without options the client uses
// application default credentials.
func NewGCSUploader(ctx context.Context, bucket string, opts ...option.ClientOption) (*GCSUploader, error) {
	if bucket == "" {
		return nil, errors.New("filesearch: bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("filesearch: storage client: %w", err)
	}
	return &GCSUploader{client: client, bucket: bucket}, nil
}

// Upload writes r to object, refusing to overwrite an existing object, and
// returns its gs:// URI.
func (u *GCSUploader) Upload(ctx context.Context, object, mimeType string, r io.Reader) (string, error) {
	w := u.client.Bucket(u.bucket).Object(object).
		If(storage.Conditions{DoesNotExist: true}).
		NewWriter(ctx)
	w.ContentType = mimeType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("gcs write %s: %w", object, err)
	}
	if err := w.Close(); err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("gcs object %s already exists: %w", object, err)
		}
		return "", fmt.Errorf("gcs close %s: %w", object, err)
	}
	return gcsURI(u.bucket, object), nil
}

// Close releases the storage client.
func (u *GCSUploader) Close() error { return u.client.Close() }

func gcsURI(bucket, object string) string {
	return "gs://" + bucket + "/" + object
}
