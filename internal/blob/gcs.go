package blob

import (
	"context"
	"errors"
	"path"

	"cloud.google.com/go/storage"
	"github.com/rotisserie/eris"
	"google.golang.org/api/option"
)

// GCS reads documents from a Cloud Storage bucket. The container becomes the
// object prefix.
type GCS struct {
	client   *storage.Client
	bucket   string
	maxBytes int64
}

// NewGCS creates a GCS source. A non-empty endpoint points the client at an
// emulator and disables authentication.
func NewGCS(ctx context.Context, bucket, endpoint string, maxBytes int64) (*GCS, error) {
	if bucket == "" {
		return nil, eris.New("blob: gcs provider requires a bucket")
	}
	var opts []option.ClientOption
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "blob: create gcs client")
	}
	return &GCS{client: client, bucket: bucket, maxBytes: maxBytes}, nil
}

// Fetch implements Source.
func (g *GCS) Fetch(ctx context.Context, container, name string) ([]byte, error) {
	object := path.Join(container, name)
	r, err := g.client.Bucket(g.bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "blob: gs://%s/%s", g.bucket, object)
		}
		return nil, eris.Wrapf(err, "blob: open gs://%s/%s", g.bucket, object)
	}
	defer r.Close() //nolint:errcheck

	return readLimited(r, g.maxBytes)
}

// Close implements Source.
func (g *GCS) Close() error {
	return g.client.Close()
}
