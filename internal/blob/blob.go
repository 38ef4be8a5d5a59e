// Package blob retrieves incoming documents by container and name.
package blob

import (
	"context"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-intake/internal/config"
)

// ErrNotFound is returned when the named document does not exist.
var ErrNotFound = eris.New("blob: not found")

// DefaultMaxBytes caps a single document read.
const DefaultMaxBytes int64 = 32 << 20

// Source fetches documents. Implementations are safe for concurrent use.
type Source interface {
	Fetch(ctx context.Context, container, name string) ([]byte, error)
	Close() error
}

// NewSource creates a Source based on config.
func NewSource(ctx context.Context, cfg config.BlobConfig) (Source, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocal(cfg.Root, cfg.MaxBytes), nil
	case "gcs":
		return NewGCS(ctx, cfg.Bucket, cfg.Endpoint, cfg.MaxBytes)
	default:
		return nil, eris.Errorf("blob: unknown provider %q", cfg.Provider)
	}
}

// readLimited reads r fully, failing when it holds more than max bytes.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, eris.Wrap(err, "blob: read")
	}
	if int64(len(data)) > max {
		return nil, eris.Errorf("blob: document exceeds %d bytes", max)
	}
	return data, nil
}
