package blob

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Local reads documents from root/<container>/<name>.
type Local struct {
	root     string
	maxBytes int64
}

// NewLocal creates a Local source rooted at root.
func NewLocal(root string, maxBytes int64) *Local {
	return &Local{root: root, maxBytes: maxBytes}
}

// Fetch implements Source.
func (l *Local) Fetch(ctx context.Context, container, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "blob: fetch")
	}
	if !filepath.IsLocal(name) || (container != "" && !filepath.IsLocal(container)) {
		return nil, eris.Errorf("blob: invalid document name %q", name)
	}

	f, err := os.Open(filepath.Join(l.root, container, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrapf(ErrNotFound, "blob: %s/%s", container, name)
		}
		return nil, eris.Wrapf(err, "blob: open %s/%s", container, name)
	}
	defer f.Close() //nolint:errcheck

	return readLimited(f, l.maxBytes)
}

// Close implements Source.
func (l *Local) Close() error { return nil }
