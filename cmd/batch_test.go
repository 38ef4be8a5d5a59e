package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/quote-intake/internal/store"
)

func TestBatchFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "c.EML", "notes.md", "image.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	files, err := batchFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "c.EML"),
	}, files)
}

func TestBatchFiles_MissingDir(t *testing.T) {
	_, err := batchFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestProcessBatch_Counts(t *testing.T) {
	files := []string{"ok-1.pdf", "ok-2.txt", "short.txt", "broken.pdf"}
	summary, err := processBatch(context.Background(), files, 0, 2, func(_ context.Context, path string) (bool, error) {
		switch path {
		case "broken.pdf":
			return false, errors.New("read failed")
		case "short.txt":
			return false, nil
		default:
			return true, nil
		}
	})
	require.NoError(t, err)
	assert.Equal(t, batchSummary{Accepted: 2, Rejected: 1, Failed: 1}, summary)
}

func TestProcessBatch_Limit(t *testing.T) {
	var calls atomic.Int64
	files := []string{"a.txt", "b.txt", "c.txt"}
	summary, err := processBatch(context.Background(), files, 2, 0, func(context.Context, string) (bool, error) {
		calls.Add(1)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(2), summary.Accepted)
}

func TestProcessBatch_Empty(t *testing.T) {
	summary, err := processBatch(context.Background(), nil, 0, 5, func(context.Context, string) (bool, error) {
		t.Fatal("should not be called")
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, batchSummary{}, summary)
}

func TestBatchIngest_Outcomes(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	short := filepath.Join(dir, "short.txt")
	require.NoError(t, os.WriteFile(good, []byte(sampleEmail), 0o644))
	require.NoError(t, os.WriteFile(short, []byte("Insured: Acme Ltd\n"), 0o644))

	st, err := store.NewSQLite(filepath.Join(dir, "intake.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	svc := newTestIntake(st)

	ok, err := batchIngest(context.Background(), svc, good)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = batchIngest(context.Background(), svc, short)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = batchIngest(context.Background(), svc, filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestBatchIngest_PersistFailureCountsAsFailed(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte(sampleEmail), 0o644))

	st, err := store.NewSQLite(filepath.Join(dir, "intake.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	require.NoError(t, st.Close())
	svc := newTestIntake(st)

	summary, err := processBatch(context.Background(), []string{good}, 0, 1, func(ctx context.Context, path string) (bool, error) {
		return batchIngest(ctx, svc, path)
	})
	require.NoError(t, err)
	assert.Equal(t, batchSummary{Failed: 1}, summary)
}
