package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/quote-intake/internal/intake"
)

var batchLimit int

// batchExtensions are the file types batch picks up.
var batchExtensions = map[string]bool{".pdf": true, ".txt": true, ".eml": true}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Ingest every email body and PDF in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		files, err := batchFiles(args[0])
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, envOptions{mode: "batch", store: true})
		if err != nil {
			return err
		}
		defer env.Close()

		_, err = processBatch(ctx, files, batchLimit, cfg.Batch.MaxConcurrent, func(ctx context.Context, path string) (bool, error) {
			return batchIngest(ctx, env.Service, path)
		})
		return err
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of files to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// batchFiles lists the ingestible files directly under dir, sorted by name.
func batchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read dir %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !batchExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// batchIngest stores one file. Server-side failures (5xx outcomes) are
// returned as errors so they count as failed rather than rejected.
func batchIngest(ctx context.Context, svc *intake.Service, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, eris.Wrapf(err, "read %s", path)
	}
	report := ingestFile(ctx, svc, filepath.Base(path), content, false)
	if report.Status >= http.StatusInternalServerError {
		return false, eris.Errorf("ingest %s: status %d: %s", path, report.Status, report.Message)
	}
	return report.Accepted, nil
}

// ingestFunc processes one file and reports whether it was accepted.
type ingestFunc func(ctx context.Context, path string) (bool, error)

// batchSummary counts batch results.
type batchSummary struct {
	Accepted int64
	Rejected int64
	Failed   int64
}

// processBatch applies limit, then ingests files concurrently. A failing file
// never aborts the batch.
func processBatch(ctx context.Context, files []string, limit, concurrency int, ingest ingestFunc) (batchSummary, error) {
	if len(files) == 0 {
		zap.L().Info("no ingestible files found")
		return batchSummary{}, nil
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("files", len(files)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var accepted, rejected, failed atomic.Int64

	for _, path := range files {
		path := path
		g.Go(func() error {
			log := zap.L().With(zap.String("document", path))

			ok, err := ingest(gctx, path)
			switch {
			case err != nil:
				failed.Add(1)
				log.Error("ingest failed", zap.Error(err))
			case ok:
				accepted.Add(1)
			default:
				rejected.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return batchSummary{}, eris.Wrap(err, "batch processing")
	}

	summary := batchSummary{Accepted: accepted.Load(), Rejected: rejected.Load(), Failed: failed.Load()}
	zap.L().Info("batch complete",
		zap.Int64("accepted", summary.Accepted),
		zap.Int64("rejected", summary.Rejected),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}
