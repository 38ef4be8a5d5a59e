package main

import (
	"context"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/quote-intake/internal/export"
	"github.com/sells-group/quote-intake/internal/model"
	"github.com/sells-group/quote-intake/internal/store"
)

const exportPageSize = 500

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored submissions to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, envOptions{mode: "store", store: true})
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := allSubmissions(ctx, env.Store)
		if err != nil {
			return err
		}

		f, err := os.Create(exportOut)
		if err != nil {
			return eris.Wrapf(err, "export: create %s", exportOut)
		}
		defer f.Close() //nolint:errcheck

		if err := export.WriteXLSX(f, subs); err != nil {
			return err
		}
		zap.L().Info("export complete", zap.String("file", exportOut), zap.Int("submissions", len(subs)))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "submissions.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}

// allSubmissions pages through the store, newest first.
func allSubmissions(ctx context.Context, st store.Store) ([]model.Submission, error) {
	var all []model.Submission
	for offset := 0; ; offset += exportPageSize {
		page, err := st.ListSubmissions(ctx, model.SubmissionFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return nil, eris.Wrap(err, "export: list submissions")
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
	}
}
