package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/quote-intake/internal/model"
)

var (
	listInsured string
	listLimit   int
	listOffset  int
	listFormat  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkFormat(listFormat); err != nil {
			return err
		}

		env, err := initEnv(ctx, envOptions{mode: "store", store: true})
		if err != nil {
			return err
		}
		defer env.Close()

		subs, err := env.Store.ListSubmissions(ctx, model.SubmissionFilter{
			Insured: listInsured,
			Limit:   listLimit,
			Offset:  listOffset,
		})
		if err != nil {
			return eris.Wrap(err, "list submissions")
		}

		rows := make([]map[string]any, len(subs))
		for i, sub := range subs {
			rows[i] = recordMap(sub.Values)
			rows[i]["id"] = sub.ID
		}
		return writeReport(cmd.OutOrStdout(), listFormat, rows)
	},
}

func init() {
	listCmd.Flags().StringVar(&listInsured, "insured", "", "filter by insured name substring")
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "max submissions to show")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "submissions to skip")
	listCmd.Flags().StringVar(&listFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(listCmd)
}
