package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/quote-intake/internal/extract"
	"github.com/sells-group/quote-intake/internal/intake"
	"github.com/sells-group/quote-intake/internal/model"
)

var (
	ingestDryRun bool
	ingestFormat string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Ingest a local email body or PDF attachment",
	Long:  "Runs extraction and the completeness gate over one local file. Files ending in .pdf take the PDF path; anything else is read as an email body. With --dry-run nothing is stored.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := checkFormat(ingestFormat); err != nil {
			return err
		}

		opts := envOptions{mode: "ingest", store: true}
		if ingestDryRun {
			opts = envOptions{}
		}
		env, err := initEnv(ctx, opts)
		if err != nil {
			return err
		}
		defer env.Close()

		path := args[0]
		content, err := os.ReadFile(path)
		if err != nil {
			return eris.Wrapf(err, "ingest: read %s", path)
		}

		report := ingestFile(ctx, env.Service, filepath.Base(path), content, ingestDryRun)
		if err := writeReport(cmd.OutOrStdout(), ingestFormat, report); err != nil {
			return err
		}
		if !report.Accepted {
			return eris.Errorf("ingest: %s not accepted: %s", path, report.Message)
		}
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false, "extract and gate without storing")
	ingestCmd.Flags().StringVar(&ingestFormat, "format", "json", "output format: json or yaml")
	rootCmd.AddCommand(ingestCmd)
}

// ingestReport summarizes one file.
type ingestReport struct {
	Document     string                 `json:"document" yaml:"document"`
	Path         intake.Path            `json:"path" yaml:"path"`
	Accepted     bool                   `json:"accepted" yaml:"accepted"`
	Status       int                    `json:"status,omitempty" yaml:"status,omitempty"`
	Message      string                 `json:"message,omitempty" yaml:"message,omitempty"`
	SubmissionID string                 `json:"submission_id,omitempty" yaml:"submission_id,omitempty"`
	FieldCount   int                    `json:"field_count" yaml:"field_count"`
	Missing      []model.Field          `json:"missing,omitempty" yaml:"missing,omitempty"`
	Record       map[string]any         `json:"record" yaml:"record"`
	Sources      map[model.Field]string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

func pathFor(name string) intake.Path {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return intake.PathPDF
	}
	return intake.PathEmail
}

// ingestFile processes content through the path its name selects.
func ingestFile(ctx context.Context, svc *intake.Service, name string, content []byte, dryRun bool) ingestReport {
	path := pathFor(name)
	report := ingestReport{Document: name, Path: path}

	if dryRun {
		var (
			res     *extract.Result
			verdict extract.Verdict
		)
		if path == intake.PathPDF {
			res, verdict = svc.ExtractPDF(ctx, name, content)
		} else {
			res, verdict = svc.ExtractEmail(name, content)
		}
		report.Accepted = verdict.Accepted
		report.Message = verdict.Reason
		report.FieldCount = verdict.FieldCount
		report.Missing = verdict.Missing
		report.Record = recordMap(res.Record)
		report.Sources = res.Sources
		return report
	}

	var out *intake.Outcome
	if path == intake.PathPDF {
		out = svc.IngestPDF(ctx, name, content)
	} else {
		out = svc.IngestEmail(ctx, name, content)
	}
	report.Accepted = out.Accepted()
	report.Status = out.Status
	report.Message = out.Message
	report.SubmissionID = out.SubmissionID
	report.FieldCount = out.FieldCount
	report.Missing = out.Missing
	report.Record = recordMap(out.Record)
	report.Sources = out.Sources
	return report
}

// recordMap keys a record by plain strings for stable YAML output.
func recordMap(rec model.Record) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[string(k)] = v
	}
	return out
}

func checkFormat(format string) error {
	switch format {
	case "json", "yaml":
		return nil
	default:
		return eris.Errorf("unsupported format %q (want json or yaml)", format)
	}
}

func writeReport(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}
