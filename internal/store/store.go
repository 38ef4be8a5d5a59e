// Package store persists accepted submissions. It is the submission sink:
// each insert is one atomic row write.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/quote-intake/internal/model"
)

// ErrNotFound is returned by GetSubmission for an unknown id.
var ErrNotFound = eris.New("store: submission not found")

// Table is the submissions table name.
const Table = "submissions"

const defaultListLimit = 100

// Store defines the persistence interface for submissions.
type Store interface {
	// InsertSubmission writes sub as a single row and returns its new id.
	InsertSubmission(ctx context.Context, sub *model.Submission) (string, error)
	GetSubmission(ctx context.Context, id string) (*model.Submission, error)
	// ListSubmissions returns submissions newest first.
	ListSubmissions(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// columns returns the stored column order: id, the canonical fields, then
// the unparsed value map.
func columns() []string {
	cols := append([]string{"id"}, model.Columns()...)
	return append(cols, "unparsed")
}

// unparsedJSON encodes the numeric values kept as raw text, or nil.
func unparsedJSON(sub *model.Submission) ([]byte, error) {
	raw := sub.Unparsed()
	if len(raw) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal unparsed values")
	}
	return b, nil
}

// assemble builds a Submission from scanned column values. Raw values from
// the unparsed map are restored into their numeric fields.
func assemble(id, sourceFile string, submittedAt time.Time, values model.Record, unparsed []byte) (*model.Submission, error) {
	if len(unparsed) > 0 {
		var raw map[string]string
		if err := json.Unmarshal(unparsed, &raw); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal unparsed values")
		}
		for k, v := range raw {
			f := model.Field(k)
			if f.Valid() && f.IsNumeric() && values[f] == nil {
				values[f] = v
			}
		}
	}

	submittedAt = submittedAt.UTC()
	values[model.FieldSourceFile] = sourceFile
	values[model.FieldSubmittedAt] = submittedAt
	return &model.Submission{
		ID:          id,
		SourceFile:  sourceFile,
		SubmittedAt: submittedAt,
		Values:      values,
	}, nil
}

func listLimit(filter model.SubmissionFilter) int {
	if filter.Limit <= 0 {
		return defaultListLimit
	}
	return filter.Limit
}
