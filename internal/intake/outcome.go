package intake

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/sells-group/quote-intake/internal/extract"
	"github.com/sells-group/quote-intake/internal/model"
)

// Path identifies an ingestion entry point.
type Path string

const (
	PathEmail Path = "email"
	PathPDF   Path = "pdf"
)

// Outcome is the result of processing one document. Status follows HTTP
// semantics: 200 accepted and persisted, 400 missing identifier or
// incomplete data, 500 anything else.
type Outcome struct {
	Status       int                    `json:"status"`
	Message      string                 `json:"message"`
	Path         Path                   `json:"path"`
	Document     string                 `json:"document,omitempty"`
	SubmissionID string                 `json:"submission_id,omitempty"`
	Subject      string                 `json:"-"`
	Missing      []model.Field          `json:"missing,omitempty"`
	Reason       string                 `json:"reason,omitempty"`
	FieldCount   int                    `json:"field_count"`
	Record       model.Record           `json:"record,omitempty"`
	Sources      map[model.Field]string `json:"sources,omitempty"`
	Err          error                  `json:"-"`
}

// Accepted reports whether the document was persisted.
func (o *Outcome) Accepted() bool { return o.Status == http.StatusOK }

// StatusLabel is the status code as a metric label.
func (o *Outcome) StatusLabel() string { return strconv.Itoa(o.Status) }

// Incomplete reports whether the gate rejected the document.
func (o *Outcome) Incomplete() bool { return errors.Is(o.Err, ErrIncomplete) }

func (o *Outcome) setResult(res *extract.Result, v extract.Verdict) {
	o.Record = res.Record
	o.Sources = res.Sources
	o.FieldCount = v.FieldCount
	o.Missing = v.Missing
	o.Reason = v.Reason
}

// statusFor maps an error to a response status.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingDocument), errors.Is(err, ErrIncomplete):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
