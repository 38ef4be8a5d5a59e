package model

import (
	"time"
)

// Submission is a finalized record ready for persistence. Values carries every
// canonical field; fields never populated hold nil.
type Submission struct {
	ID          string    `json:"id"`
	SourceFile  string    `json:"source_file"`
	SubmittedAt time.Time `json:"submitted_at"`
	Values      Record    `json:"values"`
}

// SubmissionFilter specifies criteria for listing submissions.
type SubmissionFilter struct {
	Insured string `json:"insured,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Finalize copies rec into a Submission, stamping the metadata fields and
// filling every absent canonical field with nil.
func Finalize(rec Record, sourceFile string, submittedAt time.Time) *Submission {
	values := make(Record, len(fieldSpecs))
	for _, f := range Fields() {
		values[f] = nil
		if rec.Has(f) {
			values[f] = rec[f]
		}
	}
	submittedAt = submittedAt.UTC()
	values[FieldSourceFile] = sourceFile
	values[FieldSubmittedAt] = submittedAt

	return &Submission{
		SourceFile:  sourceFile,
		SubmittedAt: submittedAt,
		Values:      values,
	}
}

// Columns returns the canonical column names in order.
func Columns() []string {
	cols := make([]string, len(fieldSpecs))
	for i, s := range fieldSpecs {
		cols[i] = string(s.Field)
	}
	return cols
}

// Row returns the column values in Columns order. A numeric field holding a
// raw string (failed coercion) is returned as nil; see Unparsed.
func (s *Submission) Row() []any {
	row := make([]any, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		switch spec.Field {
		case FieldSourceFile:
			row[i] = s.SourceFile
			continue
		case FieldSubmittedAt:
			row[i] = s.SubmittedAt
			continue
		}
		v := s.Values[spec.Field]
		if _, isRaw := v.(string); isRaw && spec.Field.IsNumeric() {
			v = nil
		}
		row[i] = v
	}
	return row
}

// Unparsed returns numeric fields whose value could not be coerced and was
// kept as the raw matched text.
func (s *Submission) Unparsed() map[string]string {
	out := map[string]string{}
	for _, spec := range fieldSpecs {
		if !spec.Field.IsNumeric() {
			continue
		}
		if raw, ok := s.Values[spec.Field].(string); ok && raw != "" {
			out[string(spec.Field)] = raw
		}
	}
	return out
}
