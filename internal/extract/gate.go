package extract

import (
	"fmt"
	"strings"

	"github.com/sells-group/quote-intake/internal/model"
)

// MinPopulatedFields is the fewest populated fields an accepted record may
// carry, essentials included.
const MinPopulatedFields = 7

// Verdict holds the outcome of the completeness gate.
type Verdict struct {
	Accepted   bool          `json:"accepted"`
	Missing    []model.Field `json:"missing,omitempty"`
	FieldCount int           `json:"field_count"`
	Reason     string        `json:"reason,omitempty"`
}

// CheckCompleteness decides whether rec holds enough data to persist. A
// record missing any essential field is rejected whatever its size;
// otherwise it needs MinPopulatedFields populated fields.
func CheckCompleteness(rec model.Record) Verdict {
	v := Verdict{FieldCount: rec.Populated()}
	for _, f := range model.EssentialFields() {
		if !rec.Has(f) {
			v.Missing = append(v.Missing, f)
		}
	}

	switch {
	case len(v.Missing) > 0:
		names := make([]string, len(v.Missing))
		for i, f := range v.Missing {
			names[i] = string(f)
		}
		v.Reason = fmt.Sprintf("missing essential fields: %s (%d fields extracted)",
			strings.Join(names, ", "), v.FieldCount)
	case v.FieldCount < MinPopulatedFields:
		v.Reason = fmt.Sprintf("only %d fields extracted, need at least %d",
			v.FieldCount, MinPopulatedFields)
	default:
		v.Accepted = true
	}
	return v
}
