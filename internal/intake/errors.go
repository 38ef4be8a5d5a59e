package intake

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	// ErrMissingDocument is returned when a request names no document.
	ErrMissingDocument = eris.New("intake: missing document identifier")
	// ErrIncomplete is returned when the completeness gate rejects a record.
	ErrIncomplete = eris.New("intake: incomplete submission")
)

// Stage names the processing step a failure happened in.
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageDecode  Stage = "decode"
	StageExtract Stage = "extract"
	StageGate    Stage = "gate"
	StagePersist Stage = "persist"
)

// StageError is a failure tied to one document and stage.
type StageError struct {
	Stage    Stage
	Document string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Document, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
