package domain

import "time"

// Stage enumerates pipeline milestones.
type Stage string

const (
	StageIngestion      Stage = "ingestion"
	StageValidation     Stage = "validation"
	StageTransformation Stage = "transformation"
)

// Diagnostic is a non-fatal note produced by a stage (absent column, missing target, ...).
type Diagnostic struct {
	Step    string
	Message string
}

// Diagnostics is an ordered list of notes.
type Diagnostics []Diagnostic

// Add appends a note.
func (d *Diagnostics) Add(step, message string) {
	*d = append(*d, Diagnostic{Step: step, Message: message})
}

// Messages returns the bare messages in order.
func (d Diagnostics) Messages() []string {
	out := make([]string, len(d))
	for i, n := range d {
		out[i] = n.Message
	}
	return out
}

// RunInfo identifies one pipeline execution.
type RunInfo struct {
	ID        string
	Stage     Stage
	StartedAt time.Time
}
