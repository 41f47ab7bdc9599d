package tenant

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// ColumnOutcome is the result of one column patch
type ColumnOutcome string

const (
	ColumnApplied        ColumnOutcome = "applied"
	ColumnAlreadyPresent ColumnOutcome = "already_present"
	ColumnFailed         ColumnOutcome = "failed"
)

// ColumnResult records what happened to one expected column
type ColumnResult struct {
	Table   string        `json:"table"`
	Column  string        `json:"column"`
	Outcome ColumnOutcome `json:"outcome"`
	Reason  string        `json:"reason,omitempty"`
}

// MigrationReport collects the outcome of one schema run against a tenant
type MigrationReport struct {
	NIT         string         `json:"nit"`
	FromVersion int            `json:"from_version"`
	Version     int            `json:"version"`
	Tables      []string       `json:"tables"`
	Columns     []ColumnResult `json:"columns"`
	Duration    time.Duration  `json:"duration"`
}

// Applied returns the columns added by this run
func (r *MigrationReport) Applied() []ColumnResult {
	return r.filter(ColumnApplied)
}

// Failed returns the columns that could not be added
func (r *MigrationReport) Failed() []ColumnResult {
	return r.filter(ColumnFailed)
}

// Err combines every failed column patch into one error, or nil
func (r *MigrationReport) Err() error {
	var err error
	for _, c := range r.Failed() {
		err = multierr.Append(err, fmt.Errorf("%s.%s: %s", c.Table, c.Column, c.Reason))
	}
	return err
}

func (r *MigrationReport) filter(outcome ColumnOutcome) []ColumnResult {
	var out []ColumnResult
	for _, c := range r.Columns {
		if c.Outcome == outcome {
			out = append(out, c)
		}
	}
	return out
}
