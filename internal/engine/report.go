package engine

import (
	"fmt"

	"github.com/kofiadu/staffsync/internal/entity"
)

// RowStatus is the terminal state of one processed row.
type RowStatus string

const (
	StatusSuccess RowStatus = "success"
	StatusFailure RowStatus = "failure"
)

// RowOutcome records the fate of one row. Lifetime is one import run;
// outcomes are consumed by the aggregator and the audit record.
type RowOutcome struct {
	Sheet    string      `json:"sheet"`
	RowIndex int         `json:"rowIndex"` // zero-based data row index within the sheet
	Kind     entity.Kind `json:"kind"`
	Status   RowStatus   `json:"status"`
	Error    string      `json:"error,omitempty"`
	Raw      []string    `json:"raw,omitempty"`
}

// ImportReport is the structured summary returned to the caller after every
// import, including total failures.
type ImportReport struct {
	TotalPrimaryRows  int              `json:"totalPrimaryRows"`
	SuccessfulInserts int              `json:"successfulInserts"`
	FailedInserts     int              `json:"failedInserts"`
	FailedRowsBySheet map[string][]int `json:"failedRowsBySheet"`
	Message           string           `json:"message"`
}

// aggregator accumulates row outcomes across sheets and composes the final
// report.
type aggregator struct {
	outcomes []RowOutcome
	primary  int
}

func newAggregator() *aggregator {
	return &aggregator{}
}

func (a *aggregator) add(outcome RowOutcome) {
	a.outcomes = append(a.outcomes, outcome)
	if outcome.Kind == entity.Employee {
		a.primary++
	}
}

func (a *aggregator) addAll(outcomes []RowOutcome) {
	for _, o := range outcomes {
		a.add(o)
	}
}

// failures returns every failed outcome, for the audit record.
func (a *aggregator) failures() []RowOutcome {
	var failed []RowOutcome
	for _, o := range a.outcomes {
		if o.Status == StatusFailure {
			failed = append(failed, o)
		}
	}
	return failed
}

// report composes the import summary. The message depends on whether the
// run was a full success, a partial success, or a total failure.
func (a *aggregator) report() *ImportReport {
	r := &ImportReport{
		TotalPrimaryRows:  a.primary,
		FailedRowsBySheet: make(map[string][]int),
	}
	for _, o := range a.outcomes {
		switch o.Status {
		case StatusSuccess:
			r.SuccessfulInserts++
		case StatusFailure:
			r.FailedInserts++
			r.FailedRowsBySheet[o.Sheet] = append(r.FailedRowsBySheet[o.Sheet], o.RowIndex)
		}
	}

	switch {
	case r.FailedInserts == 0 && r.SuccessfulInserts > 0:
		r.Message = "All records imported. Recipients should check their notification channel for credentials."
	case r.SuccessfulInserts == 0:
		r.Message = "No records were imported. Review the errors and correct the file."
	default:
		r.Message = fmt.Sprintf(
			"Partial success: %d imported, %d failed. Review the failed rows per sheet and consider manual entry for failures.",
			r.SuccessfulInserts, r.FailedInserts,
		)
	}
	return r
}
