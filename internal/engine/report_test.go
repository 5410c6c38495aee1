package engine

import (
	"strings"
	"testing"

	"github.com/kofiadu/staffsync/internal/entity"
)

func TestReportAllSucceeded(t *testing.T) {
	agg := newAggregator()
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 0, Kind: entity.Employee, Status: StatusSuccess})
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 1, Kind: entity.Employee, Status: StatusSuccess})
	agg.add(RowOutcome{Sheet: "Next of Kin", RowIndex: 0, Kind: entity.NextOfKin, Status: StatusSuccess})

	r := agg.report()
	if r.TotalPrimaryRows != 2 {
		t.Errorf("TotalPrimaryRows = %d, want 2", r.TotalPrimaryRows)
	}
	if r.SuccessfulInserts != 3 || r.FailedInserts != 0 {
		t.Errorf("counts = %d/%d", r.SuccessfulInserts, r.FailedInserts)
	}
	if !strings.HasPrefix(r.Message, "All records imported.") {
		t.Errorf("message = %q", r.Message)
	}
	if len(r.FailedRowsBySheet) != 0 {
		t.Errorf("FailedRowsBySheet = %v", r.FailedRowsBySheet)
	}
}

func TestReportPartial(t *testing.T) {
	agg := newAggregator()
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 0, Kind: entity.Employee, Status: StatusSuccess})
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 1, Kind: entity.Employee, Status: StatusFailure, Error: "x"})
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 3, Kind: entity.Employee, Status: StatusFailure, Error: "y"})

	r := agg.report()
	if r.SuccessfulInserts != 1 || r.FailedInserts != 2 {
		t.Errorf("counts = %d/%d", r.SuccessfulInserts, r.FailedInserts)
	}
	rows := r.FailedRowsBySheet["Employees"]
	if len(rows) != 2 || rows[0] != 1 || rows[1] != 3 {
		t.Errorf("failed rows = %v, want [1 3]", rows)
	}
	if !strings.Contains(r.Message, "1 imported, 2 failed") {
		t.Errorf("message = %q", r.Message)
	}
}

func TestReportTotalFailure(t *testing.T) {
	agg := newAggregator()
	agg.add(RowOutcome{Sheet: "Employees", RowIndex: 0, Kind: entity.Employee, Status: StatusFailure, Error: "x"})

	r := agg.report()
	if r.SuccessfulInserts != 0 || r.FailedInserts != 1 {
		t.Errorf("counts = %d/%d", r.SuccessfulInserts, r.FailedInserts)
	}
	if !strings.HasPrefix(r.Message, "No records were imported.") {
		t.Errorf("message = %q", r.Message)
	}
}

func TestAggregatorFailures(t *testing.T) {
	agg := newAggregator()
	agg.add(RowOutcome{Sheet: "A", RowIndex: 0, Status: StatusSuccess})
	agg.add(RowOutcome{Sheet: "A", RowIndex: 1, Status: StatusFailure, Error: "boom"})

	failed := agg.failures()
	if len(failed) != 1 || failed[0].RowIndex != 1 || failed[0].Error != "boom" {
		t.Errorf("failures = %+v", failed)
	}
}

func TestRowErrorFormatting(t *testing.T) {
	withField := rowErrorf(ErrMalformedValue, "date_of_birth", "cannot parse %q as a date", "garbage")
	if got := withField.Error(); got != `malformed_value (date_of_birth): cannot parse "garbage" as a date` {
		t.Errorf("Error() = %q", got)
	}

	withoutField := rowErrorf(ErrPersistence, "", "connection reset")
	if got := withoutField.Error(); got != "persistence: connection reset" {
		t.Errorf("Error() = %q", got)
	}
}
