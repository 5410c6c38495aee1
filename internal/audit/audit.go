// Package audit persists import outcomes for later inspection. The engine
// produces complete outcome data; this package decides how failures are
// kept, not how they are surfaced to end users.
package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kofiadu/staffsync/internal/engine"
	"github.com/kofiadu/staffsync/internal/repository"
)

// Store writes audit records to the import_audits table.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// RecordImport persists the report and its failed-row detail. Audit writes
// are best-effort: a failure is logged, never surfaced to the import
// caller.
func (s *Store) RecordImport(ctx context.Context, db repository.DBTX, tenantID uuid.UUID, fileName string, report *engine.ImportReport, failures []engine.RowOutcome) uuid.UUID {
	id := uuid.New()
	if failures == nil {
		failures = []engine.RowOutcome{}
	}
	_, err := db.Exec(ctx,
		`INSERT INTO import_audits (id, tenant_id, file_name, report, failed_rows)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, tenantID, fileName, report, failures,
	)
	if err != nil {
		slog.Error("failed to persist import audit",
			"tenant_id", tenantID,
			"file", fileName,
			"error", err,
		)
		return uuid.Nil
	}
	return id
}

// GetImport loads one audit record's report payload as raw JSON.
func (s *Store) GetImport(ctx context.Context, db repository.DBTX, id uuid.UUID) (fileName string, report []byte, failures []byte, err error) {
	err = db.QueryRow(ctx,
		`SELECT file_name, report, failed_rows FROM import_audits WHERE id = $1`,
		id,
	).Scan(&fileName, &report, &failures)
	return fileName, report, failures, err
}
