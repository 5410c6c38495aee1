// Package engine implements the bulk spreadsheet reconciliation engine.
//
// An import run takes one uploaded workbook and one tenant, classifies each
// sheet against the registered entity kinds, processes the primary
// (employee) sheet first, then reconciles dependent sheets against the
// employees it just created. Referenced entities (departments, branches,
// ranks, employee types, roles) are resolved by name within the tenant and
// created on demand, exactly once per distinct name per run.
//
// The engine is single-threaded and synchronous per invocation: rows within
// a sheet are processed strictly in file order, sheets strictly in
// scheduled order. Correctness of the key map and the create-once resolver
// depends on that ordering; spreadsheet sizes are human-curated rosters,
// not firehose data, so there is nothing to win from per-row parallelism.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kofiadu/staffsync/internal/concept"
	"github.com/kofiadu/staffsync/internal/entity"
	"github.com/kofiadu/staffsync/internal/repository"
	"github.com/kofiadu/staffsync/internal/workbook"
)

// DB is the database handle the engine starts row transactions on.
// Satisfied by *pgxpool.Pool.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence contract the engine reconciles against. All
// writes happen on the DBTX the engine supplies, which is the sheet's
// transaction.
type Store interface {
	GetTenant(ctx context.Context, db repository.DBTX, id uuid.UUID) (repository.Tenant, error)
	FindReferenceByName(ctx context.Context, db repository.DBTX, kind entity.ReferenceKind, tenantID uuid.UUID, name string) (uuid.UUID, bool, error)
	CreateReference(ctx context.Context, db repository.DBTX, kind entity.ReferenceKind, tenantID uuid.UUID, name string, defaults map[string]any) (uuid.UUID, error)
	CreateEmployee(ctx context.Context, db repository.DBTX, rec repository.EmployeeRecord) (uuid.UUID, error)
	CreateDependent(ctx context.Context, db repository.DBTX, rec repository.DependentRecord) (uuid.UUID, error)
}

// Notifier receives fire-and-forget events. Implementations must never
// block: a slow or failing notification channel is logged and dropped, it
// cannot fail a row.
type Notifier interface {
	EntityCreated(tenantID uuid.UUID, kind, name string)
	EmployeeImported(tenantID uuid.UUID, email string)
	SummaryChanged(tenantID uuid.UUID)
}

// Auditor persists import outcomes. Implementations are best-effort; the
// engine ignores audit failures.
type Auditor interface {
	RecordImport(ctx context.Context, db repository.DBTX, tenantID uuid.UUID, fileName string, report *ImportReport, failures []RowOutcome) uuid.UUID
}

// Config carries the engine's tunable heuristics. Both defaults are
// empirically chosen and should be revisited against a labeled corpus of
// real spreadsheets.
type Config struct {
	// FuzzyThreshold is the minimum similarity (0-100) for a header to be
	// accepted as a concept match.
	FuzzyThreshold int
	// PrimaryMinOverlap is the minimum employee-concept overlap for a sheet
	// to qualify as the primary sheet on column evidence alone.
	PrimaryMinOverlap int
}

// Service runs import batches.
type Service struct {
	db      DB
	store   Store
	notify  Notifier
	audit   Auditor // may be nil
	matcher *concept.Matcher
	cfg     Config
}

// NewService creates an import engine. auditor may be nil to disable audit
// records.
func NewService(db DB, store Store, notifier Notifier, auditor Auditor, cfg Config) *Service {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = concept.DefaultThreshold
	}
	if cfg.PrimaryMinOverlap <= 0 {
		cfg.PrimaryMinOverlap = DefaultPrimaryMinOverlap
	}
	return &Service{
		db:      db,
		store:   store,
		notify:  notifier,
		audit:   auditor,
		matcher: concept.NewMatcher(cfg.FuzzyThreshold),
		cfg:     cfg,
	}
}

// run is the per-invocation state: the resolved tenant, the cross-sheet key
// map, and the committed reference memo. Created and discarded per import.
type run struct {
	tenant repository.Tenant
	keys   *keyMap
	refs   map[refKey]uuid.UUID
}

type refKey struct {
	kind entity.ReferenceKind
	name string // folded: lower-cased, trimmed
}

// Import reconciles one workbook into the tenant's entity graph and returns
// the structured report. Only catastrophic failures (unreadable file,
// unknown tenant) return an error; row-level failures are folded into the
// report.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, fileName string, data []byte) (*ImportReport, error) {
	start := time.Now()

	tenant, err := s.store.GetTenant(ctx, s.db, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve tenant: %w", err)
	}

	sheets, err := workbook.Read(fileName, data)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	classified := make([]classifiedSheet, len(sheets))
	for i, sheet := range sheets {
		classified[i] = s.classifySheet(sheet)
		slog.Debug("sheet classified",
			"tenant_id", tenantID,
			"sheet", sheet.Name,
			"kind", classified[i].spec.Kind,
			"overlap", classified[i].overlap,
			"primary", classified[i].primary,
		)
	}

	r := &run{
		tenant: tenant,
		keys:   newKeyMap(),
		refs:   make(map[refKey]uuid.UUID),
	}
	agg := newAggregator()

	for _, cs := range schedule(classified) {
		agg.addAll(s.processSheet(ctx, r, cs))
	}

	report := agg.report()
	if report.SuccessfulInserts > 0 {
		s.notify.SummaryChanged(tenantID)
	}
	if report.FailedInserts > 0 && s.audit != nil {
		s.audit.RecordImport(ctx, s.db, tenantID, fileName, report, agg.failures())
	}

	slog.Info("import finished",
		"tenant_id", tenantID,
		"file", fileName,
		"sheets", len(sheets),
		"inserted", report.SuccessfulInserts,
		"failed", report.FailedInserts,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// processSheet reconciles every row of one sheet inside a single
// transaction, with a savepoint per row so one row's failure rolls back
// only that row's writes. Key-map registrations and reference memo entries
// are staged and merged only after the sheet commits, so a failed commit
// cannot leak ids that were never persisted.
func (s *Service) processSheet(ctx context.Context, r *run, cs classifiedSheet) []RowOutcome {
	outcomes := make([]RowOutcome, 0, len(cs.sheet.Rows))

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return failAll(cs, outcomes, fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	pending := newSheetState()

	for i, row := range cs.sheet.Rows {
		sp := fmt.Sprintf("row_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
			// The transaction is wedged; nothing after this point can
			// persist.
			return failAll(cs, outcomes, fmt.Errorf("create savepoint: %w", err))
		}

		result, rerr := s.processRow(ctx, tx, r, pending, cs, i, row)
		if rerr != nil {
			_, _ = tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp)
			pending.discardRow()
			outcomes = append(outcomes, RowOutcome{
				Sheet:    cs.sheet.Name,
				RowIndex: i,
				Kind:     cs.spec.Kind,
				Status:   StatusFailure,
				Error:    rerr.Error(),
				Raw:      row,
			})
			continue
		}
		_, _ = tx.Exec(ctx, "RELEASE SAVEPOINT "+sp)
		pending.keepRow()

		outcomes = append(outcomes, RowOutcome{
			Sheet:    cs.sheet.Name,
			RowIndex: i,
			Kind:     cs.spec.Kind,
			Status:   StatusSuccess,
		})

		if cs.primary {
			pending.stageKey(result.email, result.employeeID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return failAll(cs, outcomes[:0], fmt.Errorf("commit: %w", err))
	}

	// Commit succeeded: publish staged state to the run.
	for k, id := range pending.refs {
		r.refs[k] = id
	}
	for _, sk := range pending.keys {
		r.keys.register(sk.email, sk.id)
	}
	for _, created := range pending.created {
		s.notify.EntityCreated(r.tenant.ID, string(created.kind), created.name)
	}
	if cs.primary {
		for _, sk := range pending.keys {
			s.notify.EmployeeImported(r.tenant.ID, sk.email)
		}
	}
	return outcomes
}

// failAll marks every row of the sheet failed with the same sheet-level
// error. Used when the transaction itself is unusable; other sheets are
// unaffected.
func failAll(cs classifiedSheet, outcomes []RowOutcome, err error) []RowOutcome {
	rerr := rowErrorf(ErrPersistence, "", "%v", err)
	for i, row := range cs.sheet.Rows {
		outcomes = append(outcomes, RowOutcome{
			Sheet:    cs.sheet.Name,
			RowIndex: i,
			Kind:     cs.spec.Kind,
			Status:   StatusFailure,
			Error:    rerr.Error(),
			Raw:      row,
		})
	}
	return outcomes
}

// sheetState stages side effects that must only become visible if the
// sheet's transaction commits.
type sheetState struct {
	refs    map[refKey]uuid.UUID
	keys    []stagedKey
	created []stagedRef

	// rowRefs / rowCreated buffer the current row's additions until the row
	// either keeps (savepoint released) or discards (rolled back).
	rowRefs    map[refKey]uuid.UUID
	rowCreated []stagedRef
}

type stagedKey struct {
	email string
	id    uuid.UUID
}

type stagedRef struct {
	kind entity.ReferenceKind
	name string
}

func newSheetState() *sheetState {
	return &sheetState{
		refs:    make(map[refKey]uuid.UUID),
		rowRefs: make(map[refKey]uuid.UUID),
	}
}

func (st *sheetState) stageKey(email string, id uuid.UUID) {
	st.keys = append(st.keys, stagedKey{email: email, id: id})
}

func (st *sheetState) keepRow() {
	for k, id := range st.rowRefs {
		st.refs[k] = id
	}
	st.created = append(st.created, st.rowCreated...)
	st.discardRow()
}

func (st *sheetState) discardRow() {
	st.rowRefs = make(map[refKey]uuid.UUID)
	st.rowCreated = nil
}
