package engine

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kofiadu/staffsync/internal/coerce"
	"github.com/kofiadu/staffsync/internal/concept"
	"github.com/kofiadu/staffsync/internal/entity"
	"github.com/kofiadu/staffsync/internal/repository"
	"github.com/kofiadu/staffsync/internal/workbook"
)

// Per-row processing walks a fixed progression:
//
//	Pending -> Normalized -> Resolved -> Persisted
//
// with Failed reachable from every intermediate step. Each step is a
// function below; any *RowError returned puts the row in Failed, is
// captured into its outcome at the sheet loop, and never propagates past
// the row boundary.

type rowResult struct {
	employeeID uuid.UUID
	email      string // set for primary rows
}

// rowPayload is the normalized view of one row: concept-keyed values plus
// the extras bucket for columns no concept matched. Unrecognized columns
// are never silently dropped; operator intent lands in extras.
type rowPayload struct {
	values map[concept.ID]string
	extras map[string]any
}

func (s *Service) processRow(ctx context.Context, db repository.DBTX, r *run, pending *sheetState, cs classifiedSheet, idx int, row []string) (rowResult, *RowError) {
	payload := normalizeRow(cs.spec, cs.columns, row)

	if cs.primary {
		return s.persistEmployee(ctx, db, r, pending, cs, payload)
	}
	return s.persistDependent(ctx, db, r, cs, idx, payload)
}

// normalizeRow applies the matched columns to one row's cells.
// The first column matching a concept the spec expects wins; duplicates,
// concepts outside the spec (a salary column on the employee roster), and
// unmatched columns all land in extras.
func normalizeRow(spec entity.Spec, columns []concept.NormalizedColumn, row []string) rowPayload {
	payload := rowPayload{
		values: make(map[concept.ID]string),
		extras: make(map[string]any),
	}
	for i, col := range columns {
		if i >= len(row) {
			break
		}
		value := workbook.CleanCell(row[i])
		if value == "" {
			continue
		}
		if col.Matched && spec.Expects(col.Concept) {
			if _, dup := payload.values[col.Concept]; !dup {
				payload.values[col.Concept] = value
				continue
			}
		}
		key := col.Normalized
		if key == "" {
			key = col.RawHeader
		}
		if v := coerce.Sanitize(value); v != nil {
			payload.extras[key] = v
		}
	}
	return payload
}

// persistEmployee builds, resolves and persists a primary-sheet row.
func (s *Service) persistEmployee(ctx context.Context, db repository.DBTX, r *run, pending *sheetState, cs classifiedSheet, payload rowPayload) (rowResult, *RowError) {
	for _, required := range cs.spec.RequiredConcepts {
		if payload.values[required] == "" {
			return rowResult{}, rowErrorf(ErrMalformedValue, string(required), "missing required field")
		}
	}

	rec := repository.EmployeeRecord{
		TenantID:      r.tenant.ID,
		FirstName:     payload.values[concept.FirstName],
		LastName:      payload.values[concept.LastName],
		MiddleName:    payload.values[concept.MiddleName],
		Email:         strings.ToLower(payload.values[concept.Email]),
		Phone:         payload.values[concept.Phone],
		Gender:        payload.values[concept.Gender],
		Address:       payload.values[concept.Address],
		MaritalStatus: payload.values[concept.MaritalStatus],
		NationalID:    payload.values[concept.NationalID],
		Extras:        payload.extras,
	}

	var rerr *RowError
	if rec.DateOfBirth, rerr = strictDate(cs.spec, payload, concept.DateOfBirth); rerr != nil {
		return rowResult{}, rerr
	}
	if rec.HireDate, rerr = strictDate(cs.spec, payload, concept.HireDate); rerr != nil {
		return rowResult{}, rerr
	}

	// Resolved: every reference field goes through lookup-or-create.
	refs := make(map[entity.ReferenceKind]*uuid.UUID)
	for _, cid := range cs.spec.ExpectedConcepts {
		refKind, isRef := cs.spec.ReferenceFields[cid]
		if !isRef {
			continue
		}
		name := payload.values[cid]
		if name == "" {
			continue
		}
		if refKind == entity.RefBranch && r.tenant.SingleSite {
			return rowResult{}, rowErrorf(ErrReferenceResolution, string(cid),
				"branch %q not permitted: tenant is configured single-site", name)
		}
		id, err := s.resolveOrCreate(ctx, db, r, pending, refKind, name)
		if err != nil {
			return rowResult{}, rowErrorf(ErrReferenceResolution, string(cid), "%v", err)
		}
		refID := id
		refs[refKind] = &refID
	}
	rec.DepartmentID = refs[entity.RefDepartment]
	rec.BranchID = refs[entity.RefBranch]
	rec.RankID = refs[entity.RefRank]
	rec.EmployeeTypeID = refs[entity.RefEmployeeType]
	rec.RoleID = refs[entity.RefRole]

	id, err := s.store.CreateEmployee(ctx, db, rec)
	if err != nil {
		return rowResult{}, rowErrorf(ErrPersistence, "", "%v", err)
	}
	return rowResult{employeeID: id, email: rec.Email}, nil
}

// persistDependent links a dependent-sheet row to its parent employee and
// persists it.
func (s *Service) persistDependent(ctx context.Context, db repository.DBTX, r *run, cs classifiedSheet, idx int, payload rowPayload) (rowResult, *RowError) {
	for _, required := range cs.spec.RequiredConcepts {
		if required == concept.Email {
			continue
		}
		if payload.values[required] == "" {
			return rowResult{}, rowErrorf(ErrMalformedValue, string(required), "missing required field")
		}
	}

	parentID, rerr := s.linkParent(cs, idx, payload, r.keys)
	if rerr != nil {
		return rowResult{}, rerr
	}

	fields := make(map[string]any, len(payload.values))
	for cid, value := range payload.values {
		if cid == concept.Email {
			continue
		}
		coerced, cerr := coerceValue(cs.spec, cid, value)
		if cerr != nil {
			return rowResult{}, cerr
		}
		fields[string(cid)] = coerced
	}

	_, err := s.store.CreateDependent(ctx, db, repository.DependentRecord{
		TenantID:   r.tenant.ID,
		EmployeeID: parentID,
		Kind:       cs.spec.Kind,
		Fields:     fields,
		Extras:     payload.extras,
	})
	if err != nil {
		return rowResult{}, rowErrorf(ErrPersistence, "", "%v", err)
	}
	return rowResult{employeeID: parentID}, nil
}

// linkParent resolves a dependent row's parent employee: by lower-cased
// email when the sheet carries an email column, positionally when it
// carries none and is aligned row-for-row with the primary sheet.
func (s *Service) linkParent(cs classifiedSheet, idx int, payload rowPayload, keys *keyMap) (uuid.UUID, *RowError) {
	hasEmailColumn := false
	for _, col := range cs.columns {
		if col.Matched && col.Concept == concept.Email {
			hasEmailColumn = true
			break
		}
	}

	if hasEmailColumn {
		email := payload.values[concept.Email]
		if email == "" {
			return uuid.Nil, rowErrorf(ErrParentLinkUnresolved, string(concept.Email),
				"could not determine parent entity: email cell is empty")
		}
		if id, ok := keys.byKey(email); ok {
			return id, nil
		}
		return uuid.Nil, rowErrorf(ErrParentLinkUnresolved, string(concept.Email),
			"could not determine parent entity: no imported employee with email %q", email)
	}

	if id, ok := keys.byPosition(idx); ok {
		return id, nil
	}
	return uuid.Nil, rowErrorf(ErrParentLinkUnresolved, "",
		"could not determine parent entity: row %d is beyond the %d employees imported", idx, keys.size())
}

// resolveOrCreate returns the id of the referenced entity with the given
// name inside the tenant, creating it with its kind defaults on first
// encounter. Repeated calls with the same (kind, name) within one run
// return the same id: the memo is checked before the store, and creations
// are staged so a rolled-back row cannot poison later rows.
func (s *Service) resolveOrCreate(ctx context.Context, db repository.DBTX, r *run, pending *sheetState, kind entity.ReferenceKind, name string) (uuid.UUID, error) {
	key := refKey{kind: kind, name: strings.ToLower(strings.TrimSpace(name))}
	if id, ok := r.refs[key]; ok {
		return id, nil
	}
	if id, ok := pending.refs[key]; ok {
		return id, nil
	}
	if id, ok := pending.rowRefs[key]; ok {
		return id, nil
	}

	id, found, err := s.store.FindReferenceByName(ctx, db, kind, r.tenant.ID, strings.TrimSpace(name))
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		spec, _ := entity.GetReference(kind)
		id, err = s.store.CreateReference(ctx, db, kind, r.tenant.ID, strings.TrimSpace(name), spec.Defaults)
		if err != nil {
			return uuid.Nil, err
		}
		pending.rowCreated = append(pending.rowCreated, stagedRef{kind: kind, name: strings.TrimSpace(name)})
	}
	pending.rowRefs[key] = id
	return id, nil
}

// strictDate coerces a date concept's value, failing the row when the spec
// requires strict parsing and the value will not coerce.
func strictDate(spec entity.Spec, payload rowPayload, cid concept.ID) (*time.Time, *RowError) {
	value, ok := payload.values[cid]
	if !ok || value == "" {
		return nil, nil
	}
	t, parsed := coerce.Date(value)
	if !parsed {
		if spec.StrictDate(cid) {
			return nil, rowErrorf(ErrMalformedValue, string(cid), "cannot parse %q as a date", value)
		}
		return nil, nil
	}
	return &t, nil
}

// coerceValue converts a dependent-field value per its concept kind. Dates
// and integers that fail coercion keep their original value unless the
// spec demands strictness.
func coerceValue(spec entity.Spec, cid concept.ID, value string) (any, *RowError) {
	switch concept.KindOf(cid) {
	case concept.KindDate:
		if t, ok := coerce.Date(value); ok {
			return t.Format("2006-01-02"), nil
		}
		if spec.StrictDate(cid) {
			return nil, rowErrorf(ErrMalformedValue, string(cid), "cannot parse %q as a date", value)
		}
		return value, nil
	case concept.KindInteger:
		if i, ok := coerce.Integer(value); ok {
			return i, nil
		}
		return value, nil
	default:
		return value, nil
	}
}
