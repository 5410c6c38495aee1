package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kofiadu/staffsync/internal/entity"
)

// referenceTables maps referenced kinds to their table names.
var referenceTables = map[entity.ReferenceKind]string{
	entity.RefDepartment:   "departments",
	entity.RefBranch:       "branches",
	entity.RefRank:         "ranks",
	entity.RefEmployeeType: "employee_types",
	entity.RefRole:         "roles",
}

// dependentTables maps dependent entity kinds to their table names.
var dependentTables = map[entity.Kind]string{
	entity.AcademicQualification: "academic_qualifications",
	entity.EmploymentHistory:     "employment_histories",
	entity.EmergencyContact:      "emergency_contacts",
	entity.NextOfKin:             "next_of_kins",
	entity.SalaryPayment:         "salary_payments",
	entity.EmployeePaymentDetail: "employee_payment_details",
}

// Store implements the engine's persistence contract over PostgreSQL.
type Store struct{}

// NewStore creates a Store.
func NewStore() *Store {
	return &Store{}
}

// GetTenant loads one organization's configuration.
func (s *Store) GetTenant(ctx context.Context, db DBTX, id uuid.UUID) (Tenant, error) {
	var t Tenant
	err := db.QueryRow(ctx,
		`SELECT id, name, single_site FROM tenants WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.SingleSite)
	if err == pgx.ErrNoRows {
		return Tenant{}, ErrTenantNotFound
	}
	if err != nil {
		return Tenant{}, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

// FindReferenceByName resolves a referenced entity by case-insensitive name
// within a tenant.
func (s *Store) FindReferenceByName(ctx context.Context, db DBTX, kind entity.ReferenceKind, tenantID uuid.UUID, name string) (uuid.UUID, bool, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return uuid.Nil, false, fmt.Errorf("unknown reference kind: %s", kind)
	}

	var id uuid.UUID
	err := db.QueryRow(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE tenant_id = $1 AND lower(name) = lower($2)`, table),
		tenantID, name,
	).Scan(&id)
	if err == pgx.ErrNoRows {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("find %s: %w", kind, err)
	}
	return id, true, nil
}

// CreateReference inserts a referenced entity with its kind defaults and
// returns the generated id.
func (s *Store) CreateReference(ctx context.Context, db DBTX, kind entity.ReferenceKind, tenantID uuid.UUID, name string, defaults map[string]any) (uuid.UUID, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown reference kind: %s", kind)
	}

	id := uuid.New()
	if defaults == nil {
		defaults = map[string]any{}
	}
	_, err := db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, tenant_id, name, attributes) VALUES ($1, $2, $3, $4)`, table),
		id, tenantID, name, defaults,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create %s: %w", kind, err)
	}
	return id, nil
}

// CreateEmployee inserts an employee row and returns the generated id.
func (s *Store) CreateEmployee(ctx context.Context, db DBTX, rec EmployeeRecord) (uuid.UUID, error) {
	id := uuid.New()
	extras := rec.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	_, err := db.Exec(ctx,
		`INSERT INTO employees (
			id, tenant_id, first_name, last_name, middle_name, email, phone,
			gender, address, marital_status, national_id, date_of_birth,
			hire_date, department_id, branch_id, rank_id, employee_type_id,
			role_id, extras
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19
		)`,
		id, rec.TenantID, rec.FirstName, rec.LastName, rec.MiddleName,
		rec.Email, rec.Phone, rec.Gender, rec.Address, rec.MaritalStatus,
		rec.NationalID, rec.DateOfBirth, rec.HireDate, rec.DepartmentID,
		rec.BranchID, rec.RankID, rec.EmployeeTypeID, rec.RoleID, extras,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create employee: %w", err)
	}
	return id, nil
}

// CreateDependent inserts a dependent record attached to an employee and
// returns the generated id.
func (s *Store) CreateDependent(ctx context.Context, db DBTX, rec DependentRecord) (uuid.UUID, error) {
	table, ok := dependentTables[rec.Kind]
	if !ok {
		return uuid.Nil, fmt.Errorf("unknown dependent kind: %s", rec.Kind)
	}

	id := uuid.New()
	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	extras := rec.Extras
	if extras == nil {
		extras = map[string]any{}
	}
	_, err := db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (id, tenant_id, employee_id, fields, extras) VALUES ($1, $2, $3, $4, $5)`, table),
		id, rec.TenantID, rec.EmployeeID, fields, extras,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create %s: %w", rec.Kind, err)
	}
	return id, nil
}
