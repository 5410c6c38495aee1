// Package repository persists import entities to PostgreSQL.
//
// The engine talks to this package through a narrow contract: find a
// referenced entity by name within a tenant, create entities, and look up
// tenant configuration. All row writes happen inside a caller-supplied
// transaction boundary so the engine controls rollback scope.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kofiadu/staffsync/internal/entity"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// ErrTenantNotFound indicates the tenant id does not resolve to an
// organization.
var ErrTenantNotFound = errors.New("tenant not found")

// Tenant is one organization's data partition.
type Tenant struct {
	ID         uuid.UUID
	Name       string
	SingleSite bool
}

// EmployeeRecord is a fully resolved employee row ready for persistence.
type EmployeeRecord struct {
	TenantID       uuid.UUID
	FirstName      string
	LastName       string
	MiddleName     string
	Email          string
	Phone          string
	Gender         string
	Address        string
	MaritalStatus  string
	NationalID     string
	DateOfBirth    *time.Time
	HireDate       *time.Time
	DepartmentID   *uuid.UUID
	BranchID       *uuid.UUID
	RankID         *uuid.UUID
	EmployeeTypeID *uuid.UUID
	RoleID         *uuid.UUID
	Extras         map[string]any
}

// DependentRecord is a child row (qualification, history, contact, kin,
// salary, payment detail) attached to an employee.
type DependentRecord struct {
	TenantID   uuid.UUID
	EmployeeID uuid.UUID
	Kind       entity.Kind
	Fields     map[string]any
	Extras     map[string]any
}
