// Package entity declares the persistable entity kinds the import engine
// reconciles, the concepts each kind expects, and the referenced kinds that
// are resolved or created on demand.
package entity

import (
	"github.com/kofiadu/staffsync/internal/concept"
)

// Kind identifies a persistable entity kind.
type Kind string

const (
	Employee              Kind = "employee"
	AcademicQualification Kind = "academic_qualification"
	EmploymentHistory     Kind = "employment_history"
	EmergencyContact      Kind = "emergency_contact"
	NextOfKin             Kind = "next_of_kin"
	SalaryPayment         Kind = "salary_payment"
	EmployeePaymentDetail Kind = "employee_payment_detail"
)

// ReferenceKind identifies an entity kind that employee rows reference by
// name and that the resolver creates when absent.
type ReferenceKind string

const (
	RefDepartment   ReferenceKind = "department"
	RefBranch       ReferenceKind = "branch"
	RefRank         ReferenceKind = "rank"
	RefEmployeeType ReferenceKind = "employee_type"
	RefRole         ReferenceKind = "role"
)

// ReferenceSpec describes how a referenced kind is looked up and what a row
// created on demand looks like.
type ReferenceSpec struct {
	Kind        ReferenceKind
	LookupField string
	Defaults    map[string]any
}

// Spec drives both sheet classification and row construction for one
// persistable entity kind.
type Spec struct {
	Kind             Kind
	ExpectedConcepts []concept.ID
	// ReferenceFields maps a concept on this kind to the referenced kind it
	// resolves to.
	ReferenceFields map[concept.ID]ReferenceKind
	// RequiredConcepts must produce a usable value or the row fails.
	RequiredConcepts []concept.ID
	// StrictDates lists date concepts whose values must coerce; a date
	// concept not listed keeps whatever the cell held.
	StrictDates []concept.ID
	// SheetAliases are sheet names (normalized) that force this kind.
	SheetAliases []string
}

// Expects reports whether the spec lists the concept.
func (s Spec) Expects(id concept.ID) bool {
	for _, c := range s.ExpectedConcepts {
		if c == id {
			return true
		}
	}
	return false
}

// StrictDate reports whether values for the concept must parse as dates.
func (s Spec) StrictDate(id concept.ID) bool {
	for _, c := range s.StrictDates {
		if c == id {
			return true
		}
	}
	return false
}

// Required reports whether the concept must be present and non-empty.
func (s Spec) Required(id concept.ID) bool {
	for _, c := range s.RequiredConcepts {
		if c == id {
			return true
		}
	}
	return false
}
