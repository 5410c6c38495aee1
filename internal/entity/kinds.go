package entity

import (
	"github.com/kofiadu/staffsync/internal/concept"
)

// The employee spec is registered first so classification ties resolve
// toward the primary kind.
func init() {
	Register(Spec{
		Kind: Employee,
		ExpectedConcepts: []concept.ID{
			concept.FirstName, concept.LastName, concept.MiddleName,
			concept.Email, concept.Phone, concept.Gender,
			concept.DateOfBirth, concept.HireDate, concept.Address,
			concept.MaritalStatus, concept.NationalID,
			concept.Department, concept.Branch, concept.Rank,
			concept.EmployeeType, concept.Role,
		},
		ReferenceFields: map[concept.ID]ReferenceKind{
			concept.Department:   RefDepartment,
			concept.Branch:       RefBranch,
			concept.Rank:         RefRank,
			concept.EmployeeType: RefEmployeeType,
			concept.Role:         RefRole,
		},
		RequiredConcepts: []concept.ID{concept.FirstName, concept.LastName, concept.Email},
		StrictDates:      []concept.ID{concept.DateOfBirth, concept.HireDate},
		SheetAliases:     []string{"employees", "employee", "staff", "staff list", "personnel"},
	})

	Register(Spec{
		Kind: AcademicQualification,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.Institution, concept.Qualification,
			concept.FieldOfStudy, concept.StartDate, concept.EndDate,
		},
		RequiredConcepts: []concept.ID{concept.Institution},
		SheetAliases:     []string{"academic qualifications", "qualifications", "education"},
	})

	Register(Spec{
		Kind: EmploymentHistory,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.Employer, concept.Position,
			concept.StartDate, concept.EndDate,
		},
		RequiredConcepts: []concept.ID{concept.Employer},
		SheetAliases:     []string{"employment history", "work history", "previous employment"},
	})

	Register(Spec{
		Kind: EmergencyContact,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.ContactName, concept.Relationship,
			concept.ContactPhone, concept.Address,
		},
		RequiredConcepts: []concept.ID{concept.ContactName},
		SheetAliases:     []string{"emergency contacts", "emergency contact"},
	})

	Register(Spec{
		Kind: NextOfKin,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.ContactName, concept.Relationship,
			concept.ContactPhone, concept.Address,
		},
		RequiredConcepts: []concept.ID{concept.ContactName},
		SheetAliases:     []string{"next of kin", "kin"},
	})

	Register(Spec{
		Kind: SalaryPayment,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.SalaryAmount, concept.Currency,
			concept.PayPeriod, concept.PaymentDate,
		},
		RequiredConcepts: []concept.ID{concept.SalaryAmount},
		StrictDates:      []concept.ID{concept.PaymentDate},
		SheetAliases:     []string{"salary payments", "salaries", "payroll"},
	})

	Register(Spec{
		Kind: EmployeePaymentDetail,
		ExpectedConcepts: []concept.ID{
			concept.Email, concept.BankName, concept.AccountNumber,
			concept.AccountName,
		},
		RequiredConcepts: []concept.ID{concept.AccountNumber},
		SheetAliases:     []string{"payment details", "bank details", "bank accounts"},
	})

	RegisterReference(ReferenceSpec{
		Kind:        RefDepartment,
		LookupField: "name",
		Defaults:    map[string]any{"description": "Created during bulk import"},
	})
	RegisterReference(ReferenceSpec{
		Kind:        RefBranch,
		LookupField: "name",
		Defaults:    map[string]any{"location": ""},
	})
	RegisterReference(ReferenceSpec{
		Kind:        RefRank,
		LookupField: "name",
		Defaults:    map[string]any{"level": 0},
	})
	RegisterReference(ReferenceSpec{
		Kind:        RefEmployeeType,
		LookupField: "name",
		Defaults:    map[string]any{"is_permanent": false},
	})
	RegisterReference(ReferenceSpec{
		Kind:        RefRole,
		LookupField: "name",
		Defaults:    map[string]any{"permissions": []any{}},
	})
}
