// Package concept defines the canonical field vocabulary for spreadsheet
// imports and the matching logic that maps arbitrary human-authored column
// headers onto it.
//
// A "concept" is a canonical semantic field (e.g. first_name) that many raw
// headers may denote ("Given Name (First Name)", "fname", "FIRST NAME").
// The catalog is immutable and initialized at process start; per-import
// state lives in the engine, never here.
package concept

// Kind describes how values under a concept are coerced and stored.
type Kind int

const (
	KindText Kind = iota
	KindDate
	KindInteger
	KindReference
)

// ID identifies a canonical concept.
type ID string

// Employee concepts.
const (
	FirstName     ID = "first_name"
	LastName      ID = "last_name"
	MiddleName    ID = "middle_name"
	Email         ID = "email"
	Phone         ID = "phone"
	Gender        ID = "gender"
	DateOfBirth   ID = "date_of_birth"
	HireDate      ID = "hire_date"
	Address       ID = "address"
	MaritalStatus ID = "marital_status"
	NationalID    ID = "national_id"
	Department    ID = "department"
	Branch        ID = "branch"
	Rank          ID = "rank"
	EmployeeType  ID = "employee_type"
	Role          ID = "role"
)

// Dependent-record concepts.
const (
	Institution   ID = "institution"
	Qualification ID = "qualification"
	FieldOfStudy  ID = "field_of_study"
	StartDate     ID = "start_date"
	EndDate       ID = "end_date"
	Employer      ID = "employer"
	Position      ID = "position"
	ContactName   ID = "contact_name"
	Relationship  ID = "relationship"
	ContactPhone  ID = "contact_phone"
	SalaryAmount  ID = "salary_amount"
	Currency      ID = "currency"
	PayPeriod     ID = "pay_period"
	PaymentDate   ID = "payment_date"
	BankName      ID = "bank_name"
	AccountNumber ID = "account_number"
	AccountName   ID = "account_name"
)

// Definition binds a concept to its value kind and known header synonyms.
// Synonyms are compared case-insensitively after normalization.
type Definition struct {
	ID       ID
	Kind     Kind
	Synonyms []string
}

// catalog is the full concept registry. Declaration order matters: literal
// fallback matching and entity spec construction both iterate in this order.
var catalog = []Definition{
	{FirstName, KindText, []string{"first name", "firstname", "given name", "given name first name", "fname", "forename"}},
	{LastName, KindText, []string{"last name", "lastname", "surname", "family name", "lname"}},
	{MiddleName, KindText, []string{"middle name", "middlename", "other name", "other names"}},
	{Email, KindText, []string{"email", "email address", "e mail", "work email", "official email", "mail"}},
	{Phone, KindText, []string{"phone", "phone number", "telephone", "mobile", "mobile number", "contact number", "tel"}},
	{Gender, KindText, []string{"gender", "sex"}},
	{DateOfBirth, KindDate, []string{"date of birth", "dob", "birth date", "birthdate", "born"}},
	{HireDate, KindDate, []string{"hire date", "date hired", "date of employment", "employment date", "start date of employment", "date joined", "joined"}},
	{Address, KindText, []string{"address", "residential address", "home address", "location"}},
	{MaritalStatus, KindText, []string{"marital status", "married"}},
	{NationalID, KindText, []string{"national id", "national id number", "id number", "ssnit", "ghana card"}},
	{Department, KindReference, []string{"department", "dept", "unit", "division"}},
	{Branch, KindReference, []string{"branch", "site", "office", "station", "campus"}},
	{Rank, KindReference, []string{"rank", "grade", "level", "job grade"}},
	{EmployeeType, KindReference, []string{"employee type", "employment type", "staff type", "contract type", "staff category"}},
	{Role, KindReference, []string{"role", "job role", "job title", "title", "designation"}},

	{Institution, KindText, []string{"institution", "school", "university", "college", "institution name"}},
	{Qualification, KindText, []string{"qualification", "degree", "certificate", "award", "qualification obtained"}},
	{FieldOfStudy, KindText, []string{"field of study", "course", "programme", "program", "major"}},
	{StartDate, KindDate, []string{"start date", "from", "date from", "period from"}},
	{EndDate, KindDate, []string{"end date", "to", "date to", "period to", "completion date"}},
	{Employer, KindText, []string{"employer", "company", "organisation", "organization", "previous employer"}},
	{Position, KindText, []string{"position", "position held", "post"}},
	{ContactName, KindText, []string{"contact name", "name", "full name", "next of kin", "next of kin name", "kin name", "emergency contact", "emergency contact name"}},
	{Relationship, KindText, []string{"relationship", "relation"}},
	{ContactPhone, KindText, []string{"contact phone", "emergency contact number", "emergency phone", "kin phone", "next of kin phone"}},
	{SalaryAmount, KindInteger, []string{"salary", "salary amount", "amount", "gross salary", "basic salary", "net salary", "pay"}},
	{Currency, KindText, []string{"currency", "currency code"}},
	{PayPeriod, KindText, []string{"pay period", "period", "payment period", "month"}},
	{PaymentDate, KindDate, []string{"payment date", "date paid", "pay date"}},
	{BankName, KindText, []string{"bank name", "bank", "payment bank"}},
	{AccountNumber, KindText, []string{"account number", "account no", "bank account", "bank account number", "momo number", "mobile money number"}},
	{AccountName, KindText, []string{"account name", "name on account"}},
}

// dateSynonyms resolves common date headers before any fuzzy scoring runs.
// Abbreviations like "dob" fuzzy-collide with unrelated short concepts, so
// these are matched exactly and first.
var dateSynonyms = map[string]ID{
	"dob":                      DateOfBirth,
	"date of birth":            DateOfBirth,
	"birth date":               DateOfBirth,
	"birthdate":                DateOfBirth,
	"hire date":                HireDate,
	"date hired":               HireDate,
	"date of employment":       HireDate,
	"employment date":          HireDate,
	"date joined":              HireDate,
	"start date":               StartDate,
	"end date":                 EndDate,
	"completion date":          EndDate,
	"payment date":             PaymentDate,
	"pay date":                 PaymentDate,
}

// Catalog returns every concept definition in declaration order.
// The returned slice is shared; callers must not mutate it.
func Catalog() []Definition {
	return catalog
}

// Lookup returns the definition for a concept id.
func Lookup(id ID) (Definition, bool) {
	for _, def := range catalog {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// KindOf returns the value kind for a concept, defaulting to text for
// unknown ids.
func KindOf(id ID) Kind {
	if def, ok := Lookup(id); ok {
		return def.Kind
	}
	return KindText
}
