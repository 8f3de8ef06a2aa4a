package models

import "time"

// CountRecord is the atomic fact: one count per fully-qualified cell.
// At most one row exists per key tuple; submits upsert, never duplicate.
type CountRecord struct {
	ID            string      `db:"id" json:"id"`
	AcademicYear  string      `db:"academic_year" json:"academic_year"`
	DepartmentID  string      `db:"department_id" json:"department_id"`
	DegreeLevel   DegreeLevel `db:"degree_level" json:"degree_level"`
	YearSlot      YearSlot    `db:"year_slot" json:"year_slot"`
	RecordType    RecordType  `db:"record_type" json:"record_type"`
	ResultType    ResultType  `db:"result_type" json:"result_type,omitempty"`
	CategoryID    string      `db:"category_id" json:"category_id"`
	SubcategoryID string      `db:"subcategory_id" json:"subcategory_id"`
	GenderID      string      `db:"gender_id" json:"gender_id"`
	Count         int         `db:"count" json:"count"`
	SubmittedAt   time.Time   `db:"submitted_at" json:"submitted_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// SubmissionKey addresses one data-entry pass: a department's cells for
// an academic year, degree level, year slot and record type. ResultType
// is empty for enrollment.
type SubmissionKey struct {
	DepartmentID string
	AcademicYear string
	DegreeLevel  DegreeLevel
	YearSlot     YearSlot
	RecordType   RecordType
	ResultType   ResultType
}

// Cell is one category/subcategory/gender count within a batch.
type Cell struct {
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id"`
	GenderID      string `json:"gender_id"`
	Count         int    `json:"count"`
}

// CellKey identifies a cell independent of its count. Presence of all
// required keys, not count magnitude, decides completion.
type CellKey struct {
	CategoryID    string `db:"category_id"`
	SubcategoryID string `db:"subcategory_id"`
	GenderID      string `db:"gender_id"`
}

// CountRecordFilter narrows cell reads. Empty fields mean no constraint.
type CountRecordFilter struct {
	AcademicYear string
	DepartmentID string
	DegreeLevel  DegreeLevel
	YearSlot     YearSlot
	RecordType   RecordType
	ResultType   ResultType
}
