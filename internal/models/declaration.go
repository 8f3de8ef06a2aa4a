package models

import (
	"time"

	"github.com/lib/pq"
)

// Declaration is the one-time filing that locks a department's data for
// an academic year, degree level and record type. Once locked, count
// record edits for that scope are rejected; only an admin override can
// reopen it.
type Declaration struct {
	ID               string         `db:"id" json:"id"`
	DepartmentID     string         `db:"department_id" json:"department_id"`
	AcademicYear     string         `db:"academic_year" json:"academic_year"`
	DegreeLevel      DegreeLevel    `db:"degree_level" json:"degree_level"`
	RecordType       RecordType     `db:"record_type" json:"record_type"`
	SubmittedBy      string         `db:"submitted_by" json:"submitted_by"`
	HODName          string         `db:"hod_name" json:"hod_name"`
	YearSlotsCovered pq.StringArray `db:"year_slots_covered" json:"year_slots_covered"`
	Locked           bool           `db:"locked" json:"locked"`
	SubmittedAt      time.Time      `db:"submitted_at" json:"submitted_at"`
}

// DeclarationFilter narrows declaration lookups. Empty fields mean no
// constraint.
type DeclarationFilter struct {
	DepartmentID string
	AcademicYear string
	DegreeLevel  DegreeLevel
	RecordType   RecordType
	LockedOnly   bool
}
