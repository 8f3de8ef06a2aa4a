package models

import "time"

// SubmissionStatus is derived from count record presence, never stored.
type SubmissionStatus string

const (
	StatusCompleted    SubmissionStatus = "Completed"
	StatusIncomplete   SubmissionStatus = "Incomplete"
	StatusNotSubmitted SubmissionStatus = "Not Submitted"
)

// ResultTypeStatus reports one examination pass within a year slot.
type ResultTypeStatus struct {
	ResultType ResultType       `json:"result_type"`
	Status     SubmissionStatus `json:"status"`
	CellsFound int              `json:"cells_found"`
	CellsNeed  int              `json:"cells_required"`
}

// SlotStatus is the completion verdict for one year slot. For
// examination submissions every result type must be individually
// complete before the slot counts as completed.
type SlotStatus struct {
	YearSlot    YearSlot           `json:"year_slot"`
	Status      SubmissionStatus   `json:"status"`
	ResultTypes []ResultTypeStatus `json:"result_types,omitempty"`
}

// Complete is a convenience accessor for guard checks.
func (s SlotStatus) Complete() bool {
	return s.Status == StatusCompleted
}

// SlotCellCount is a grouped presence count fetched inside the filing
// transaction so the completeness re-check cannot act on a stale read.
type SlotCellCount struct {
	YearSlot   YearSlot   `db:"year_slot"`
	ResultType ResultType `db:"result_type"`
	Cells      int        `db:"cells"`
}

// MissingSlots returns the year slots that block a declaration, given
// grouped presence counts and the number of cells a complete slot needs.
// Enrollment requires one complete pass per slot; examination requires
// every result type pass to be complete.
func MissingSlots(level DegreeLevel, recordType RecordType, counts []SlotCellCount, requiredCells int) []YearSlot {
	found := make(map[YearSlot]map[ResultType]int)
	for _, c := range counts {
		if found[c.YearSlot] == nil {
			found[c.YearSlot] = make(map[ResultType]int)
		}
		found[c.YearSlot][c.ResultType] = c.Cells
	}

	var missing []YearSlot
	for _, slot := range YearSlotsFor(level) {
		passes := found[slot]
		complete := true
		if recordType == RecordTypeExamination {
			for _, rt := range ResultTypes() {
				if passes[rt] < requiredCells {
					complete = false
					break
				}
			}
		} else {
			complete = passes[""] >= requiredCells
		}
		if !complete {
			missing = append(missing, slot)
		}
	}
	return missing
}

// AdminSubmissionRow is the merged oversight view: one row per
// department per (academic_year, degree_level), joining enrollment and
// examination status with declaration lock state. It is derived, never
// persisted. Departments without any data appear as synthetic
// "Not Submitted" rows.
type AdminSubmissionRow struct {
	DepartmentID      string           `json:"department_id"`
	DepartmentName    string           `json:"department_name"`
	AcademicYear      string           `json:"academic_year,omitempty"`
	DegreeLevel       DegreeLevel      `json:"degree_level,omitempty"`
	EnrollmentStatus  SubmissionStatus `json:"enrollment_status"`
	ExaminationStatus SubmissionStatus `json:"examination_status"`
	Locked            bool             `json:"locked"`
	DeclarationID     string           `json:"declaration_id,omitempty"`
	SubmittedAt       *time.Time       `json:"submitted_at,omitempty"`
}

// DeclarationGroup is one candidate (academic_year, degree_level) data
// group for a department, used when several groups compete to represent
// the department in a listing.
type DeclarationGroup struct {
	DepartmentID string      `db:"department_id"`
	AcademicYear string      `db:"academic_year"`
	DegreeLevel  DegreeLevel `db:"degree_level"`
	SubmittedAt  time.Time   `db:"submitted_at"`
}
