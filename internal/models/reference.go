package models

// DegreeLevel scopes which year slots are valid for a submission.
type DegreeLevel string

const (
	DegreeLevelUG DegreeLevel = "UG"
	DegreeLevelPG DegreeLevel = "PG"
)

// Valid reports whether the level is one of the known degree levels.
func (d DegreeLevel) Valid() bool {
	return d == DegreeLevelUG || d == DegreeLevelPG
}

// YearSlot is the academic-year-within-degree unit data is entered for.
type YearSlot string

const (
	YearSlotFirst  YearSlot = "I Year"
	YearSlotSecond YearSlot = "II Year"
	YearSlotThird  YearSlot = "III Year"
)

// YearSlotsFor returns the valid year slots for a degree level:
// three for UG, two for PG.
func YearSlotsFor(level DegreeLevel) []YearSlot {
	switch level {
	case DegreeLevelUG:
		return []YearSlot{YearSlotFirst, YearSlotSecond, YearSlotThird}
	case DegreeLevelPG:
		return []YearSlot{YearSlotFirst, YearSlotSecond}
	default:
		return nil
	}
}

// ValidYearSlot reports whether the slot may carry data under the level.
func ValidYearSlot(level DegreeLevel, slot YearSlot) bool {
	for _, s := range YearSlotsFor(level) {
		if s == slot {
			return true
		}
	}
	return false
}

// RecordType distinguishes the two independent data collections.
type RecordType string

const (
	RecordTypeEnrollment  RecordType = "ENROLLMENT"
	RecordTypeExamination RecordType = "EXAMINATION"
)

// Valid reports whether the record type is known.
func (r RecordType) Valid() bool {
	return r == RecordTypeEnrollment || r == RecordTypeExamination
}

// ResultType sub-classifies examination counts. Each result type is
// entered as a separate data-entry pass.
type ResultType string

const (
	ResultTypeAppeared ResultType = "APPEARED"
	ResultTypePassed   ResultType = "PASSED"
	ResultTypeAbove60  ResultType = "ABOVE60"
)

// ResultTypes lists every examination pass in entry order.
func ResultTypes() []ResultType {
	return []ResultType{ResultTypeAppeared, ResultTypePassed, ResultTypeAbove60}
}

// Valid reports whether the result type is known.
func (r ResultType) Valid() bool {
	return r == ResultTypeAppeared || r == ResultTypePassed || r == ResultTypeAbove60
}

// Gender codes used to pivot aggregate sums into fixed columns.
const (
	GenderCodeMale        = "MALE"
	GenderCodeFemale      = "FEMALE"
	GenderCodeTransgender = "TRANSGENDER"
)

// Department is a reference-data row; the survey core treats it as
// read-only input.
type Department struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	HODName      string `db:"hod_name" json:"hod_name"`
	OffersUG     bool   `db:"offers_ug" json:"offers_ug"`
	OffersPG     bool   `db:"offers_pg" json:"offers_pg"`
	Active       bool   `db:"active" json:"active"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

// Offers reports whether the department runs the given degree level.
func (d Department) Offers(level DegreeLevel) bool {
	switch level {
	case DegreeLevelUG:
		return d.OffersUG
	case DegreeLevelPG:
		return d.OffersPG
	default:
		return false
	}
}

// Category is one of the four demographic classification axes.
type Category struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

// Subcategory is one of the three secondary classification axes.
type Subcategory struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

// Gender is one of the three gender master rows.
type Gender struct {
	ID           string `db:"id" json:"id"`
	Code         string `db:"code" json:"code"`
	Name         string `db:"name" json:"name"`
	DisplayOrder int    `db:"display_order" json:"display_order"`
}

// ReferenceSet bundles the master tables a completeness check needs.
type ReferenceSet struct {
	Categories    []Category
	Subcategories []Subcategory
	Genders       []Gender
}

// RequiredCellCount is the number of cells a year slot needs before it
// counts as completed (categories x subcategories x genders).
func (r ReferenceSet) RequiredCellCount() int {
	return len(r.Categories) * len(r.Subcategories) * len(r.Genders)
}
