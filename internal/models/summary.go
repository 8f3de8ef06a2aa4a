package models

import "encoding/json"

// GenderTotals is the {male, female, transgender} triple every summary
// surface resolves to. Counts are integers; sums never use floats.
type GenderTotals struct {
	Male        int `db:"male_count" json:"male_count"`
	Female      int `db:"female_count" json:"female_count"`
	Transgender int `db:"transgender_count" json:"transgender_count"`
}

// genderTotalsAliases tolerates the short field names some upstream
// summary producers emit. Normalisation happens once here, on ingest,
// instead of at every read site.
type genderTotalsAliases struct {
	Male       *int `json:"male_count"`
	MaleAlt    *int `json:"male"`
	Female     *int `json:"female_count"`
	FemaleAlt  *int `json:"female"`
	Trans      *int `json:"transgender_count"`
	TransAlt   *int `json:"transgender"`
	TransShort *int `json:"trans_count"`
}

// UnmarshalJSON accepts both the canonical *_count names and the short
// aliases used by older summary payloads.
func (g *GenderTotals) UnmarshalJSON(data []byte) error {
	var raw genderTotalsAliases
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.Male = firstInt(raw.Male, raw.MaleAlt)
	g.Female = firstInt(raw.Female, raw.FemaleAlt)
	g.Transgender = firstInt(raw.Trans, raw.TransAlt, raw.TransShort)
	return nil
}

func firstInt(candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return 0
}

// Add accumulates another triple into the receiver.
func (g *GenderTotals) Add(other GenderTotals) {
	g.Male += other.Male
	g.Female += other.Female
	g.Transgender += other.Transgender
}

// Total is the combined headcount across genders.
func (g GenderTotals) Total() int {
	return g.Male + g.Female + g.Transgender
}

// TotalsFilter scopes institution-wide gender totals. Empty fields mean
// no constraint (full match across the store).
type TotalsFilter struct {
	AcademicYear string
	DegreeLevel  DegreeLevel
	DepartmentID string
	RecordType   RecordType
}

// SummaryGroupBy selects optional extra grouping axes for departmental
// summaries.
type SummaryGroupBy struct {
	Category    bool
	Subcategory bool
}

// SummaryRow is one group of the department x year aggregation: sums
// per gender for a year slot, optionally split by category and
// subcategory. Field names are part of the report contract and must
// stay stable.
type SummaryRow struct {
	DepartmentID string      `db:"department_id" json:"department_id"`
	DegreeLevel  DegreeLevel `db:"degree_level" json:"degree_level"`
	YearSlot     YearSlot    `db:"year_slot" json:"year"`
	Category     string      `db:"category" json:"category,omitempty"`
	Subcategory  string      `db:"subcategory" json:"subcategory,omitempty"`
	ResultType   ResultType  `db:"result_type" json:"result_type,omitempty"`
	Male         int         `db:"male_count" json:"male_count"`
	Female       int         `db:"female_count" json:"female_count"`
	Transgender  int         `db:"transgender_count" json:"transgender_count"`
}

// Totals folds the row's gender columns into a triple.
func (r SummaryRow) Totals() GenderTotals {
	return GenderTotals{Male: r.Male, Female: r.Female, Transgender: r.Transgender}
}
