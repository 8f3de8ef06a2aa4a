package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

// AggregationRepository computes rollups over the count record store.
// Every summary surface reads through these queries so the merge and
// tie-break logic is implemented exactly once.
type AggregationRepository struct {
	db *sqlx.DB
}

// NewAggregationRepository constructs the repository.
func NewAggregationRepository(db *sqlx.DB) *AggregationRepository {
	return &AggregationRepository{db: db}
}

const genderSumColumns = `COALESCE(SUM(CASE WHEN g.code = 'MALE' THEN c.count ELSE 0 END), 0) AS male_count,
COALESCE(SUM(CASE WHEN g.code = 'FEMALE' THEN c.count ELSE 0 END), 0) AS female_count,
COALESCE(SUM(CASE WHEN g.code = 'TRANSGENDER' THEN c.count ELSE 0 END), 0) AS transgender_count`

// GenderTotals sums counts across enrollment and examination records
// matching the filter into one {male, female, transgender} triple.
// Empty filter fields mean no constraint.
func (r *AggregationRepository) GenderTotals(ctx context.Context, filter models.TotalsFilter) (*models.GenderTotals, error) {
	query := fmt.Sprintf(`SELECT %s FROM count_records c JOIN genders g ON g.id = c.gender_id`, genderSumColumns)
	clause, args := totalsConditions(filter)
	query += clause

	var totals models.GenderTotals
	if err := r.db.GetContext(ctx, &totals, query, args...); err != nil {
		return nil, fmt.Errorf("sum gender totals: %w", err)
	}
	return &totals, nil
}

// DepartmentSummary groups one department's records by year slot, and
// optionally by category and subcategory, with per-gender sums. Rows
// come back in display order so tables render deterministically.
func (r *AggregationRepository) DepartmentSummary(ctx context.Context, filter models.TotalsFilter, groupBy models.SummaryGroupBy) ([]models.SummaryRow, error) {
	selectCols := []string{"c.department_id", "c.degree_level", "c.year_slot", "c.result_type"}
	groupCols := []string{"c.department_id", "c.degree_level", "c.year_slot", "c.result_type"}
	orderCols := []string{"c.department_id", "c.degree_level", "c.year_slot", "c.result_type"}
	joins := []string{"JOIN genders g ON g.id = c.gender_id"}

	if groupBy.Category {
		selectCols = append(selectCols, "cat.name AS category")
		groupCols = append(groupCols, "cat.name", "cat.display_order")
		orderCols = append(orderCols, "cat.display_order")
		joins = append(joins, "JOIN categories cat ON cat.id = c.category_id")
	} else {
		selectCols = append(selectCols, "'' AS category")
	}
	if groupBy.Subcategory {
		selectCols = append(selectCols, "sub.name AS subcategory")
		groupCols = append(groupCols, "sub.name", "sub.display_order")
		orderCols = append(orderCols, "sub.display_order")
		joins = append(joins, "JOIN subcategories sub ON sub.id = c.subcategory_id")
	} else {
		selectCols = append(selectCols, "'' AS subcategory")
	}

	clause, args := totalsConditions(filter)
	query := fmt.Sprintf("SELECT %s, %s FROM count_records c %s%s GROUP BY %s ORDER BY %s",
		strings.Join(selectCols, ", "),
		genderSumColumns,
		strings.Join(joins, " "),
		clause,
		strings.Join(groupCols, ", "),
		strings.Join(orderCols, ", "),
	)

	var rows []models.SummaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("department summary: %w", err)
	}
	return rows, nil
}

func totalsConditions(filter models.TotalsFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("c.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.DegreeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("c.degree_level = $%d", len(args)+1))
		args = append(args, filter.DegreeLevel)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("c.department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.RecordType != "" {
		conditions = append(conditions, fmt.Sprintf("c.record_type = $%d", len(args)+1))
		args = append(args, filter.RecordType)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
