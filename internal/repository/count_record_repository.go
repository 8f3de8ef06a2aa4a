package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

// CountRecordRepository persists the count record fact table.
type CountRecordRepository struct {
	db *sqlx.DB
}

// NewCountRecordRepository constructs the repository.
func NewCountRecordRepository(db *sqlx.DB) *CountRecordRepository {
	return &CountRecordRepository{db: db}
}

const upsertCellQuery = `INSERT INTO count_records
(id, academic_year, department_id, degree_level, year_slot, record_type, result_type, category_id, subcategory_id, gender_id, count, submitted_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
ON CONFLICT (academic_year, department_id, degree_level, year_slot, record_type, result_type, category_id, subcategory_id, gender_id)
DO UPDATE SET count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`

// departmentShareLockQuery takes a shared lock on the department row.
// A declaration row may not exist yet, so FOR SHARE on declarations
// alone would lock nothing; filings take FOR UPDATE on the same
// department row, which serializes them against in-flight upserts.
const departmentShareLockQuery = `SELECT 1 FROM departments WHERE id = $1 FOR SHARE`

const declarationLockQuery = `SELECT locked FROM declarations
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4`

// UpsertBatch writes all cells of one submit/update pass in a single
// transaction. The department row is share-locked and the declaration
// checked inside the same transaction so a concurrent filing cannot
// slip between the check and the write. A locked submission rejects
// the whole batch.
func (r *CountRecordRepository) UpsertBatch(ctx context.Context, key models.SubmissionKey, cells []models.Cell) error {
	if len(cells) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert batch: %w", err)
	}

	var one int
	if err := tx.GetContext(ctx, &one, departmentShareLockQuery, key.DepartmentID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return fmt.Errorf("lock department row: %w", err)
	}

	var locked bool
	err = tx.GetContext(ctx, &locked, declarationLockQuery, key.DepartmentID, key.AcademicYear, key.DegreeLevel, key.RecordType)
	if err != nil && err != sql.ErrNoRows {
		_ = tx.Rollback()
		return fmt.Errorf("check declaration lock: %w", err)
	}
	if locked {
		_ = tx.Rollback()
		return appErrors.ErrSubmissionLocked
	}

	now := time.Now().UTC()
	for _, cell := range cells {
		if _, err := tx.ExecContext(ctx, upsertCellQuery,
			uuid.NewString(),
			key.AcademicYear,
			key.DepartmentID,
			key.DegreeLevel,
			key.YearSlot,
			key.RecordType,
			key.ResultType,
			cell.CategoryID,
			cell.SubcategoryID,
			cell.GenderID,
			cell.Count,
			now,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert count cell: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert batch: %w", err)
	}
	return nil
}

// ListCells returns count records matching the filter.
func (r *CountRecordRepository) ListCells(ctx context.Context, filter models.CountRecordFilter) ([]models.CountRecord, error) {
	query := `SELECT id, academic_year, department_id, degree_level, year_slot, record_type, result_type,
category_id, subcategory_id, gender_id, count, submitted_at, updated_at FROM count_records`
	clause, args := countRecordConditions(filter)
	query += clause + " ORDER BY department_id, degree_level, year_slot, result_type, category_id, subcategory_id, gender_id"

	var records []models.CountRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list count records: %w", err)
	}
	return records, nil
}

// PresentCellKeys returns the distinct cell keys stored for one
// data-entry pass. The unique index guarantees one row per key.
func (r *CountRecordRepository) PresentCellKeys(ctx context.Context, key models.SubmissionKey) ([]models.CellKey, error) {
	const query = `SELECT category_id, subcategory_id, gender_id FROM count_records
WHERE academic_year = $1 AND department_id = $2 AND degree_level = $3 AND year_slot = $4 AND record_type = $5 AND result_type = $6`
	var keys []models.CellKey
	if err := r.db.SelectContext(ctx, &keys, query,
		key.AcademicYear, key.DepartmentID, key.DegreeLevel, key.YearSlot, key.RecordType, key.ResultType); err != nil {
		return nil, fmt.Errorf("list present cell keys: %w", err)
	}
	return keys, nil
}

// SlotCellCounts returns grouped presence counts for every year slot
// and result type of one (department, year, level, record type) scope.
func (r *CountRecordRepository) SlotCellCounts(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotCellCount, error) {
	const query = `SELECT year_slot, result_type, COUNT(*) AS cells FROM count_records
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4
GROUP BY year_slot, result_type`
	var counts []models.SlotCellCount
	if err := r.db.SelectContext(ctx, &counts, query, departmentID, academicYear, level, recordType); err != nil {
		return nil, fmt.Errorf("count submission cells: %w", err)
	}
	return counts, nil
}

// DepartmentsWithRecords returns the distinct department/year/level
// groups that have any stored cells for the filter.
func (r *CountRecordRepository) DepartmentsWithRecords(ctx context.Context, filter models.CountRecordFilter) ([]models.DeclarationGroup, error) {
	query := `SELECT department_id, academic_year, degree_level, MAX(submitted_at) AS submitted_at FROM count_records`
	clause, args := countRecordConditions(filter)
	query += clause + " GROUP BY department_id, academic_year, degree_level"

	var groups []models.DeclarationGroup
	if err := r.db.SelectContext(ctx, &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list record groups: %w", err)
	}
	return groups, nil
}

func countRecordConditions(filter models.CountRecordFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.DegreeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("degree_level = $%d", len(args)+1))
		args = append(args, filter.DegreeLevel)
	}
	if filter.YearSlot != "" {
		conditions = append(conditions, fmt.Sprintf("year_slot = $%d", len(args)+1))
		args = append(args, filter.YearSlot)
	}
	if filter.RecordType != "" {
		conditions = append(conditions, fmt.Sprintf("record_type = $%d", len(args)+1))
		args = append(args, filter.RecordType)
	}
	if filter.ResultType != "" {
		conditions = append(conditions, fmt.Sprintf("result_type = $%d", len(args)+1))
		args = append(args, filter.ResultType)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
