package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

// DeclarationRepository persists declarations and owns the filing
// transaction.
type DeclarationRepository struct {
	db *sqlx.DB
}

// NewDeclarationRepository constructs the repository.
func NewDeclarationRepository(db *sqlx.DB) *DeclarationRepository {
	return &DeclarationRepository{db: db}
}

const declarationColumns = `id, department_id, academic_year, degree_level, record_type, submitted_by, hod_name, year_slots_covered, locked, submitted_at`

// Find returns the declaration for one submission scope, or
// sql.ErrNoRows when the scope is still open.
func (r *DeclarationRepository) Find(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (*models.Declaration, error) {
	query := fmt.Sprintf(`SELECT %s FROM declarations
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4`, declarationColumns)
	var decl models.Declaration
	if err := r.db.GetContext(ctx, &decl, query, departmentID, academicYear, level, recordType); err != nil {
		return nil, err
	}
	return &decl, nil
}

// FindByID returns a declaration by its identifier.
func (r *DeclarationRepository) FindByID(ctx context.Context, id string) (*models.Declaration, error) {
	query := fmt.Sprintf("SELECT %s FROM declarations WHERE id = $1", declarationColumns)
	var decl models.Declaration
	if err := r.db.GetContext(ctx, &decl, query, id); err != nil {
		return nil, err
	}
	return &decl, nil
}

// IsLocked reports whether the scope has a locked declaration. A
// missing row means the scope is open.
func (r *DeclarationRepository) IsLocked(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (bool, error) {
	const query = `SELECT locked FROM declarations
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4`
	var locked bool
	err := r.db.GetContext(ctx, &locked, query, departmentID, academicYear, level, recordType)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check declaration lock: %w", err)
	}
	return locked, nil
}

// List returns declarations matching the filter.
func (r *DeclarationRepository) List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error) {
	query := fmt.Sprintf("SELECT %s FROM declarations", declarationColumns)
	var conditions []string
	var args []interface{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.DegreeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("degree_level = $%d", len(args)+1))
		args = append(args, filter.DegreeLevel)
	}
	if filter.RecordType != "" {
		conditions = append(conditions, fmt.Sprintf("record_type = $%d", len(args)+1))
		args = append(args, filter.RecordType)
	}
	if filter.LockedOnly {
		conditions = append(conditions, "locked = TRUE")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY submitted_at DESC"

	var declarations []models.Declaration
	if err := r.db.SelectContext(ctx, &declarations, query, args...); err != nil {
		return nil, fmt.Errorf("list declarations: %w", err)
	}
	return declarations, nil
}

const slotCellCountsForUpdate = `SELECT year_slot, result_type, COUNT(*) AS cells FROM count_records
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4
GROUP BY year_slot, result_type`

// File creates the declaration with locked=true. Completeness is
// re-validated from grouped cell counts inside the same transaction,
// closing the check-then-act race against concurrent edits. requiredCells
// is the full category x subcategory x gender product for one pass.
func (r *DeclarationRepository) File(ctx context.Context, decl *models.Declaration, requiredCells int) error {
	if decl.ID == "" {
		decl.ID = uuid.NewString()
	}
	if decl.SubmittedAt.IsZero() {
		decl.SubmittedAt = time.Now().UTC()
	}
	decl.Locked = true

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin declaration filing: %w", err)
	}

	// exclusive department-row lock: waits out in-flight upsert batches
	// (they hold FOR SHARE) and stalls new ones until this filing
	// commits, so the completeness recheck below cannot go stale
	var one int
	if err := tx.GetContext(ctx, &one, `SELECT 1 FROM departments WHERE id = $1 FOR UPDATE`, decl.DepartmentID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return fmt.Errorf("lock department row: %w", err)
	}

	var exists bool
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM declarations
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4)`
	if err := tx.GetContext(ctx, &exists, existsQuery, decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check existing declaration: %w", err)
	}
	if exists {
		_ = tx.Rollback()
		return appErrors.Clone(appErrors.ErrConflict, "declaration already filed")
	}

	var counts []models.SlotCellCount
	if err := tx.SelectContext(ctx, &counts, slotCellCountsForUpdate, decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("recheck submission completeness: %w", err)
	}

	missing := models.MissingSlots(decl.DegreeLevel, decl.RecordType, counts, requiredCells)
	if len(missing) > 0 {
		_ = tx.Rollback()
		names := make([]string, len(missing))
		for i, slot := range missing {
			names[i] = string(slot)
		}
		return appErrors.Clone(appErrors.ErrIncompleteSubmission,
			fmt.Sprintf("submission incomplete for: %s", strings.Join(names, ", ")))
	}

	covered := make([]string, 0, len(models.YearSlotsFor(decl.DegreeLevel)))
	for _, slot := range models.YearSlotsFor(decl.DegreeLevel) {
		covered = append(covered, string(slot))
	}
	decl.YearSlotsCovered = pq.StringArray(covered)

	const insertQuery = `INSERT INTO declarations
(id, department_id, academic_year, degree_level, record_type, submitted_by, hod_name, year_slots_covered, locked, submitted_at)
VALUES (:id, :department_id, :academic_year, :degree_level, :record_type, :submitted_by, :hod_name, :year_slots_covered, :locked, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, insertQuery, decl); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert declaration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit declaration filing: %w", err)
	}
	return nil
}

// SetLock flips the locked flag. Admin-only override; it bypasses the
// completeness guard on purpose.
func (r *DeclarationRepository) SetLock(ctx context.Context, id string, locked bool) error {
	const query = `UPDATE declarations SET locked = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, locked)
	if err != nil {
		return fmt.Errorf("update declaration lock: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "declaration not found")
	}
	return nil
}

// DeleteWithRecords removes the declaration and every count record in
// its scope in one transaction. Admin-only override.
func (r *DeclarationRepository) DeleteWithRecords(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submission delete: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM declarations WHERE id = $1", declarationColumns)
	var decl models.Declaration
	if err := tx.GetContext(ctx, &decl, query, id); err != nil {
		_ = tx.Rollback()
		return err
	}

	const deleteRecords = `DELETE FROM count_records
WHERE department_id = $1 AND academic_year = $2 AND degree_level = $3 AND record_type = $4`
	if _, err := tx.ExecContext(ctx, deleteRecords, decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete submission records: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM declarations WHERE id = $1`, id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete declaration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submission delete: %w", err)
	}
	return nil
}
