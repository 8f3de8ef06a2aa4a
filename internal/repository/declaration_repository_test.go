package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

func newDeclarationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func testDeclaration() *models.Declaration {
	return &models.Declaration{
		DepartmentID: "dept-1",
		AcademicYear: "2025-26",
		DegreeLevel:  models.DegreeLevelPG,
		RecordType:   models.RecordTypeEnrollment,
		SubmittedBy:  "user-1",
		HODName:      "Dr. Iyer",
	}
}

func TestDeclarationRepositoryIsLockedOpenScope(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT locked FROM declarations")).
		WithArgs("dept-1", "2025-26", models.DegreeLevelUG, models.RecordTypeEnrollment).
		WillReturnRows(sqlmock.NewRows([]string{"locked"}))

	locked, err := repo.IsLocked(context.Background(), "dept-1", "2025-26", models.DegreeLevelUG, models.RecordTypeEnrollment)
	require.NoError(t, err)
	require.False(t, locked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepositoryFile(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)
	decl := testDeclaration()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE id = $1 FOR UPDATE")).
		WithArgs(decl.DepartmentID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM declarations")).
		WithArgs(decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT year_slot, result_type, COUNT(*) AS cells FROM count_records")).
		WithArgs(decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType).
		WillReturnRows(sqlmock.NewRows([]string{"year_slot", "result_type", "cells"}).
			AddRow("I Year", "", 36).
			AddRow("II Year", "", 36))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO declarations")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.File(context.Background(), decl, 36))
	require.True(t, decl.Locked)
	require.NotEmpty(t, decl.ID)
	require.Equal(t, []string{"I Year", "II Year"}, []string(decl.YearSlotsCovered))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepositoryFileAlreadyFiled(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)
	decl := testDeclaration()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE id = $1 FOR UPDATE")).
		WithArgs(decl.DepartmentID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM declarations")).
		WithArgs(decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := repo.File(context.Background(), decl, 36)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepositoryFileIncomplete(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)
	decl := testDeclaration()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM departments WHERE id = $1 FOR UPDATE")).
		WithArgs(decl.DepartmentID).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM declarations")).
		WithArgs(decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT year_slot, result_type, COUNT(*) AS cells FROM count_records")).
		WithArgs(decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel, decl.RecordType).
		WillReturnRows(sqlmock.NewRows([]string{"year_slot", "result_type", "cells"}).
			AddRow("I Year", "", 36))
	mock.ExpectRollback()

	err := repo.File(context.Background(), decl, 36)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrIncompleteSubmission))
	require.Contains(t, err.Error(), "II Year")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepositorySetLockNotFound(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE declarations SET locked = $2 WHERE id = $1")).
		WithArgs("decl-missing", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetLock(context.Background(), "decl-missing", false)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeclarationRepositoryDeleteWithRecords(t *testing.T) {
	db, mock, cleanup := newDeclarationRepoMock(t)
	defer cleanup()
	repo := NewDeclarationRepository(db)

	declRow := sqlmock.NewRows([]string{"id", "department_id", "academic_year", "degree_level", "record_type",
		"submitted_by", "hod_name", "year_slots_covered", "locked", "submitted_at"}).
		AddRow("decl-1", "dept-1", "2025-26", "UG", "ENROLLMENT", "user-1", "Dr. Iyer", "{I Year,II Year,III Year}", true, time.Now())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, department_id, academic_year, degree_level, record_type, submitted_by, hod_name, year_slots_covered, locked, submitted_at FROM declarations WHERE id = $1")).
		WithArgs("decl-1").
		WillReturnRows(declRow)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM count_records")).
		WithArgs("dept-1", "2025-26", "UG", "ENROLLMENT").
		WillReturnResult(sqlmock.NewResult(0, 108))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM declarations WHERE id = $1")).
		WithArgs("decl-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithRecords(context.Background(), "decl-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
