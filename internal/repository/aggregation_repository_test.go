package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

func newAggregationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAggregationRepositoryGenderTotals(t *testing.T) {
	db, mock, cleanup := newAggregationRepoMock(t)
	defer cleanup()
	repo := NewAggregationRepository(db)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs("2025-26", models.DegreeLevelUG).
		WillReturnRows(sqlmock.NewRows([]string{"male_count", "female_count", "transgender_count"}).
			AddRow(120, 140, 2))

	totals, err := repo.GenderTotals(context.Background(), models.TotalsFilter{
		AcademicYear: "2025-26",
		DegreeLevel:  models.DegreeLevelUG,
	})
	require.NoError(t, err)
	require.Equal(t, 120, totals.Male)
	require.Equal(t, 140, totals.Female)
	require.Equal(t, 2, totals.Transgender)
	require.Equal(t, 262, totals.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationRepositoryGenderTotalsEmptyStore(t *testing.T) {
	db, mock, cleanup := newAggregationRepoMock(t)
	defer cleanup()
	repo := NewAggregationRepository(db)

	// COALESCE keeps the aggregate row present even with zero matches.
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"male_count", "female_count", "transgender_count"}).
			AddRow(0, 0, 0))

	totals, err := repo.GenderTotals(context.Background(), models.TotalsFilter{})
	require.NoError(t, err)
	require.Equal(t, 0, totals.Total())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAggregationRepositoryDepartmentSummaryGrouped(t *testing.T) {
	db, mock, cleanup := newAggregationRepoMock(t)
	defer cleanup()
	repo := NewAggregationRepository(db)

	rows := sqlmock.NewRows([]string{"department_id", "degree_level", "year_slot", "result_type",
		"category", "subcategory", "male_count", "female_count", "transgender_count"}).
		AddRow("dept-1", "UG", "I Year", "", "General", "Without Disability", 40, 45, 1).
		AddRow("dept-1", "UG", "I Year", "", "OBC", "Without Disability", 30, 28, 0)

	mock.ExpectQuery(regexp.QuoteMeta("JOIN categories cat ON cat.id = c.category_id")).
		WithArgs("2025-26", "dept-1").
		WillReturnRows(rows)

	summary, err := repo.DepartmentSummary(context.Background(),
		models.TotalsFilter{AcademicYear: "2025-26", DepartmentID: "dept-1"},
		models.SummaryGroupBy{Category: true, Subcategory: true})
	require.NoError(t, err)
	require.Len(t, summary, 2)
	require.Equal(t, "General", summary[0].Category)
	require.Equal(t, models.GenderTotals{Male: 40, Female: 45, Transgender: 1}, summary[0].Totals())
	require.NoError(t, mock.ExpectationsWereMet())
}
