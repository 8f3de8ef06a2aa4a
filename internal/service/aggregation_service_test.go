package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
)

type fakeAggregationReader struct {
	totals    *models.GenderTotals
	totalsErr error
	rows      []models.SummaryRow
	calls     int
}

func (f *fakeAggregationReader) GenderTotals(ctx context.Context, filter models.TotalsFilter) (*models.GenderTotals, error) {
	f.calls++
	if f.totalsErr != nil {
		return nil, f.totalsErr
	}
	return f.totals, nil
}

func (f *fakeAggregationReader) DepartmentSummary(ctx context.Context, filter models.TotalsFilter, groupBy models.SummaryGroupBy) ([]models.SummaryRow, error) {
	return f.rows, nil
}

func TestAggregationServiceGenderTotals(t *testing.T) {
	reader := &fakeAggregationReader{totals: &models.GenderTotals{Male: 100, Female: 120, Transgender: 1}}
	svc := NewAggregationService(reader, disabledCache(), 0, nil)

	totals, cached, err := svc.GenderTotals(context.Background(), models.TotalsFilter{AcademicYear: "2025-26"})
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, 221, totals.Total())
}

func TestAggregationServiceGenderTotalsDegradesToZero(t *testing.T) {
	reader := &fakeAggregationReader{totalsErr: errors.New("connection refused")}
	svc := NewAggregationService(reader, disabledCache(), 0, nil)

	totals, cached, err := svc.GenderTotals(context.Background(), models.TotalsFilter{})
	require.NoError(t, err)
	require.False(t, cached)
	require.Equal(t, &models.GenderTotals{}, totals)
}

func TestAggregationServiceMergeTotals(t *testing.T) {
	svc := NewAggregationService(&fakeAggregationReader{}, disabledCache(), 0, nil)

	merged := svc.MergeTotals([]models.SummaryRow{
		{Male: 10, Female: 12, Transgender: 0},
		{Male: 7, Female: 5, Transgender: 1},
	})
	require.Equal(t, models.GenderTotals{Male: 17, Female: 17, Transgender: 1}, merged)
}

func TestAggregationServicePickRepresentative(t *testing.T) {
	svc := NewAggregationService(&fakeAggregationReader{}, disabledCache(), 0, nil)
	older := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	groups := []models.DeclarationGroup{
		{DepartmentID: "dept-1", AcademicYear: "2024-25", DegreeLevel: models.DegreeLevelUG, SubmittedAt: newer},
		{DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG, SubmittedAt: older},
	}

	// an explicit filter match outranks recency
	rep := svc.PickRepresentative(groups, "2025-26", models.DegreeLevelUG)
	require.Equal(t, "2025-26", rep.AcademicYear)

	// no filter: latest submission wins
	rep = svc.PickRepresentative(groups, "", "")
	require.Equal(t, "2024-25", rep.AcademicYear)

	require.Nil(t, svc.PickRepresentative(nil, "2025-26", models.DegreeLevelUG))
}

func TestAggregationServicePickRepresentativeStable(t *testing.T) {
	svc := NewAggregationService(&fakeAggregationReader{}, disabledCache(), 0, nil)
	ts := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	groups := []models.DeclarationGroup{
		{DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG, SubmittedAt: ts},
		{DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelPG, SubmittedAt: ts},
	}

	// identical timestamps and no filter: first found wins, every call
	rep := svc.PickRepresentative(groups, "", "")
	require.Equal(t, models.DegreeLevelUG, rep.DegreeLevel)
	rep = svc.PickRepresentative(groups, "", "")
	require.Equal(t, models.DegreeLevelUG, rep.DegreeLevel)
}
