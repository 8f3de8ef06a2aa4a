package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type aggregationReader interface {
	GenderTotals(ctx context.Context, filter models.TotalsFilter) (*models.GenderTotals, error)
	DepartmentSummary(ctx context.Context, filter models.TotalsFilter, groupBy models.SummaryGroupBy) ([]models.SummaryRow, error)
}

// AggregationService is the single authority for rollups: every surface
// (department dashboard, admin dashboard, report extraction) reads the
// same computed views instead of re-deriving its own merge.
type AggregationService struct {
	reader   aggregationReader
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAggregationService constructs AggregationService.
func NewAggregationService(reader aggregationReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AggregationService{reader: reader, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

func totalsCacheKey(filter models.TotalsFilter) string {
	return fmt.Sprintf("totals:%s:%s:%s:%s", filter.AcademicYear, filter.DegreeLevel, filter.DepartmentID, filter.RecordType)
}

// GenderTotals returns the institution-wide {male, female, transgender}
// triple for the filter. Empty filter fields mean no constraint. The
// totals are advisory dashboard data: an upstream failure degrades to a
// zero-filled triple instead of propagating. The second return reports
// cache utilisation.
func (s *AggregationService) GenderTotals(ctx context.Context, filter models.TotalsFilter) (*models.GenderTotals, bool, error) {
	cacheKey := totalsCacheKey(filter)
	var cached models.GenderTotals
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, true, nil
	}

	totals, err := s.reader.GenderTotals(ctx, filter)
	if err != nil {
		s.logger.Warn("gender totals query failed, serving zero-filled totals",
			zap.String("academic_year", filter.AcademicYear),
			zap.String("degree_level", string(filter.DegreeLevel)),
			zap.Error(err))
		return &models.GenderTotals{}, false, nil
	}

	if err := s.cache.Set(ctx, cacheKey, totals, s.cacheTTL); err != nil {
		s.logger.Debug("totals cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return totals, false, nil
}

// DepartmentSummary returns grouped gender sums for one department (or
// all, when the filter leaves the department open).
func (s *AggregationService) DepartmentSummary(ctx context.Context, filter models.TotalsFilter, groupBy models.SummaryGroupBy) ([]models.SummaryRow, error) {
	rows, err := s.reader.DepartmentSummary(ctx, filter, groupBy)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute department summary")
	}
	return rows, nil
}

// MergeTotals folds grouped summary rows into one triple with integer
// arithmetic only.
func (s *AggregationService) MergeTotals(rows []models.SummaryRow) models.GenderTotals {
	var merged models.GenderTotals
	for _, row := range rows {
		merged.Add(row.Totals())
	}
	return merged
}

// PickRepresentative chooses the group that stands for a department
// when several (academic_year, degree_level) groups exist. The
// tie-break is stable and shared by every listing surface: a group
// matching the caller's explicit year+level filter wins, then the most
// recently submitted, then the first found.
func (s *AggregationService) PickRepresentative(groups []models.DeclarationGroup, academicYear string, level models.DegreeLevel) *models.DeclarationGroup {
	if len(groups) == 0 {
		return nil
	}

	ordered := make([]models.DeclarationGroup, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		mi := matchesFilter(ordered[i], academicYear, level)
		mj := matchesFilter(ordered[j], academicYear, level)
		if mi != mj {
			return mi
		}
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.After(ordered[j].SubmittedAt)
		}
		return false
	})
	return &ordered[0]
}

func matchesFilter(group models.DeclarationGroup, academicYear string, level models.DegreeLevel) bool {
	if academicYear == "" && level == "" {
		return false
	}
	if academicYear != "" && group.AcademicYear != academicYear {
		return false
	}
	if level != "" && group.DegreeLevel != level {
		return false
	}
	return true
}

// InvalidateTotals drops every cached dashboard rollup after a write.
func (s *AggregationService) InvalidateTotals(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "totals:*"); err != nil {
		s.logger.Warn("totals cache invalidation failed", zap.Error(err))
	}
}
