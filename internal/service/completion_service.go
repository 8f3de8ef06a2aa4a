package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type completionCellReader interface {
	PresentCellKeys(ctx context.Context, key models.SubmissionKey) ([]models.CellKey, error)
	SlotCellCounts(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotCellCount, error)
}

type referenceSetLoader interface {
	ReferenceSet(ctx context.Context) (*models.ReferenceSet, error)
}

// CompletionService derives submission status from raw cell presence.
// A year slot is Completed iff every category x subcategory x gender
// tuple exists, regardless of count values; examination slots require
// every result type pass to be individually complete.
type CompletionService struct {
	records   completionCellReader
	refs      referenceSetLoader
	cache     *CacheService
	logger    *zap.Logger
	statusTTL time.Duration
}

// NewCompletionService constructs a CompletionService.
func NewCompletionService(records completionCellReader, refs referenceSetLoader, cache *CacheService, statusTTL time.Duration, logger *zap.Logger) *CompletionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if statusTTL <= 0 {
		statusTTL = 5 * time.Minute
	}
	return &CompletionService{records: records, refs: refs, cache: cache, logger: logger, statusTTL: statusTTL}
}

func statusCacheKey(departmentID, academicYear string, level models.DegreeLevel, slot models.YearSlot, recordType models.RecordType) string {
	return fmt.Sprintf("status:%s:%s:%s:%s:%s", departmentID, academicYear, level, slot, recordType)
}

// StatusCachePattern matches every cached status of one submission
// scope, for invalidation after a write.
func StatusCachePattern(departmentID, academicYear string, level models.DegreeLevel) string {
	return fmt.Sprintf("status:%s:%s:%s:*", departmentID, academicYear, level)
}

// SlotStatus evaluates one year slot. The cache is advisory: a miss or
// stale error falls through to a fresh computation.
func (s *CompletionService) SlotStatus(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, slot models.YearSlot, recordType models.RecordType) (*models.SlotStatus, error) {
	if !models.ValidYearSlot(level, slot) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("year slot %q not valid for %s", slot, level))
	}

	cacheKey := statusCacheKey(departmentID, academicYear, level, slot, recordType)
	var cached models.SlotStatus
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	refs, err := s.refs.ReferenceSet(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
	}

	status := models.SlotStatus{YearSlot: slot, Status: models.StatusCompleted}
	if recordType == models.RecordTypeExamination {
		notSubmitted := 0
		for _, rt := range models.ResultTypes() {
			rtStatus, err := s.passStatus(ctx, models.SubmissionKey{
				DepartmentID: departmentID,
				AcademicYear: academicYear,
				DegreeLevel:  level,
				YearSlot:     slot,
				RecordType:   recordType,
				ResultType:   rt,
			}, refs)
			if err != nil {
				return nil, err
			}
			status.ResultTypes = append(status.ResultTypes, *rtStatus)
			if rtStatus.Status != models.StatusCompleted {
				status.Status = models.StatusIncomplete
			}
			if rtStatus.Status == models.StatusNotSubmitted {
				notSubmitted++
			}
		}
		// a slot with no examination cells at all was never started
		if notSubmitted == len(status.ResultTypes) {
			status.Status = models.StatusNotSubmitted
		}
	} else {
		pass, err := s.passStatus(ctx, models.SubmissionKey{
			DepartmentID: departmentID,
			AcademicYear: academicYear,
			DegreeLevel:  level,
			YearSlot:     slot,
			RecordType:   recordType,
		}, refs)
		if err != nil {
			return nil, err
		}
		status.Status = pass.Status
	}

	if err := s.cache.Set(ctx, cacheKey, status, s.statusTTL); err != nil {
		s.logger.Debug("status cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}
	return &status, nil
}

// passStatus checks one data-entry pass: the stored cell keys must be a
// superset of the required cross product. Presence decides, not counts.
func (s *CompletionService) passStatus(ctx context.Context, key models.SubmissionKey, refs *models.ReferenceSet) (*models.ResultTypeStatus, error) {
	found, err := s.records.PresentCellKeys(ctx, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submitted cells")
	}

	present := make(map[models.CellKey]struct{}, len(found))
	for _, k := range found {
		present[k] = struct{}{}
	}

	required := refs.RequiredCellCount()
	matched := 0
	for _, cat := range refs.Categories {
		for _, sub := range refs.Subcategories {
			for _, gen := range refs.Genders {
				k := models.CellKey{CategoryID: cat.ID, SubcategoryID: sub.ID, GenderID: gen.ID}
				if _, ok := present[k]; ok {
					matched++
				}
			}
		}
	}

	status := models.StatusIncomplete
	switch {
	case matched == required:
		status = models.StatusCompleted
	case matched == 0:
		status = models.StatusNotSubmitted
	}
	return &models.ResultTypeStatus{
		ResultType: key.ResultType,
		Status:     status,
		CellsFound: matched,
		CellsNeed:  required,
	}, nil
}

// DegreeLevelStatus evaluates every year slot valid for the level.
func (s *CompletionService) DegreeLevelStatus(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotStatus, error) {
	slots := models.YearSlotsFor(level)
	if slots == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown degree level %q", level))
	}

	statuses := make([]models.SlotStatus, 0, len(slots))
	for _, slot := range slots {
		status, err := s.SlotStatus(ctx, departmentID, academicYear, level, slot, recordType)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// MissingSlots returns the year slots blocking a declaration, from the
// grouped presence counts. Used for the friendly pre-check; the filing
// transaction re-validates inside the database.
func (s *CompletionService) MissingSlots(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.YearSlot, error) {
	refs, err := s.refs.ReferenceSet(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
	}
	counts, err := s.records.SlotCellCounts(ctx, departmentID, academicYear, level, recordType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission counts")
	}
	return models.MissingSlots(level, recordType, counts, refs.RequiredCellCount()), nil
}

// RequiredCellCount exposes the category x subcategory x gender product
// for callers that enforce completeness inside their own transaction.
func (s *CompletionService) RequiredCellCount(ctx context.Context) (int, error) {
	refs, err := s.refs.ReferenceSet(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
	}
	return refs.RequiredCellCount(), nil
}

// InvalidateStatuses drops every cached status for a submission scope.
// Called in the same service flow that commits a batch so readers never
// observe a stale verdict past the write.
func (s *CompletionService) InvalidateStatuses(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel) {
	if err := s.cache.Invalidate(ctx, StatusCachePattern(departmentID, academicYear, level)); err != nil {
		s.logger.Warn("status cache invalidation failed",
			zap.String("department_id", departmentID),
			zap.String("academic_year", academicYear),
			zap.Error(err))
	}
}
