package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type countRecordStore interface {
	UpsertBatch(ctx context.Context, key models.SubmissionKey, cells []models.Cell) error
	ListCells(ctx context.Context, filter models.CountRecordFilter) ([]models.CountRecord, error)
}

type statusInvalidator interface {
	InvalidateStatuses(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel)
}

type totalsInvalidator interface {
	InvalidateTotals(ctx context.Context)
}

// CountCellInput is one flat record of a submit/update batch, carrying
// its full key so clients can post entry grids verbatim.
type CountCellInput struct {
	AcademicYear  string             `json:"academic_year" validate:"required"`
	DepartmentID  string             `json:"dept_id" validate:"required"`
	DegreeLevel   models.DegreeLevel `json:"degree_level" validate:"required"`
	YearSlot      models.YearSlot    `json:"year" validate:"required"`
	RecordType    models.RecordType  `json:"record_type" validate:"required"`
	ResultType    models.ResultType  `json:"result_type,omitempty"`
	CategoryID    string             `json:"category_id" validate:"required"`
	SubcategoryID string             `json:"subcategory_id" validate:"required"`
	GenderID      string             `json:"gender_id" validate:"required"`
	Count         int                `json:"count" validate:"gte=0"`
}

// SubmitCountsRequest is the submit/update batch payload.
type SubmitCountsRequest struct {
	Records []CountCellInput `json:"records" validate:"required,min=1,dive"`
}

// CountService validates and persists count record batches. A batch is
// rejected whole on any validation failure; nothing is written.
type CountService struct {
	store     countRecordStore
	refs      referenceSetLoader
	statuses  statusInvalidator
	totals    totalsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCountService constructs CountService.
func NewCountService(store countRecordStore, refs referenceSetLoader, statuses statusInvalidator, totals totalsInvalidator, validate *validator.Validate, logger *zap.Logger) *CountService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountService{store: store, refs: refs, statuses: statuses, totals: totals, validator: validate, logger: logger}
}

// Submit upserts every cell of the request. All records must target one
// (department, academic_year, degree_level, record_type) scope; within
// it they are grouped per data-entry pass and each pass commits in a
// single transaction. Locked scopes reject the batch.
func (s *CountService) Submit(ctx context.Context, req SubmitCountsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid count batch payload")
	}

	first := req.Records[0]
	for _, rec := range req.Records {
		if rec.DepartmentID != first.DepartmentID || rec.AcademicYear != first.AcademicYear ||
			rec.DegreeLevel != first.DegreeLevel || rec.RecordType != first.RecordType {
			return appErrors.Clone(appErrors.ErrValidation, "batch must target a single department, academic year, degree level and record type")
		}
	}

	if err := s.validateRecords(ctx, req.Records); err != nil {
		return err
	}

	batches := make(map[models.SubmissionKey][]models.Cell)
	order := make([]models.SubmissionKey, 0)
	for _, rec := range req.Records {
		key := models.SubmissionKey{
			DepartmentID: rec.DepartmentID,
			AcademicYear: rec.AcademicYear,
			DegreeLevel:  rec.DegreeLevel,
			YearSlot:     rec.YearSlot,
			RecordType:   rec.RecordType,
			ResultType:   rec.ResultType,
		}
		if _, seen := batches[key]; !seen {
			order = append(order, key)
		}
		batches[key] = append(batches[key], models.Cell{
			CategoryID:    rec.CategoryID,
			SubcategoryID: rec.SubcategoryID,
			GenderID:      rec.GenderID,
			Count:         rec.Count,
		})
	}

	// each pass commits its own transaction; once any pass has landed
	// the cached statuses and totals are stale even if a later one fails
	committed := 0
	defer func() {
		if committed == 0 {
			return
		}
		s.statuses.InvalidateStatuses(ctx, first.DepartmentID, first.AcademicYear, first.DegreeLevel)
		s.totals.InvalidateTotals(ctx)
	}()

	for _, key := range order {
		if err := s.store.UpsertBatch(ctx, key, batches[key]); err != nil {
			if appErr := appErrors.FromError(err); appErr.Code == appErrors.ErrSubmissionLocked.Code {
				return err
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store count batch")
		}
		committed++
	}

	s.logger.Info("count batch stored",
		zap.String("department_id", first.DepartmentID),
		zap.String("academic_year", first.AcademicYear),
		zap.String("degree_level", string(first.DegreeLevel)),
		zap.String("record_type", string(first.RecordType)),
		zap.Int("cells", len(req.Records)))
	return nil
}

// validateRecords checks every record against reference data and the
// degree-level slot rules before any write happens.
func (s *CountService) validateRecords(ctx context.Context, records []CountCellInput) error {
	refs, err := s.refs.ReferenceSet(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
	}

	categories := make(map[string]struct{}, len(refs.Categories))
	for _, c := range refs.Categories {
		categories[c.ID] = struct{}{}
	}
	subcategories := make(map[string]struct{}, len(refs.Subcategories))
	for _, sc := range refs.Subcategories {
		subcategories[sc.ID] = struct{}{}
	}
	genders := make(map[string]struct{}, len(refs.Genders))
	for _, g := range refs.Genders {
		genders[g.ID] = struct{}{}
	}

	for i, rec := range records {
		if !rec.DegreeLevel.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: unknown degree level %q", i, rec.DegreeLevel))
		}
		if !rec.RecordType.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: unknown record type %q", i, rec.RecordType))
		}
		if !models.ValidYearSlot(rec.DegreeLevel, rec.YearSlot) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: year slot %q not valid for %s", i, rec.YearSlot, rec.DegreeLevel))
		}
		switch rec.RecordType {
		case models.RecordTypeExamination:
			if !rec.ResultType.Valid() {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: examination records require a result type", i))
			}
		default:
			if rec.ResultType != "" {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: result type only applies to examination records", i))
			}
		}
		if _, ok := categories[rec.CategoryID]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: unknown category %q", i, rec.CategoryID))
		}
		if _, ok := subcategories[rec.SubcategoryID]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: unknown subcategory %q", i, rec.SubcategoryID))
		}
		if _, ok := genders[rec.GenderID]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("record %d: unknown gender %q", i, rec.GenderID))
		}
	}
	return nil
}

// List returns raw count records for entry grids and report extraction.
func (s *CountService) List(ctx context.Context, filter models.CountRecordFilter) ([]models.CountRecord, error) {
	records, err := s.store.ListCells(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list count records")
	}
	return records, nil
}
