package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type adminDeclarationStore interface {
	List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error)
	FindByID(ctx context.Context, id string) (*models.Declaration, error)
	SetLock(ctx context.Context, id string, locked bool) error
	DeleteWithRecords(ctx context.Context, id string) error
}

type adminRecordReader interface {
	DepartmentsWithRecords(ctx context.Context, filter models.CountRecordFilter) ([]models.DeclarationGroup, error)
	SlotCellCounts(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotCellCount, error)
}

type departmentLister interface {
	Departments(ctx context.Context) ([]models.Department, error)
}

type representativePicker interface {
	PickRepresentative(groups []models.DeclarationGroup, academicYear string, level models.DegreeLevel) *models.DeclarationGroup
}

// AdminListFilter scopes the oversight listing. Empty fields mean no
// constraint; the tie-break then falls back to "latest wins".
type AdminListFilter struct {
	AcademicYear string
	DegreeLevel  models.DegreeLevel
}

// AdminService is the privileged read/override path over the same
// store. Overrides bypass the Completion Evaluator on purpose: admin
// power exceeds department self-service rules.
type AdminService struct {
	declarations adminDeclarationStore
	records      adminRecordReader
	departments  departmentLister
	refs         referenceSetLoader
	picker       representativePicker
	statuses     statusInvalidator
	totals       totalsInvalidator
	logger       *zap.Logger
}

// NewAdminService constructs AdminService.
func NewAdminService(declarations adminDeclarationStore, records adminRecordReader, departments departmentLister, refs referenceSetLoader, picker representativePicker, statuses statusInvalidator, totals totalsInvalidator, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		declarations: declarations,
		records:      records,
		departments:  departments,
		refs:         refs,
		picker:       picker,
		statuses:     statuses,
		totals:       totals,
		logger:       logger,
	}
}

// ListSubmissions builds one merged row per configured department.
// Departments with no data for the filter come back as synthetic
// "Not Submitted" rows so the listing always covers the full reference
// list.
func (s *AdminService) ListSubmissions(ctx context.Context, filter AdminListFilter) ([]models.AdminSubmissionRow, error) {
	departments, err := s.departments.Departments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}

	refs, err := s.refs.ReferenceSet(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference data")
	}
	requiredCells := refs.RequiredCellCount()

	groups, err := s.records.DepartmentsWithRecords(ctx, models.CountRecordFilter{
		AcademicYear: filter.AcademicYear,
		DegreeLevel:  filter.DegreeLevel,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submission groups")
	}
	groupsByDept := make(map[string][]models.DeclarationGroup)
	for _, g := range groups {
		groupsByDept[g.DepartmentID] = append(groupsByDept[g.DepartmentID], g)
	}

	declarations, err := s.declarations.List(ctx, models.DeclarationFilter{
		AcademicYear: filter.AcademicYear,
		DegreeLevel:  filter.DegreeLevel,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list declarations")
	}

	rows := make([]models.AdminSubmissionRow, 0, len(departments))
	for _, dept := range departments {
		row := models.AdminSubmissionRow{
			DepartmentID:      dept.ID,
			DepartmentName:    dept.Name,
			EnrollmentStatus:  models.StatusNotSubmitted,
			ExaminationStatus: models.StatusNotSubmitted,
		}

		rep := s.picker.PickRepresentative(groupsByDept[dept.ID], filter.AcademicYear, filter.DegreeLevel)
		if rep == nil {
			rows = append(rows, row)
			continue
		}
		row.AcademicYear = rep.AcademicYear
		row.DegreeLevel = rep.DegreeLevel

		row.EnrollmentStatus, err = s.scopeStatus(ctx, dept.ID, rep.AcademicYear, rep.DegreeLevel, models.RecordTypeEnrollment, requiredCells)
		if err != nil {
			return nil, err
		}
		row.ExaminationStatus, err = s.scopeStatus(ctx, dept.ID, rep.AcademicYear, rep.DegreeLevel, models.RecordTypeExamination, requiredCells)
		if err != nil {
			return nil, err
		}

		// Locked only when both collections are finalized; a half-filed
		// department still has editable data.
		var enrollmentLocked, examinationLocked bool
		for _, decl := range declarations {
			if decl.DepartmentID != dept.ID || decl.AcademicYear != rep.AcademicYear || decl.DegreeLevel != rep.DegreeLevel {
				continue
			}
			switch decl.RecordType {
			case models.RecordTypeEnrollment:
				enrollmentLocked = decl.Locked
			case models.RecordTypeExamination:
				examinationLocked = decl.Locked
			}
			if row.SubmittedAt == nil || decl.SubmittedAt.After(*row.SubmittedAt) {
				submittedAt := decl.SubmittedAt
				row.SubmittedAt = &submittedAt
				row.DeclarationID = decl.ID
			}
		}
		row.Locked = enrollmentLocked && examinationLocked

		rows = append(rows, row)
	}
	return rows, nil
}

func (s *AdminService) scopeStatus(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType, requiredCells int) (models.SubmissionStatus, error) {
	counts, err := s.records.SlotCellCounts(ctx, departmentID, academicYear, level, recordType)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission counts")
	}
	if len(counts) == 0 {
		return models.StatusNotSubmitted, nil
	}
	if missing := models.MissingSlots(level, recordType, counts, requiredCells); len(missing) > 0 {
		return models.StatusIncomplete, nil
	}
	return models.StatusCompleted, nil
}

// SetLock flips the lock flag on a declaration, bypassing completeness
// re-validation. Unlocking reopens edits for the scope.
func (s *AdminService) SetLock(ctx context.Context, id string, locked bool) (*models.Declaration, error) {
	decl, err := s.declarations.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "declaration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declaration")
	}

	if err := s.declarations.SetLock(ctx, id, locked); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lock")
	}
	decl.Locked = locked

	s.statuses.InvalidateStatuses(ctx, decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel)
	s.logger.Info("admin lock override",
		zap.String("declaration_id", id),
		zap.Bool("locked", locked),
		zap.String("department_id", decl.DepartmentID))
	return decl, nil
}

// Delete removes a declaration and every count record in its scope.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	decl, err := s.declarations.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "declaration not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declaration")
	}

	if err := s.declarations.DeleteWithRecords(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}

	s.statuses.InvalidateStatuses(ctx, decl.DepartmentID, decl.AcademicYear, decl.DegreeLevel)
	s.totals.InvalidateTotals(ctx)
	s.logger.Info("admin submission delete",
		zap.String("declaration_id", id),
		zap.String("department_id", decl.DepartmentID),
		zap.String("academic_year", decl.AcademicYear))
	return nil
}
