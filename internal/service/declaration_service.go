package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type declarationStore interface {
	Find(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (*models.Declaration, error)
	IsLocked(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (bool, error)
	File(ctx context.Context, decl *models.Declaration, requiredCells int) error
}

type completionChecker interface {
	MissingSlots(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.YearSlot, error)
	RequiredCellCount(ctx context.Context) (int, error)
}

type departmentReader interface {
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
}

// FileDeclarationRequest is the declaration filing payload. HODName
// falls back to the department's registered head when omitted.
type FileDeclarationRequest struct {
	DepartmentID string             `json:"dept_id" validate:"required"`
	AcademicYear string             `json:"academic_year" validate:"required"`
	DegreeLevel  models.DegreeLevel `json:"degree_level" validate:"required"`
	RecordType   models.RecordType  `json:"record_type" validate:"required"`
	SubmittedBy  string             `json:"submitted_by" validate:"required"`
	HODName      string             `json:"hod_name"`
}

// LockStatusResponse answers the lock-status query.
type LockStatusResponse struct {
	DepartmentID string             `json:"dept_id"`
	AcademicYear string             `json:"academic_year"`
	DegreeLevel  models.DegreeLevel `json:"degree_level"`
	RecordType   models.RecordType  `json:"record_type"`
	Locked       bool               `json:"locked"`
}

// DeclarationService runs the Open -> Declared+Locked state machine.
// The transition is monotonic for department self-service; only admin
// overrides may reopen a scope.
type DeclarationService struct {
	declarations declarationStore
	completion   completionChecker
	departments  departmentReader
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewDeclarationService constructs DeclarationService.
func NewDeclarationService(declarations declarationStore, completion completionChecker, departments departmentReader, validate *validator.Validate, logger *zap.Logger) *DeclarationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeclarationService{declarations: declarations, completion: completion, departments: departments, validator: validate, logger: logger}
}

// File creates the declaration and locks the scope. Completeness is
// pre-checked here for a friendly error listing the missing slots, then
// re-validated inside the filing transaction by the repository.
func (s *DeclarationService) File(ctx context.Context, req FileDeclarationRequest) (*models.Declaration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid declaration payload")
	}
	if !req.DegreeLevel.Valid() || !req.RecordType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown degree level or record type")
	}

	department, err := s.departments.FindDepartment(ctx, req.DepartmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	if !department.Offers(req.DegreeLevel) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("department does not offer %s", req.DegreeLevel))
	}

	hodName := strings.TrimSpace(req.HODName)
	if hodName == "" {
		hodName = strings.TrimSpace(department.HODName)
	}
	if hodName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hod name could not be resolved")
	}

	missing, err := s.completion.MissingSlots(ctx, req.DepartmentID, req.AcademicYear, req.DegreeLevel, req.RecordType)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, slot := range missing {
			names[i] = string(slot)
		}
		return nil, appErrors.Clone(appErrors.ErrIncompleteSubmission,
			fmt.Sprintf("submission incomplete for: %s", strings.Join(names, ", ")))
	}

	requiredCells, err := s.completion.RequiredCellCount(ctx)
	if err != nil {
		return nil, err
	}

	decl := &models.Declaration{
		DepartmentID: req.DepartmentID,
		AcademicYear: req.AcademicYear,
		DegreeLevel:  req.DegreeLevel,
		RecordType:   req.RecordType,
		SubmittedBy:  req.SubmittedBy,
		HODName:      hodName,
	}
	if err := s.declarations.File(ctx, decl, requiredCells); err != nil {
		appErr := appErrors.FromError(err)
		switch appErr.Code {
		case appErrors.ErrIncompleteSubmission.Code, appErrors.ErrConflict.Code:
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to file declaration")
	}

	s.logger.Info("declaration filed",
		zap.String("department_id", decl.DepartmentID),
		zap.String("academic_year", decl.AcademicYear),
		zap.String("degree_level", string(decl.DegreeLevel)),
		zap.String("record_type", string(decl.RecordType)))
	return decl, nil
}

// IsLocked answers the lock-status query used to gate writes and edit
// affordances.
func (s *DeclarationService) IsLocked(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (*LockStatusResponse, error) {
	locked, err := s.declarations.IsLocked(ctx, departmentID, academicYear, level, recordType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lock status")
	}
	return &LockStatusResponse{
		DepartmentID: departmentID,
		AcademicYear: academicYear,
		DegreeLevel:  level,
		RecordType:   recordType,
		Locked:       locked,
	}, nil
}

// Find returns the declaration for a scope; a missing row maps to
// NOT_FOUND since "not yet declared" is visible through IsLocked.
func (s *DeclarationService) Find(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (*models.Declaration, error) {
	decl, err := s.declarations.Find(ctx, departmentID, academicYear, level, recordType)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "declaration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load declaration")
	}
	return decl, nil
}
