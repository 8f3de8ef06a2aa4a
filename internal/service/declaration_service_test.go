package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type fakeDeclarationStore struct {
	filed   *models.Declaration
	fileErr error
	locked  bool
}

func (f *fakeDeclarationStore) Find(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (*models.Declaration, error) {
	if f.filed == nil {
		return nil, sql.ErrNoRows
	}
	return f.filed, nil
}

func (f *fakeDeclarationStore) IsLocked(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) (bool, error) {
	return f.locked, nil
}

func (f *fakeDeclarationStore) File(ctx context.Context, decl *models.Declaration, requiredCells int) error {
	if f.fileErr != nil {
		return f.fileErr
	}
	decl.ID = "decl-1"
	decl.Locked = true
	f.filed = decl
	return nil
}

type fakeCompletionChecker struct {
	missing []models.YearSlot
}

func (f *fakeCompletionChecker) MissingSlots(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.YearSlot, error) {
	return f.missing, nil
}

func (f *fakeCompletionChecker) RequiredCellCount(ctx context.Context) (int, error) {
	return 36, nil
}

type fakeDepartmentReader struct {
	departments map[string]*models.Department
}

func (f *fakeDepartmentReader) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	if dept, ok := f.departments[id]; ok {
		return dept, nil
	}
	return nil, sql.ErrNoRows
}

func physicsDepartment() *fakeDepartmentReader {
	return &fakeDepartmentReader{departments: map[string]*models.Department{
		"dept-1": {ID: "dept-1", Name: "Physics", HODName: "Dr. Rao", OffersUG: true, OffersPG: true, Active: true},
	}}
}

func fileRequest() FileDeclarationRequest {
	return FileDeclarationRequest{
		DepartmentID: "dept-1",
		AcademicYear: "2025-26",
		DegreeLevel:  models.DegreeLevelUG,
		RecordType:   models.RecordTypeEnrollment,
		SubmittedBy:  "user-1",
	}
}

func TestDeclarationServiceFile(t *testing.T) {
	store := &fakeDeclarationStore{}
	svc := NewDeclarationService(store, &fakeCompletionChecker{}, physicsDepartment(), nil, nil)

	decl, err := svc.File(context.Background(), fileRequest())
	require.NoError(t, err)
	require.True(t, decl.Locked)
	// HOD name falls back to the department's registered head
	require.Equal(t, "Dr. Rao", decl.HODName)
}

func TestDeclarationServiceFileExplicitHODWins(t *testing.T) {
	store := &fakeDeclarationStore{}
	svc := NewDeclarationService(store, &fakeCompletionChecker{}, physicsDepartment(), nil, nil)

	req := fileRequest()
	req.HODName = "Prof. Menon"
	decl, err := svc.File(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "Prof. Menon", decl.HODName)
}

func TestDeclarationServiceFileIncomplete(t *testing.T) {
	store := &fakeDeclarationStore{}
	completion := &fakeCompletionChecker{missing: []models.YearSlot{models.YearSlotSecond, models.YearSlotThird}}
	svc := NewDeclarationService(store, completion, physicsDepartment(), nil, nil)

	_, err := svc.File(context.Background(), fileRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrIncompleteSubmission))
	require.Contains(t, err.Error(), "II Year")
	require.Nil(t, store.filed)
}

func TestDeclarationServiceFileConflictPassthrough(t *testing.T) {
	store := &fakeDeclarationStore{fileErr: appErrors.Clone(appErrors.ErrConflict, "declaration already filed")}
	svc := NewDeclarationService(store, &fakeCompletionChecker{}, physicsDepartment(), nil, nil)

	_, err := svc.File(context.Background(), fileRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrConflict))
}

func TestDeclarationServiceFileLevelNotOffered(t *testing.T) {
	departments := &fakeDepartmentReader{departments: map[string]*models.Department{
		"dept-1": {ID: "dept-1", Name: "Physics", HODName: "Dr. Rao", OffersUG: true, OffersPG: false, Active: true},
	}}
	svc := NewDeclarationService(&fakeDeclarationStore{}, &fakeCompletionChecker{}, departments, nil, nil)

	req := fileRequest()
	req.DegreeLevel = models.DegreeLevelPG
	_, err := svc.File(context.Background(), req)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestDeclarationServiceFileUnknownDepartment(t *testing.T) {
	svc := NewDeclarationService(&fakeDeclarationStore{}, &fakeCompletionChecker{}, &fakeDepartmentReader{}, nil, nil)

	_, err := svc.File(context.Background(), fileRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestDeclarationServiceFileNoResolvableHOD(t *testing.T) {
	departments := &fakeDepartmentReader{departments: map[string]*models.Department{
		"dept-1": {ID: "dept-1", Name: "Physics", OffersUG: true, Active: true},
	}}
	svc := NewDeclarationService(&fakeDeclarationStore{}, &fakeCompletionChecker{}, departments, nil, nil)

	_, err := svc.File(context.Background(), fileRequest())
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrValidation))
	require.Contains(t, err.Error(), "hod name")
}

func TestDeclarationServiceIsLocked(t *testing.T) {
	svc := NewDeclarationService(&fakeDeclarationStore{locked: true}, &fakeCompletionChecker{}, physicsDepartment(), nil, nil)

	status, err := svc.IsLocked(context.Background(), "dept-1", "2025-26", models.DegreeLevelUG, models.RecordTypeEnrollment)
	require.NoError(t, err)
	require.True(t, status.Locked)
	require.Equal(t, "dept-1", status.DepartmentID)
}

func TestDeclarationServiceFindNotFiled(t *testing.T) {
	svc := NewDeclarationService(&fakeDeclarationStore{}, &fakeCompletionChecker{}, physicsDepartment(), nil, nil)

	_, err := svc.Find(context.Background(), "dept-1", "2025-26", models.DegreeLevelUG, models.RecordTypeEnrollment)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}
