package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
)

type fakeAdminDeclarationStore struct {
	declarations []models.Declaration
	lockCalls    map[string]bool
	deleted      []string
}

func (f *fakeAdminDeclarationStore) List(ctx context.Context, filter models.DeclarationFilter) ([]models.Declaration, error) {
	return f.declarations, nil
}

func (f *fakeAdminDeclarationStore) FindByID(ctx context.Context, id string) (*models.Declaration, error) {
	for i := range f.declarations {
		if f.declarations[i].ID == id {
			return &f.declarations[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdminDeclarationStore) SetLock(ctx context.Context, id string, locked bool) error {
	if f.lockCalls == nil {
		f.lockCalls = make(map[string]bool)
	}
	f.lockCalls[id] = locked
	return nil
}

func (f *fakeAdminDeclarationStore) DeleteWithRecords(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAdminRecordReader struct {
	groups []models.DeclarationGroup
	counts map[string][]models.SlotCellCount
}

func (f *fakeAdminRecordReader) DepartmentsWithRecords(ctx context.Context, filter models.CountRecordFilter) ([]models.DeclarationGroup, error) {
	return f.groups, nil
}

func (f *fakeAdminRecordReader) SlotCellCounts(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotCellCount, error) {
	return f.counts[departmentID+":"+string(recordType)], nil
}

type fakeDepartmentLister struct {
	departments []models.Department
}

func (f *fakeDepartmentLister) Departments(ctx context.Context) ([]models.Department, error) {
	return f.departments, nil
}

func tenDepartments() *fakeDepartmentLister {
	lister := &fakeDepartmentLister{}
	for i := 1; i <= 10; i++ {
		lister.departments = append(lister.departments, models.Department{
			ID:           fmt.Sprintf("dept-%d", i),
			Name:         fmt.Sprintf("Department %d", i),
			OffersUG:     true,
			Active:       true,
			DisplayOrder: i,
		})
	}
	return lister
}

func completeEnrollmentCounts() []models.SlotCellCount {
	return []models.SlotCellCount{
		{YearSlot: models.YearSlotFirst, Cells: 36},
		{YearSlot: models.YearSlotSecond, Cells: 36},
		{YearSlot: models.YearSlotThird, Cells: 36},
	}
}

func newAdminService(store *fakeAdminDeclarationStore, records *fakeAdminRecordReader, inv *fakeInvalidators) *AdminService {
	picker := NewAggregationService(&fakeAggregationReader{}, disabledCache(), 0, nil)
	return NewAdminService(store, records, tenDepartments(), &fakeRefLoader{refs: testReferenceSet()}, picker, inv, inv, nil)
}

func TestAdminServiceListSubmissionsSyntheticRows(t *testing.T) {
	submitted := time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)
	records := &fakeAdminRecordReader{counts: map[string][]models.SlotCellCount{}}
	for i := 1; i <= 3; i++ {
		dept := fmt.Sprintf("dept-%d", i)
		records.groups = append(records.groups, models.DeclarationGroup{
			DepartmentID: dept,
			AcademicYear: "2025-26",
			DegreeLevel:  models.DegreeLevelUG,
			SubmittedAt:  submitted,
		})
		records.counts[dept+":ENROLLMENT"] = completeEnrollmentCounts()
	}

	svc := newAdminService(&fakeAdminDeclarationStore{}, records, &fakeInvalidators{})
	rows, err := svc.ListSubmissions(context.Background(), AdminListFilter{AcademicYear: "2025-26"})
	require.NoError(t, err)
	require.Len(t, rows, 10)

	notSubmitted := 0
	for _, row := range rows {
		if row.EnrollmentStatus == models.StatusNotSubmitted {
			notSubmitted++
		}
	}
	require.Equal(t, 7, notSubmitted)
	require.Equal(t, models.StatusCompleted, rows[0].EnrollmentStatus)
	require.Equal(t, models.StatusNotSubmitted, rows[0].ExaminationStatus)
	require.False(t, rows[0].Locked)
}

func TestAdminServiceListSubmissionsLockedWhenBothFiled(t *testing.T) {
	submitted := time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)
	records := &fakeAdminRecordReader{
		groups: []models.DeclarationGroup{{
			DepartmentID: "dept-1",
			AcademicYear: "2025-26",
			DegreeLevel:  models.DegreeLevelUG,
			SubmittedAt:  submitted,
		}},
		counts: map[string][]models.SlotCellCount{
			"dept-1:ENROLLMENT":  completeEnrollmentCounts(),
			"dept-1:EXAMINATION": nil,
		},
	}
	store := &fakeAdminDeclarationStore{declarations: []models.Declaration{
		{ID: "decl-e", DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG,
			RecordType: models.RecordTypeEnrollment, Locked: true, SubmittedAt: submitted},
		{ID: "decl-x", DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG,
			RecordType: models.RecordTypeExamination, Locked: true, SubmittedAt: submitted.Add(time.Hour)},
	}}

	svc := newAdminService(store, records, &fakeInvalidators{})
	rows, err := svc.ListSubmissions(context.Background(), AdminListFilter{AcademicYear: "2025-26"})
	require.NoError(t, err)

	require.True(t, rows[0].Locked)
	require.Equal(t, "decl-x", rows[0].DeclarationID)
	require.Equal(t, submitted.Add(time.Hour), *rows[0].SubmittedAt)
}

func TestAdminServiceListSubmissionsHalfFiledNotLocked(t *testing.T) {
	submitted := time.Date(2025, 10, 2, 10, 0, 0, 0, time.UTC)
	records := &fakeAdminRecordReader{
		groups: []models.DeclarationGroup{{
			DepartmentID: "dept-1",
			AcademicYear: "2025-26",
			DegreeLevel:  models.DegreeLevelUG,
			SubmittedAt:  submitted,
		}},
		counts: map[string][]models.SlotCellCount{"dept-1:ENROLLMENT": completeEnrollmentCounts()},
	}
	store := &fakeAdminDeclarationStore{declarations: []models.Declaration{
		{ID: "decl-e", DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG,
			RecordType: models.RecordTypeEnrollment, Locked: true, SubmittedAt: submitted},
	}}

	svc := newAdminService(store, records, &fakeInvalidators{})
	rows, err := svc.ListSubmissions(context.Background(), AdminListFilter{AcademicYear: "2025-26"})
	require.NoError(t, err)
	require.False(t, rows[0].Locked)
}

func TestAdminServiceSetLockInvalidatesStatuses(t *testing.T) {
	store := &fakeAdminDeclarationStore{declarations: []models.Declaration{
		{ID: "decl-1", DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG,
			RecordType: models.RecordTypeEnrollment, Locked: true},
	}}
	inv := &fakeInvalidators{}
	svc := newAdminService(store, &fakeAdminRecordReader{}, inv)

	decl, err := svc.SetLock(context.Background(), "decl-1", false)
	require.NoError(t, err)
	require.False(t, decl.Locked)
	require.False(t, store.lockCalls["decl-1"])
	require.Equal(t, 1, inv.statusCalls)
}

func TestAdminServiceSetLockNotFound(t *testing.T) {
	svc := newAdminService(&fakeAdminDeclarationStore{}, &fakeAdminRecordReader{}, &fakeInvalidators{})

	_, err := svc.SetLock(context.Background(), "decl-missing", true)
	require.Error(t, err)
	require.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestAdminServiceDelete(t *testing.T) {
	store := &fakeAdminDeclarationStore{declarations: []models.Declaration{
		{ID: "decl-1", DepartmentID: "dept-1", AcademicYear: "2025-26", DegreeLevel: models.DegreeLevelUG,
			RecordType: models.RecordTypeEnrollment, Locked: true},
	}}
	inv := &fakeInvalidators{}
	svc := newAdminService(store, &fakeAdminRecordReader{}, inv)

	require.NoError(t, svc.Delete(context.Background(), "decl-1"))
	require.Equal(t, []string{"decl-1"}, store.deleted)
	require.Equal(t, 1, inv.statusCalls)
	require.Equal(t, 1, inv.totalsCalls)
}
