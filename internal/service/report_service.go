package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/export"
)

type summaryReader interface {
	DepartmentSummary(ctx context.Context, filter models.TotalsFilter, groupBy models.SummaryGroupBy) ([]models.SummaryRow, error)
}

// ReportRow is one line of the flat survey export: summary figures plus
// the resolved department name. Enrollment rows carry an empty result
// type; examination rows carry one row per result type pass.
type ReportRow struct {
	models.SummaryRow
	DepartmentName string `json:"department_name"`
}

// ReportService renders the institution-wide survey export. It reads
// through the same aggregation queries as the dashboard so figures can
// never diverge between the two surfaces.
type ReportService struct {
	summaries   summaryReader
	departments departmentLister
	csv         *export.CSVExporter
	logger      *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(summaries summaryReader, departments departmentLister, csv *export.CSVExporter, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{summaries: summaries, departments: departments, csv: csv, logger: logger}
}

// SurveyReport builds the flat export rows, fully split by category and
// subcategory, department names resolved.
func (s *ReportService) SurveyReport(ctx context.Context, filter models.TotalsFilter) ([]ReportRow, error) {
	departments, err := s.departments.Departments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	names := make(map[string]string, len(departments))
	for _, dept := range departments {
		names[dept.ID] = dept.Name
	}

	summaries, err := s.summaries.DepartmentSummary(ctx, filter, models.SummaryGroupBy{Category: true, Subcategory: true})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build survey report")
	}

	rows := make([]ReportRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, ReportRow{SummaryRow: summary, DepartmentName: names[summary.DepartmentID]})
	}
	return rows, nil
}

// surveyHeaders is the CSV column contract. Order and names are stable;
// downstream spreadsheets key on them.
var surveyHeaders = []string{
	"department_id",
	"department_name",
	"degree_level",
	"year",
	"category",
	"subcategory",
	"result_type",
	"male_count",
	"female_count",
	"transgender_count",
	"total",
}

// RenderCSV encodes report rows as CSV bytes.
func (s *ReportService) RenderCSV(rows []ReportRow) ([]byte, error) {
	dataset := export.Dataset{Headers: surveyHeaders, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"department_id":     row.DepartmentID,
			"department_name":   row.DepartmentName,
			"degree_level":      string(row.DegreeLevel),
			"year":              string(row.YearSlot),
			"category":          row.Category,
			"subcategory":       row.Subcategory,
			"result_type":       string(row.ResultType),
			"male_count":        strconv.Itoa(row.Male),
			"female_count":      strconv.Itoa(row.Female),
			"transgender_count": strconv.Itoa(row.Transgender),
			"total":             strconv.Itoa(row.Totals().Total()),
		})
	}
	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
	}
	s.logger.Info("survey report rendered", zap.Int("rows", len(rows)))
	return data, nil
}
