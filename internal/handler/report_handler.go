package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

// ReportHandler exposes the flat survey export.
type ReportHandler struct {
	reports     *service.ReportService
	defaultYear string
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, defaultYear string) *ReportHandler {
	return &ReportHandler{reports: reports, defaultYear: defaultYear}
}

// Survey godoc
// @Summary Institution-wide survey export
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Param academic_year query string false "Academic year"
// @Param degree_level query string false "Degree level"
// @Param record_type query string false "Record type"
// @Param format query string false "json (default) or csv"
// @Success 200 {object} response.Envelope
// @Router /reports/survey [get]
func (h *ReportHandler) Survey(c *gin.Context) {
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}
	filter := models.TotalsFilter{
		AcademicYear: academicYear,
		DegreeLevel:  models.DegreeLevel(c.Query("degree_level")),
		RecordType:   models.RecordType(c.Query("record_type")),
	}

	rows, err := h.reports.SurveyReport(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "csv":
		data, err := h.reports.RenderCSV(rows)
		if err != nil {
			response.Error(c, err)
			return
		}
		filename := fmt.Sprintf("survey-%s-%s.csv", academicYear, time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		response.JSON(c, http.StatusOK, rows, nil)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported format"))
	}
}
