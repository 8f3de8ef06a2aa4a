package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

// DashboardHandler exposes aggregation endpoints.
type DashboardHandler struct {
	aggregations *service.AggregationService
	defaultYear  string
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(aggregations *service.AggregationService, defaultYear string) *DashboardHandler {
	return &DashboardHandler{aggregations: aggregations, defaultYear: defaultYear}
}

// GenderTotals godoc
// @Summary Institution-wide gender totals
// @Tags Dashboard
// @Produce json
// @Param academic_year query string false "Academic year"
// @Param degree_level query string false "Degree level"
// @Param dept_id query string false "Department"
// @Param record_type query string false "Record type"
// @Success 200 {object} response.Envelope
// @Router /dashboard/gender-totals [get]
func (h *DashboardHandler) GenderTotals(c *gin.Context) {
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}
	filter := models.TotalsFilter{
		AcademicYear: academicYear,
		DegreeLevel:  models.DegreeLevel(c.Query("degree_level")),
		DepartmentID: c.Query("dept_id"),
		RecordType:   models.RecordType(c.Query("record_type")),
	}

	totals, cached, err := h.aggregations.GenderTotals(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"cache": "miss"}
	if cached {
		meta["cache"] = "hit"
	}
	response.JSON(c, http.StatusOK, totals, meta)
}

// DepartmentSummary godoc
// @Summary Per-department summary grouped by year slot
// @Tags Dashboard
// @Produce json
// @Param id path string true "Department ID"
// @Param academic_year query string false "Academic year"
// @Param degree_level query string false "Degree level"
// @Param record_type query string false "Record type"
// @Param group_by query string false "Extra axes: category,subcategory"
// @Success 200 {object} response.Envelope
// @Router /dashboard/departments/{id}/summary [get]
func (h *DashboardHandler) DepartmentSummary(c *gin.Context) {
	departmentID, ok := resolveDepartment(c, c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "department scope mismatch"))
		return
	}

	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}
	filter := models.TotalsFilter{
		AcademicYear: academicYear,
		DegreeLevel:  models.DegreeLevel(c.Query("degree_level")),
		DepartmentID: departmentID,
		RecordType:   models.RecordType(c.Query("record_type")),
	}

	var groupBy models.SummaryGroupBy
	for _, axis := range strings.Split(c.Query("group_by"), ",") {
		switch strings.TrimSpace(axis) {
		case "category":
			groupBy.Category = true
		case "subcategory":
			groupBy.Subcategory = true
		}
	}

	rows, err := h.aggregations.DepartmentSummary(c.Request.Context(), filter, groupBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	totals := h.aggregations.MergeTotals(rows)
	response.JSON(c, http.StatusOK, gin.H{"rows": rows, "totals": totals}, nil)
}
