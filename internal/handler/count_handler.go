package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

type countService interface {
	Submit(ctx context.Context, req service.SubmitCountsRequest) error
	List(ctx context.Context, filter models.CountRecordFilter) ([]models.CountRecord, error)
}

// CountHandler exposes count record submission and listing endpoints.
type CountHandler struct {
	counts      countService
	defaultYear string
}

// NewCountHandler constructs handler.
func NewCountHandler(counts countService, defaultYear string) *CountHandler {
	return &CountHandler{counts: counts, defaultYear: defaultYear}
}

// Submit godoc
// @Summary Submit or update a batch of count records
// @Tags Counts
// @Accept json
// @Produce json
// @Param payload body service.SubmitCountsRequest true "Count batch"
// @Success 200 {object} response.Envelope
// @Router /counts [post]
func (h *CountHandler) Submit(c *gin.Context) {
	var req service.SubmitCountsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	for _, rec := range req.Records {
		if !claims.CanAccessDepartment(rec.DepartmentID) {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot submit for another department"))
			return
		}
	}

	if err := h.counts.Submit(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "saved", "records": len(req.Records)}, nil)
}

// List godoc
// @Summary List submitted count records
// @Tags Counts
// @Produce json
// @Param dept_id query string false "Department"
// @Param academic_year query string false "Academic year"
// @Param degree_level query string false "Degree level"
// @Param year query string false "Year slot"
// @Param record_type query string false "Record type"
// @Param result_type query string false "Result type"
// @Success 200 {object} response.Envelope
// @Router /counts [get]
func (h *CountHandler) List(c *gin.Context) {
	departmentID, ok := resolveDepartment(c, c.Query("dept_id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "department scope mismatch"))
		return
	}
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}

	filter := models.CountRecordFilter{
		AcademicYear: academicYear,
		DepartmentID: departmentID,
		DegreeLevel:  models.DegreeLevel(c.Query("degree_level")),
		YearSlot:     models.YearSlot(c.Query("year")),
		RecordType:   models.RecordType(c.Query("record_type")),
		ResultType:   models.ResultType(c.Query("result_type")),
	}
	records, err := h.counts.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
