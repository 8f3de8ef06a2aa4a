package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

type completionService interface {
	DegreeLevelStatus(ctx context.Context, departmentID, academicYear string, level models.DegreeLevel, recordType models.RecordType) ([]models.SlotStatus, error)
}

// SubmissionHandler exposes the derived completion status endpoints.
type SubmissionHandler struct {
	completion  completionService
	defaultYear string
}

// NewSubmissionHandler constructs handler.
func NewSubmissionHandler(completion completionService, defaultYear string) *SubmissionHandler {
	return &SubmissionHandler{completion: completion, defaultYear: defaultYear}
}

// Status godoc
// @Summary Per-slot completion status for a department scope
// @Tags Submissions
// @Produce json
// @Param dept_id query string false "Department (defaults to caller's)"
// @Param academic_year query string false "Academic year"
// @Param degree_level query string true "Degree level"
// @Param record_type query string true "Record type"
// @Success 200 {object} response.Envelope
// @Router /submissions/status [get]
func (h *SubmissionHandler) Status(c *gin.Context) {
	departmentID, ok := resolveDepartment(c, c.Query("dept_id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "department scope mismatch"))
		return
	}
	if departmentID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dept_id required"))
		return
	}

	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}
	level := models.DegreeLevel(c.Query("degree_level"))
	recordType := models.RecordType(c.Query("record_type"))
	if !level.Valid() || !recordType.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "degree_level and record_type required"))
		return
	}

	slots, err := h.completion.DegreeLevelStatus(c.Request.Context(), departmentID, academicYear, level, recordType)
	if err != nil {
		response.Error(c, err)
		return
	}

	overall := models.StatusCompleted
	submitted := false
	for _, slot := range slots {
		if slot.Status != models.StatusNotSubmitted {
			submitted = true
		}
		if !slot.Complete() {
			overall = models.StatusIncomplete
		}
	}
	if !submitted {
		overall = models.StatusNotSubmitted
	}

	response.JSON(c, http.StatusOK, gin.H{
		"dept_id":       departmentID,
		"academic_year": academicYear,
		"degree_level":  level,
		"record_type":   recordType,
		"status":        overall,
		"slots":         slots,
	}, nil)
}
