package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

// DeclarationHandler exposes declaration filing and lock-status endpoints.
type DeclarationHandler struct {
	declarations *service.DeclarationService
	defaultYear  string
}

// NewDeclarationHandler constructs handler.
func NewDeclarationHandler(declarations *service.DeclarationService, defaultYear string) *DeclarationHandler {
	return &DeclarationHandler{declarations: declarations, defaultYear: defaultYear}
}

// File godoc
// @Summary File a declaration, locking the scope
// @Tags Declarations
// @Accept json
// @Produce json
// @Param payload body service.FileDeclarationRequest true "Declaration payload"
// @Success 201 {object} response.Envelope
// @Router /declarations [post]
func (h *DeclarationHandler) File(c *gin.Context) {
	var req service.FileDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	claims := claimsFromContext(c)
	if !claims.CanAccessDepartment(req.DepartmentID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "cannot declare for another department"))
		return
	}
	if req.SubmittedBy == "" {
		req.SubmittedBy = claims.UserID
	}
	if req.AcademicYear == "" {
		req.AcademicYear = h.defaultYear
	}

	decl, err := h.declarations.File(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, decl)
}

// Status godoc
// @Summary Lock status for a department scope
// @Tags Declarations
// @Produce json
// @Param dept_id query string false "Department (defaults to caller's)"
// @Param academic_year query string false "Academic year"
// @Param degree_level query string true "Degree level"
// @Param record_type query string true "Record type"
// @Success 200 {object} response.Envelope
// @Router /declarations/status [get]
func (h *DeclarationHandler) Status(c *gin.Context) {
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

	status, err := h.declarations.IsLocked(c.Request.Context(), departmentID, academicYear, level, recordType)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}
