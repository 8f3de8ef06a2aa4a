package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/middleware"
	"github.com/noah-isme/aishe-survey-api/internal/models"
	"github.com/noah-isme/aishe-survey-api/internal/service"
	appErrors "github.com/noah-isme/aishe-survey-api/pkg/errors"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

type adminService interface {
	ListSubmissions(ctx context.Context, filter service.AdminListFilter) ([]models.AdminSubmissionRow, error)
	SetLock(ctx context.Context, id string, locked bool) (*models.Declaration, error)
	Delete(ctx context.Context, id string) error
}

// AdminHandler exposes privileged oversight endpoints.
type AdminHandler struct {
	admin       adminService
	defaultYear string
}

// NewAdminHandler constructs handler.
func NewAdminHandler(admin adminService, defaultYear string) *AdminHandler {
	return &AdminHandler{admin: admin, defaultYear: defaultYear}
}

type lockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// ListSubmissions godoc
// @Summary Merged submission listing across all departments
// @Tags Admin
// @Produce json
// @Param academic_year query string false "Academic year"
// @Param degree_level query string false "Degree level"
// @Success 200 {object} response.Envelope
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	academicYear := c.Query("academic_year")
	if academicYear == "" {
		academicYear = h.defaultYear
	}
	filter := service.AdminListFilter{
		AcademicYear: academicYear,
		DegreeLevel:  models.DegreeLevel(c.Query("degree_level")),
	}
	rows, err := h.admin.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// SetLock godoc
// @Summary Lock or unlock a declaration
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Declaration ID"
// @Param payload body lockRequest true "Lock flag"
// @Success 200 {object} response.Envelope
// @Router /admin/submissions/{id}/lock [put]
func (h *AdminHandler) SetLock(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	decl, err := h.admin.SetLock(c.Request.Context(), c.Param("id"), *req.Locked)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !*req.Locked {
		middleware.SetAuditAction(c, models.AuditActionAdminUnlock)
	}
	response.JSON(c, http.StatusOK, decl, nil)
}

// Delete godoc
// @Summary Delete a declaration and its count records
// @Tags Admin
// @Produce json
// @Param id path string true "Declaration ID"
// @Success 204
// @Router /admin/submissions/{id} [delete]
func (h *AdminHandler) Delete(c *gin.Context) {
	if err := h.admin.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
