package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/repository"
	"github.com/noah-isme/aishe-survey-api/pkg/response"
)

// ReferenceHandler exposes the configured reference data that entry
// forms are built from.
type ReferenceHandler struct {
	refs *repository.ReferenceRepository
}

// NewReferenceHandler constructs handler.
func NewReferenceHandler(refs *repository.ReferenceRepository) *ReferenceHandler {
	return &ReferenceHandler{refs: refs}
}

// Departments godoc
// @Summary List active departments
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/departments [get]
func (h *ReferenceHandler) Departments(c *gin.Context) {
	departments, err := h.refs.Departments(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// Categories godoc
// @Summary List categories
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/categories [get]
func (h *ReferenceHandler) Categories(c *gin.Context) {
	categories, err := h.refs.Categories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, categories, nil)
}

// Subcategories godoc
// @Summary List subcategories
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/subcategories [get]
func (h *ReferenceHandler) Subcategories(c *gin.Context) {
	subcategories, err := h.refs.Subcategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subcategories, nil)
}

// Genders godoc
// @Summary List gender options
// @Tags Reference
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reference/genders [get]
func (h *ReferenceHandler) Genders(c *gin.Context) {
	genders, err := h.refs.Genders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, genders, nil)
}
