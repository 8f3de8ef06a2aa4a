package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/aishe-survey-api/internal/middleware"
	"github.com/noah-isme/aishe-survey-api/internal/models"
)

type fakeCompletionSrv struct {
	slots []models.SlotStatus
	err   error
}

func (f *fakeCompletionSrv) DegreeLevelStatus(context.Context, string, string, models.DegreeLevel, models.RecordType) ([]models.SlotStatus, error) {
	return f.slots, f.err
}

func statusRequest(t *testing.T, srv *fakeCompletionSrv) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(srv, "2024-25")

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/submissions/status?degree_level=UG&record_type=ENROLLMENT", nil)
	c.Set(middleware.ContextUserKey, departmentUser("dept-1"))

	handler.Status(c)
	return rec
}

func overallStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope responseEnvelope
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	status, _ := envelope.Data["status"].(string)
	return status
}

func TestSubmissionHandlerStatusNotSubmitted(t *testing.T) {
	srv := &fakeCompletionSrv{slots: []models.SlotStatus{
		{YearSlot: models.YearSlotFirst, Status: models.StatusNotSubmitted},
		{YearSlot: models.YearSlotSecond, Status: models.StatusNotSubmitted},
		{YearSlot: models.YearSlotThird, Status: models.StatusNotSubmitted},
	}}

	rec := statusRequest(t, srv)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(models.StatusNotSubmitted), overallStatus(t, rec))
}

func TestSubmissionHandlerStatusPartiallySubmitted(t *testing.T) {
	srv := &fakeCompletionSrv{slots: []models.SlotStatus{
		{YearSlot: models.YearSlotFirst, Status: models.StatusCompleted},
		{YearSlot: models.YearSlotSecond, Status: models.StatusNotSubmitted},
		{YearSlot: models.YearSlotThird, Status: models.StatusNotSubmitted},
	}}

	rec := statusRequest(t, srv)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(models.StatusIncomplete), overallStatus(t, rec))
}

func TestSubmissionHandlerStatusAllComplete(t *testing.T) {
	srv := &fakeCompletionSrv{slots: []models.SlotStatus{
		{YearSlot: models.YearSlotFirst, Status: models.StatusCompleted},
		{YearSlot: models.YearSlotSecond, Status: models.StatusCompleted},
		{YearSlot: models.YearSlotThird, Status: models.StatusCompleted},
	}}

	rec := statusRequest(t, srv)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(models.StatusCompleted), overallStatus(t, rec))
}

func TestSubmissionHandlerStatusMissingLevel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubmissionHandler(&fakeCompletionSrv{}, "2024-25")

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/submissions/status", nil)
	c.Set(middleware.ContextUserKey, departmentUser("dept-1"))

	handler.Status(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
