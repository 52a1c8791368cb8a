package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type slotWeightServiceMock struct {
	updateCalled bool
	deleteCalled bool
	resp         *models.SlotWeight
	all          []models.SlotWeight
	err          error
}

func (m *slotWeightServiceMock) Get(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	return m.resp, m.err
}

func (m *slotWeightServiceMock) Update(ctx context.Context, teacherID string, req dto.UpdateSlotWeightsRequest) (*models.SlotWeight, error) {
	m.updateCalled = true
	return m.resp, m.err
}

func (m *slotWeightServiceMock) Delete(ctx context.Context, teacherID string) error {
	m.deleteCalled = true
	return m.err
}

func (m *slotWeightServiceMock) ListAll(ctx context.Context) ([]models.SlotWeight, error) {
	return m.all, m.err
}

func TestSlotWeightHandlerGet(t *testing.T) {
	mockSvc := &slotWeightServiceMock{resp: &models.SlotWeight{TeacherID: "teacher-1", WTime: 0.33}}
	handler := NewSlotWeightHandler(mockSvc)
	c, w := authedContext(t, http.MethodGet, "/slots/weights", nil)

	handler.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "w_time")
}

func TestSlotWeightHandlerGetRequiresIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSlotWeightHandler(&slotWeightServiceMock{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/slots/weights", nil)
	c.Request = req

	handler.Get(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSlotWeightHandlerUpdate(t *testing.T) {
	mockSvc := &slotWeightServiceMock{resp: &models.SlotWeight{TeacherID: "teacher-1"}}
	handler := NewSlotWeightHandler(mockSvc)
	body := []byte(`{"w_time":0.5,"working_days":[1,2,3]}`)
	c, w := authedContext(t, http.MethodPut, "/slots/weights", body)

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mockSvc.updateCalled)
}

func TestSlotWeightHandlerUpdateValidationError(t *testing.T) {
	mockSvc := &slotWeightServiceMock{err: appErrors.ErrInvalidWeights}
	handler := NewSlotWeightHandler(mockSvc)
	body := []byte(`{"min_gap_minutes":240,"max_gap_minutes":60}`)
	c, w := authedContext(t, http.MethodPut, "/slots/weights", body)

	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.True(t, mockSvc.updateCalled)
}

func TestSlotWeightHandlerDelete(t *testing.T) {
	mockSvc := &slotWeightServiceMock{}
	handler := NewSlotWeightHandler(mockSvc)
	c, w := authedContext(t, http.MethodDelete, "/slots/weights", nil)

	handler.Delete(c)
	c.Writer.WriteHeaderNow()

	require.Equal(t, http.StatusNoContent, w.Code)
	require.True(t, mockSvc.deleteCalled)
}

func TestSlotWeightHandlerDeleteNotFound(t *testing.T) {
	mockSvc := &slotWeightServiceMock{err: appErrors.ErrNotFound}
	handler := NewSlotWeightHandler(mockSvc)
	c, w := authedContext(t, http.MethodDelete, "/slots/weights", nil)

	handler.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSlotWeightHandlerListAll(t *testing.T) {
	mockSvc := &slotWeightServiceMock{all: []models.SlotWeight{{TeacherID: "teacher-1"}, {TeacherID: "teacher-2"}}}
	handler := NewSlotWeightHandler(mockSvc)
	c, w := authedContext(t, http.MethodGet, "/slots/weights/all", nil)

	handler.ListAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "teacher-2")
}
