package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

type slotWeightService interface {
	Get(ctx context.Context, teacherID string) (*models.SlotWeight, error)
	Update(ctx context.Context, teacherID string, req dto.UpdateSlotWeightsRequest) (*models.SlotWeight, error)
	Delete(ctx context.Context, teacherID string) error
	ListAll(ctx context.Context) ([]models.SlotWeight, error)
}

// SlotWeightHandler exposes the ranking-configuration endpoints.
type SlotWeightHandler struct {
	service slotWeightService
}

// NewSlotWeightHandler constructs the handler.
func NewSlotWeightHandler(service slotWeightService) *SlotWeightHandler {
	return &SlotWeightHandler{service: service}
}

// Get godoc
// @Summary Get the caller's slot ranking configuration
// @Tags Weights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots/weights [get]
func (h *SlotWeightHandler) Get(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	weights, err := h.service.Get(c.Request.Context(), teacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Update godoc
// @Summary Update the caller's slot ranking configuration
// @Tags Weights
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSlotWeightsRequest true "Configuration changes"
// @Success 200 {object} response.Envelope
// @Router /slots/weights [put]
func (h *SlotWeightHandler) Update(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req dto.UpdateSlotWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot weights payload"))
		return
	}
	weights, err := h.service.Update(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Delete godoc
// @Summary Reset the caller's slot ranking configuration to defaults
// @Tags Weights
// @Produce json
// @Success 204 "No Content"
// @Router /slots/weights [delete]
func (h *SlotWeightHandler) Delete(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), teacherID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAll godoc
// @Summary List every stored ranking configuration
// @Tags Weights
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots/weights/all [get]
func (h *SlotWeightHandler) ListAll(c *gin.Context) {
	weights, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}
