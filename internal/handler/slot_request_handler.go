package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/service"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

type slotRequestService interface {
	List(ctx context.Context, teacherID string, status models.SlotRequestStatus) ([]models.SlotRequest, error)
	Get(ctx context.Context, teacherID, id string) (*models.SlotRequest, error)
	Create(ctx context.Context, teacherID string, req service.CreateSlotRequestRequest) (*models.SlotRequest, error)
	Accept(ctx context.Context, teacherID, id string, slotIndex int) (*service.AcceptSlotRequestResult, error)
	Reject(ctx context.Context, teacherID, id string) (*models.SlotRequest, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// acceptSlotRequestPayload selects which proposed window to book.
type acceptSlotRequestPayload struct {
	SlotIndex int `json:"slot_index" validate:"min=0"`
}

// SlotRequestHandler exposes incoming slot request endpoints.
type SlotRequestHandler struct {
	service slotRequestService
}

// NewSlotRequestHandler constructs the handler.
func NewSlotRequestHandler(service slotRequestService) *SlotRequestHandler {
	return &SlotRequestHandler{service: service}
}

// List godoc
// @Summary List the caller's slot requests
// @Tags SlotRequests
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slot-requests [get]
func (h *SlotRequestHandler) List(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	requests, err := h.service.List(c.Request.Context(), teacherID, models.SlotRequestStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get one slot request
// @Tags SlotRequests
// @Produce json
// @Param id path string true "Slot request ID"
// @Success 200 {object} response.Envelope
// @Router /slot-requests/{id} [get]
func (h *SlotRequestHandler) Get(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	request, err := h.service.Get(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Create godoc
// @Summary Register an incoming slot request
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateSlotRequestRequest true "Requested windows"
// @Success 201 {object} response.Envelope
// @Router /slot-requests [post]
func (h *SlotRequestHandler) Create(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.CreateSlotRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid slot request payload"))
		return
	}
	request, err := h.service.Create(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Accept godoc
// @Summary Book one of the request's proposed windows
// @Tags SlotRequests
// @Accept json
// @Produce json
// @Param id path string true "Slot request ID"
// @Param payload body acceptSlotRequestPayload true "Chosen window"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slot-requests/{id}/accept [post]
func (h *SlotRequestHandler) Accept(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var payload acceptSlotRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid accept payload"))
		return
	}
	result, err := h.service.Accept(c.Request.Context(), teacherID, c.Param("id"), payload.SlotIndex)
	if err != nil {
		if result != nil && result.Conflict != nil {
			response.JSON(c, http.StatusConflict, result.Conflict, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Reject godoc
// @Summary Close a slot request without booking
// @Tags SlotRequests
// @Produce json
// @Param id path string true "Slot request ID"
// @Success 200 {object} response.Envelope
// @Router /slot-requests/{id}/reject [post]
func (h *SlotRequestHandler) Reject(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	request, err := h.service.Reject(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Delete godoc
// @Summary Delete a slot request
// @Tags SlotRequests
// @Produce json
// @Param id path string true "Slot request ID"
// @Success 204 "No Content"
// @Router /slot-requests/{id} [delete]
func (h *SlotRequestHandler) Delete(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	if err := h.service.Delete(c.Request.Context(), teacherID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
