package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/service"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

type slotRankingService interface {
	RankSlots(ctx context.Context, teacherID string, req dto.RankSlotsRequest) (*dto.RankSlotsResponse, error)
}

type lessonBookingService interface {
	CreateFromSlot(ctx context.Context, teacherID string, req dto.SelectSlotRequest) (*models.Lesson, *dto.BookingConflict, error)
	ReplaceConflicting(ctx context.Context, teacherID string, req dto.ReplaceSlotRequest) (*dto.ReplaceSlotResponse, *dto.BookingConflict, error)
}

// SlotRankingHandler exposes the ranking and booking endpoints.
type SlotRankingHandler struct {
	ranking slotRankingService
	booking lessonBookingService
	metrics *service.MetricsService
}

// NewSlotRankingHandler constructs the handler.
func NewSlotRankingHandler(ranking slotRankingService, booking lessonBookingService, metrics *service.MetricsService) *SlotRankingHandler {
	return &SlotRankingHandler{ranking: ranking, booking: booking, metrics: metrics}
}

// Rank godoc
// @Summary Rank proposed lesson slots for a client
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.RankSlotsRequest true "Candidate slots"
// @Success 200 {object} response.Envelope
// @Router /slots/rank [post]
func (h *SlotRankingHandler) Rank(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req dto.RankSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid ranking payload"))
		return
	}

	result, err := h.ranking.RankSlots(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	conflicts := 0
	for _, slot := range result.RankedSlots {
		if slot.HasConflict {
			conflicts++
		}
	}
	h.metrics.ObserveRanking(len(result.RankedSlots), conflicts)

	response.JSON(c, http.StatusOK, result, nil)
}

// Select godoc
// @Summary Book a lesson from a ranked slot
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.SelectSlotRequest true "Chosen slot"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots/select [post]
func (h *SlotRankingHandler) Select(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req dto.SelectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid booking payload"))
		return
	}

	lesson, conflict, err := h.booking.CreateFromSlot(c.Request.Context(), teacherID, req)
	if conflict != nil {
		h.metrics.ObserveBooking("create", "conflict")
		response.JSON(c, http.StatusConflict, conflict, nil)
		return
	}
	if err != nil {
		h.metrics.ObserveBooking("create", "error")
		response.Error(c, err)
		return
	}

	h.metrics.ObserveBooking("create", "success")
	response.Created(c, lesson)
}

// Replace godoc
// @Summary Replace a conflicting lesson with a new booking
// @Tags Slots
// @Accept json
// @Produce json
// @Param payload body dto.ReplaceSlotRequest true "Replacement payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /slots/replace [post]
func (h *SlotRankingHandler) Replace(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req dto.ReplaceSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid replace payload"))
		return
	}

	result, conflict, err := h.booking.ReplaceConflicting(c.Request.Context(), teacherID, req)
	if conflict != nil {
		h.metrics.ObserveBooking("replace", "conflict")
		response.JSON(c, http.StatusConflict, conflict, nil)
		return
	}
	if err != nil {
		h.metrics.ObserveBooking("replace", "error")
		response.Error(c, err)
		return
	}

	h.metrics.ObserveBooking("replace", "success")
	response.Created(c, result)
}
