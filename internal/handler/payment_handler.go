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

type paymentService interface {
	List(ctx context.Context, teacherID string, filter models.PaymentFilter) ([]models.Payment, int, error)
	Summary(ctx context.Context, teacherID string, filter models.PaymentFilter) (*models.PaymentSummary, error)
	Get(ctx context.Context, teacherID, id string) (*models.Payment, error)
	Create(ctx context.Context, teacherID string, req service.CreatePaymentRequest) (*models.Payment, error)
	Update(ctx context.Context, teacherID, id string, req service.UpdatePaymentRequest) (*models.Payment, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// PaymentHandler exposes payment bookkeeping endpoints.
type PaymentHandler struct {
	service paymentService
}

// NewPaymentHandler constructs the handler.
func NewPaymentHandler(service paymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func paymentFilterFromQuery(c *gin.Context) models.PaymentFilter {
	return models.PaymentFilter{
		ClientID: c.Query("client_id"),
		From:     parseTimeQuery(c, "from"),
		To:       parseTimeQuery(c, "to"),
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "page_size", 20),
	}
}

// List godoc
// @Summary List the caller's payments
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	filter := paymentFilterFromQuery(c)
	payments, total, err := h.service.List(c.Request.Context(), teacherID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Summary godoc
// @Summary Aggregate payment totals over a period
// @Tags Payments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	summary, err := h.service.Summary(c.Request.Context(), teacherID, paymentFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Get godoc
// @Summary Get one payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	payment, err := h.service.Get(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Create godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.service.Create(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Update godoc
// @Summary Update a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Payment changes"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	payment, err := h.service.Update(c.Request.Context(), teacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Delete godoc
// @Summary Delete a payment
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 204 "No Content"
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
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
