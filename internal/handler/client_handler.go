package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/service"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

type clientService interface {
	List(ctx context.Context, teacherID string, filter models.ClientFilter) ([]models.Client, int, error)
	Get(ctx context.Context, teacherID, id string) (*models.Client, error)
	Create(ctx context.Context, teacherID string, req service.CreateClientRequest) (*models.Client, error)
	Update(ctx context.Context, teacherID, id string, req service.UpdateClientRequest) (*models.Client, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// ClientHandler exposes client management endpoints.
type ClientHandler struct {
	service clientService
}

// NewClientHandler constructs the handler.
func NewClientHandler(service clientService) *ClientHandler {
	return &ClientHandler{service: service}
}

func parseBoolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &value
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// List godoc
// @Summary List the caller's clients
// @Tags Clients
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}

	filter := models.ClientFilter{
		Search:    c.Query("search"),
		VIP:       parseBoolQuery(c, "vip"),
		Active:    parseBoolQuery(c, "active"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 20),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	clients, total, err := h.service.List(c.Request.Context(), teacherID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clients, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	client, err := h.service.Get(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Create godoc
// @Summary Register a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body service.CreateClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid client payload"))
		return
	}
	client, err := h.service.Create(c.Request.Context(), teacherID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

// Update godoc
// @Summary Update a client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.UpdateClientRequest true "Client changes"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid client payload"))
		return
	}
	client, err := h.service.Update(c.Request.Context(), teacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, client, nil)
}

// Delete godoc
// @Summary Delete a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 204 "No Content"
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
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
