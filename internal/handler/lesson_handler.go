package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	"github.com/noah-isme/ais-api/internal/service"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
	"github.com/noah-isme/ais-api/pkg/response"
)

type lessonService interface {
	List(ctx context.Context, teacherID string, filter models.LessonFilter) ([]models.Lesson, int, error)
	Get(ctx context.Context, teacherID, id string) (*models.Lesson, error)
	Create(ctx context.Context, teacherID string, req service.CreateLessonRequest) (*models.Lesson, *dto.BookingConflict, error)
	Update(ctx context.Context, teacherID, id string, req service.UpdateLessonRequest) (*models.Lesson, *dto.BookingConflict, error)
	Delete(ctx context.Context, teacherID, id string) error
}

// LessonHandler exposes lesson management endpoints.
type LessonHandler struct {
	service lessonService
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(service lessonService) *LessonHandler {
	return &LessonHandler{service: service}
}

func parseTimeQuery(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &value
}

// List godoc
// @Summary List the caller's lessons
// @Tags Lessons
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}

	filter := models.LessonFilter{
		ClientID:  c.Query("client_id"),
		Status:    models.LessonStatus(c.Query("status")),
		From:      parseTimeQuery(c, "from"),
		To:        parseTimeQuery(c, "to"),
		Page:      parseIntQuery(c, "page", 1),
		PageSize:  parseIntQuery(c, "page_size", 20),
		SortOrder: c.Query("sort_order"),
	}

	lessons, total, err := h.service.List(c.Request.Context(), teacherID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get one lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	lesson, err := h.service.Get(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Book a lesson at an explicit time
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body service.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	lesson, conflict, err := h.service.Create(c.Request.Context(), teacherID, req)
	if conflict != nil {
		response.JSON(c, http.StatusConflict, conflict, nil)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Update godoc
// @Summary Update a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Lesson ID"
// @Param payload body service.UpdateLessonRequest true "Lesson changes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lessons/{id} [put]
func (h *LessonHandler) Update(c *gin.Context) {
	teacherID := requireTeacherID(c)
	if teacherID == "" {
		return
	}
	var req service.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid lesson payload"))
		return
	}
	lesson, conflict, err := h.service.Update(c.Request.Context(), teacherID, c.Param("id"), req)
	if conflict != nil {
		response.JSON(c, http.StatusConflict, conflict, nil)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Delete godoc
// @Summary Delete a lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 204 "No Content"
// @Router /lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
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
