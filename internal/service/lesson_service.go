package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, teacherID string, filter models.LessonFilter) ([]models.Lesson, int, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	ListPlannedForUpdate(ctx context.Context, tx *sqlx.Tx, teacherID string) ([]models.Lesson, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type slotBooker interface {
	CreateFromSlot(ctx context.Context, teacherID string, req dto.SelectSlotRequest) (*models.Lesson, *dto.BookingConflict, error)
}

// CreateLessonRequest captures payload to book a lesson directly.
type CreateLessonRequest struct {
	ClientID    string    `json:"client_id" validate:"required"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	DurationMin int       `json:"duration_min" validate:"required,min=1"`
	Type        string    `json:"type"`
	Notes       *string   `json:"notes"`
}

// UpdateLessonRequest captures a partial lesson update.
type UpdateLessonRequest struct {
	StartTime   *time.Time           `json:"start_time"`
	DurationMin *int                 `json:"duration_min" validate:"omitempty,min=1"`
	Status      *models.LessonStatus `json:"status" validate:"omitempty,oneof=PLANNED DONE CANCELLED"`
	Type        *string              `json:"type"`
	Notes       *string              `json:"notes"`
}

// LessonService handles lesson management. Direct creation funnels through
// the booking workflow so the no-overlap invariant holds for every entry
// point.
type LessonService struct {
	repo      lessonRepository
	booking   slotBooker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService builds the service.
func NewLessonService(repo lessonRepository, booking slotBooker, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, booking: booking, validator: validate, logger: logger}
}

// List returns the tutor's lessons.
func (s *LessonService) List(ctx context.Context, teacherID string, filter models.LessonFilter) ([]models.Lesson, int, error) {
	lessons, total, err := s.repo.List(ctx, teacherID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, total, nil
}

// Get returns one lesson owned by the tutor.
func (s *LessonService) Get(ctx context.Context, teacherID, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	if lesson.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return lesson, nil
}

// Create books a lesson at an explicit time through the conflict-checked
// booking workflow.
func (s *LessonService) Create(ctx context.Context, teacherID string, req CreateLessonRequest) (*models.Lesson, *dto.BookingConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	return s.booking.CreateFromSlot(ctx, teacherID, dto.SelectSlotRequest{
		ClientID: req.ClientID,
		Slot: dto.CandidateSlot{
			From: req.StartTime,
			To:   req.StartTime.Add(time.Duration(req.DurationMin) * time.Minute),
		},
		DurationMin: req.DurationMin,
		Type:        req.Type,
		Notes:       req.Notes,
	})
}

// Update applies a partial change. Moving a PLANNED lesson re-checks overlap
// against the tutor's other planned lessons.
func (s *LessonService) Update(ctx context.Context, teacherID, id string, req UpdateLessonRequest) (*models.Lesson, *dto.BookingConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}

	lesson, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, nil, err
	}

	timeChanged := false
	if req.StartTime != nil && !req.StartTime.Equal(lesson.StartTime) {
		lesson.StartTime = *req.StartTime
		timeChanged = true
	}
	if req.DurationMin != nil && *req.DurationMin != lesson.DurationMin {
		lesson.DurationMin = *req.DurationMin
		timeChanged = true
	}
	if req.Status != nil {
		if *req.Status == models.LessonStatusPlanned && lesson.Status != models.LessonStatusPlanned {
			timeChanged = true
		}
		lesson.Status = *req.Status
	}
	if req.Type != nil {
		lesson.Type = *req.Type
	}
	if req.Notes != nil {
		lesson.Notes = req.Notes
	}

	if !timeChanged || lesson.Status != models.LessonStatusPlanned {
		if err := s.repo.Update(ctx, lesson); err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
		}
		return lesson, nil, nil
	}

	// A moved lesson re-checks overlap and writes under the same row lock the
	// booking path takes, so a concurrent booking cannot slip in between the
	// check and the write.
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start lesson update")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	planned, err := s.repo.ListPlannedForUpdate(ctx, tx, teacherID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock planned lessons")
	}
	others := planned[:0:0]
	for _, other := range planned {
		if other.ID != lesson.ID {
			others = append(others, other)
		}
	}
	if conflicts := findLessonConflicts(lesson.StartTime, lesson.EndTime(), others); len(conflicts) > 0 {
		payload := conflictPayload(conflicts[0])
		err = appErrors.Clone(appErrors.ErrConflict, "time conflict")
		return nil, payload, err
	}

	if err = s.repo.UpdateWithTx(ctx, tx, lesson); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	if err = tx.Commit(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lesson update")
	}
	return lesson, nil, nil
}

// Delete removes a lesson owned by the tutor.
func (s *LessonService) Delete(ctx context.Context, teacherID, id string) error {
	if _, err := s.Get(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
	}
	return nil
}
