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

const defaultLessonDurationMin = 60

type bookingLessonRepo interface {
	BeginTx(ctx context.Context) (*sqlx.Tx, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListPlannedForUpdate(ctx context.Context, tx *sqlx.Tx, teacherID string) ([]models.Lesson, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error
	UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.LessonStatus) (int64, error)
}

// LessonBookingService turns ranked slots into booked lessons. Every mutation
// runs inside one transaction that locks the tutor's PLANNED lessons, so two
// concurrent bookings for the same tutor cannot both pass the conflict check.
type LessonBookingService struct {
	lessons   bookingLessonRepo
	clients   clientReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonBookingService builds the service.
func NewLessonBookingService(lessons bookingLessonRepo, clients clientReader, validate *validator.Validate, logger *zap.Logger) *LessonBookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonBookingService{
		lessons:   lessons,
		clients:   clients,
		validator: validate,
		logger:    logger,
	}
}

func (s *LessonBookingService) resolveClient(ctx context.Context, teacherID, clientID string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if client.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}
	return client, nil
}

func resolveDuration(slot dto.CandidateSlot, requested int) int {
	if requested > 0 {
		return requested
	}
	if window := int(slot.To.Sub(slot.From).Minutes()); window > 0 {
		return window
	}
	return defaultLessonDurationMin
}

func conflictPayload(lesson models.Lesson) *dto.BookingConflict {
	return &dto.BookingConflict{
		Message: "this time is already taken by another client",
		ConflictingLesson: dto.ConflictingLessonRef{
			ID:         lesson.ID,
			ClientName: lesson.ClientName,
			StartTime:  lesson.StartTime,
		},
		CanReplace: true,
	}
}

// CreateFromSlot books a lesson at the chosen slot. The conflict check is
// repeated at commit time under a row lock; if a conflicting lesson appeared
// since ranking, the booking is rejected and the conflict is returned so the
// caller can offer a replacement.
func (s *LessonBookingService) CreateFromSlot(ctx context.Context, teacherID string, req dto.SelectSlotRequest) (*models.Lesson, *dto.BookingConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if !req.Slot.From.Before(req.Slot.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "slot end must be after slot start")
	}

	client, err := s.resolveClient(ctx, teacherID, req.ClientID)
	if err != nil {
		return nil, nil, err
	}

	duration := resolveDuration(req.Slot, req.DurationMin)
	start := req.Slot.From
	end := start.Add(time.Duration(duration) * time.Minute)

	tx, err := s.lessons.BeginTx(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start booking")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	planned, err := s.lessons.ListPlannedForUpdate(ctx, tx, teacherID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock planned lessons")
	}

	if conflicts := findLessonConflicts(start, end, planned); len(conflicts) > 0 {
		payload := conflictPayload(conflicts[0])
		err = appErrors.Clone(appErrors.ErrConflict, "time conflict")
		return nil, payload, err
	}

	lesson := &models.Lesson{
		TeacherID:   teacherID,
		ClientID:    client.ID,
		ClientName:  client.FullName,
		StartTime:   start,
		DurationMin: duration,
		Status:      models.LessonStatusPlanned,
		Type:        req.Type,
		Notes:       req.Notes,
	}
	if lesson.Type == "" {
		lesson.Type = "individual"
	}

	if err = s.lessons.CreateWithTx(ctx, tx, lesson); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	if err = tx.Commit(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit booking")
	}

	s.logger.Info("lesson booked from slot",
		zap.String("teacher_id", teacherID),
		zap.String("lesson_id", lesson.ID),
		zap.Time("start_time", lesson.StartTime))
	return lesson, nil, nil
}

// ReplaceConflicting cancels the conflicting lesson and books the new slot in
// one transaction. If the cancel or the create fails, neither change is kept.
func (s *LessonBookingService) ReplaceConflicting(ctx context.Context, teacherID string, req dto.ReplaceSlotRequest) (*dto.ReplaceSlotResponse, *dto.BookingConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid replace payload")
	}
	if !req.Slot.From.Before(req.Slot.To) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "slot end must be after slot start")
	}

	existing, err := s.lessons.FindByID(ctx, req.ConflictingLessonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "conflicting lesson not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conflicting lesson")
	}
	if existing.TeacherID != teacherID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "conflicting lesson not found")
	}

	client, err := s.resolveClient(ctx, teacherID, req.ClientID)
	if err != nil {
		return nil, nil, err
	}

	duration := resolveDuration(req.Slot, req.DurationMin)
	start := req.Slot.From
	end := start.Add(time.Duration(duration) * time.Minute)

	tx, err := s.lessons.BeginTx(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start replacement")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	planned, err := s.lessons.ListPlannedForUpdate(ctx, tx, teacherID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock planned lessons")
	}

	// The lesson being replaced is allowed to overlap the new slot; any
	// other planned lesson is not.
	remaining := planned[:0:0]
	for _, lesson := range planned {
		if lesson.ID != existing.ID {
			remaining = append(remaining, lesson)
		}
	}
	if conflicts := findLessonConflicts(start, end, remaining); len(conflicts) > 0 {
		payload := conflictPayload(conflicts[0])
		err = appErrors.Clone(appErrors.ErrConflict, "time conflict")
		return nil, payload, err
	}

	affected, err := s.lessons.UpdateStatusWithTx(ctx, tx, existing.ID, models.LessonStatusCancelled)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel conflicting lesson")
	}
	if affected == 0 {
		err = appErrors.Clone(appErrors.ErrNotFound, "conflicting lesson not found")
		return nil, nil, err
	}

	lesson := &models.Lesson{
		TeacherID:   teacherID,
		ClientID:    client.ID,
		ClientName:  client.FullName,
		StartTime:   start,
		DurationMin: duration,
		Status:      models.LessonStatusPlanned,
		Type:        req.Type,
		Notes:       req.Notes,
	}
	if lesson.Type == "" {
		lesson.Type = "individual"
	}

	if err = s.lessons.CreateWithTx(ctx, tx, lesson); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create replacement lesson")
	}
	if err = tx.Commit(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit replacement")
	}

	s.logger.Info("conflicting lesson replaced",
		zap.String("teacher_id", teacherID),
		zap.String("cancelled_lesson_id", existing.ID),
		zap.String("lesson_id", lesson.ID))
	return &dto.ReplaceSlotResponse{
		CancelledLessonID: existing.ID,
		Lesson:            lesson,
	}, nil, nil
}
