package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type slotRequestRepository interface {
	List(ctx context.Context, teacherID string, status models.SlotRequestStatus) ([]models.SlotRequest, error)
	FindByID(ctx context.Context, id string) (*models.SlotRequest, error)
	Create(ctx context.Context, request *models.SlotRequest) error
	UpdateStatus(ctx context.Context, id string, status models.SlotRequestStatus) error
	Delete(ctx context.Context, id string) error
}

// CreateSlotRequestRequest captures the windows a client asked for.
type CreateSlotRequestRequest struct {
	ClientID      string                `json:"client_id" validate:"required"`
	ProposedSlots []models.ProposedSlot `json:"proposed_slots" validate:"required,min=1,dive"`
}

// AcceptSlotRequestResult reports the accept outcome.
type AcceptSlotRequestResult struct {
	Lesson   *models.Lesson       `json:"lesson"`
	Request  *models.SlotRequest  `json:"request"`
	Conflict *dto.BookingConflict `json:"conflict,omitempty"`
}

// SlotRequestService manages incoming client slot requests and turns an
// accepted request into a booked lesson.
type SlotRequestService struct {
	repo      slotRequestRepository
	clients   clientReader
	booking   slotBooker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotRequestService builds the service.
func NewSlotRequestService(repo slotRequestRepository, clients clientReader, booking slotBooker, validate *validator.Validate, logger *zap.Logger) *SlotRequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotRequestService{repo: repo, clients: clients, booking: booking, validator: validate, logger: logger}
}

// List returns the tutor's slot requests, optionally filtered by status.
func (s *SlotRequestService) List(ctx context.Context, teacherID string, status models.SlotRequestStatus) ([]models.SlotRequest, error) {
	requests, err := s.repo.List(ctx, teacherID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slot requests")
	}
	return requests, nil
}

// Get returns one slot request owned by the tutor.
func (s *SlotRequestService) Get(ctx context.Context, teacherID, id string) (*models.SlotRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot request")
	}
	if request.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "slot request not found")
	}
	return request, nil
}

// Create registers an incoming slot request.
func (s *SlotRequestService) Create(ctx context.Context, teacherID string, req CreateSlotRequestRequest) (*models.SlotRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot request payload")
	}
	for _, slot := range req.ProposedSlots {
		if slot.DurationMin < 1 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "proposed slot duration must be positive")
		}
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if client.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}

	request := &models.SlotRequest{
		TeacherID:  teacherID,
		ClientID:   req.ClientID,
		ClientName: client.FullName,
		Status:     models.SlotRequestStatusNew,
	}
	if err := request.SetProposedSlots(req.ProposedSlots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposed slots payload")
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slot request")
	}
	return request, nil
}

// Accept books the chosen proposed slot and marks the request processed. A
// commit-time conflict leaves the request open so the tutor can pick another
// slot or replace the blocking lesson.
func (s *SlotRequestService) Accept(ctx context.Context, teacherID, id string, slotIndex int) (*AcceptSlotRequestResult, error) {
	request, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if request.Status == models.SlotRequestStatusProcessed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot request already processed")
	}

	slots := request.DecodeProposedSlots()
	if slotIndex < 0 || slotIndex >= len(slots) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot index out of range")
	}
	chosen := slots[slotIndex]

	lesson, conflict, err := s.booking.CreateFromSlot(ctx, teacherID, dto.SelectSlotRequest{
		ClientID: request.ClientID,
		Slot: dto.CandidateSlot{
			From: chosen.Start,
			To:   chosen.Start.Add(time.Duration(chosen.DurationMin) * time.Minute),
		},
		DurationMin: chosen.DurationMin,
	})
	if err != nil {
		if conflict != nil {
			return &AcceptSlotRequestResult{Request: request, Conflict: conflict}, err
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, request.ID, models.SlotRequestStatusProcessed); err != nil {
		s.logger.Warn("lesson booked but slot request not marked processed",
			zap.String("request_id", request.ID), zap.Error(err))
	} else {
		request.Status = models.SlotRequestStatusProcessed
	}

	return &AcceptSlotRequestResult{Lesson: lesson, Request: request}, nil
}

// Reject marks a request processed without booking anything.
func (s *SlotRequestService) Reject(ctx context.Context, teacherID, id string) (*models.SlotRequest, error) {
	request, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if request.Status == models.SlotRequestStatusProcessed {
		return nil, appErrors.Clone(appErrors.ErrConflict, "slot request already processed")
	}
	if err := s.repo.UpdateStatus(ctx, request.ID, models.SlotRequestStatusProcessed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot request")
	}
	request.Status = models.SlotRequestStatusProcessed
	return request, nil
}

// Delete removes a slot request owned by the tutor.
func (s *SlotRequestService) Delete(ctx context.Context, teacherID, id string) error {
	if _, err := s.Get(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot request")
	}
	return nil
}
