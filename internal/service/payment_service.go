package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, teacherID string, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Summarize(ctx context.Context, teacherID string, filter models.PaymentFilter) (*models.PaymentSummary, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

// CreatePaymentRequest captures payload to record a payment.
type CreatePaymentRequest struct {
	ClientID string     `json:"client_id" validate:"required"`
	LessonID *string    `json:"lesson_id"`
	Amount   float64    `json:"amount" validate:"required,gt=0"`
	Method   string     `json:"method" validate:"required"`
	PaidAt   *time.Time `json:"paid_at"`
	Notes    *string    `json:"notes"`
}

// UpdatePaymentRequest captures a partial payment update.
type UpdatePaymentRequest struct {
	Amount *float64   `json:"amount" validate:"omitempty,gt=0"`
	Method *string    `json:"method" validate:"omitempty,min=1"`
	PaidAt *time.Time `json:"paid_at"`
	Notes  *string    `json:"notes"`
}

// PaymentService handles payment bookkeeping for a tutor.
type PaymentService struct {
	repo      paymentRepository
	clients   clientReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService builds the service.
func NewPaymentService(repo paymentRepository, clients clientReader, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, clients: clients, validator: validate, logger: logger}
}

// List returns the tutor's payments.
func (s *PaymentService) List(ctx context.Context, teacherID string, filter models.PaymentFilter) ([]models.Payment, int, error) {
	payments, total, err := s.repo.List(ctx, teacherID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, total, nil
}

// Summary aggregates payment totals over the filtered period.
func (s *PaymentService) Summary(ctx context.Context, teacherID string, filter models.PaymentFilter) (*models.PaymentSummary, error) {
	summary, err := s.repo.Summarize(ctx, teacherID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarize payments")
	}
	return summary, nil
}

// Get returns one payment owned by the tutor.
func (s *PaymentService) Get(ctx context.Context, teacherID, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
	}
	return payment, nil
}

// Create records a payment from one of the tutor's clients.
func (s *PaymentService) Create(ctx context.Context, teacherID string, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
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

	payment := &models.Payment{
		TeacherID: teacherID,
		ClientID:  req.ClientID,
		LessonID:  req.LessonID,
		Amount:    req.Amount,
		Method:    req.Method,
		Notes:     req.Notes,
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	return payment, nil
}

// Update applies a partial change to a payment.
func (s *PaymentService) Update(ctx context.Context, teacherID, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	payment, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		payment.Amount = *req.Amount
	}
	if req.Method != nil {
		payment.Method = *req.Method
	}
	if req.PaidAt != nil {
		payment.PaidAt = *req.PaidAt
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update payment")
	}
	return payment, nil
}

// Delete removes a payment owned by the tutor.
func (s *PaymentService) Delete(ctx context.Context, teacherID, id string) error {
	if _, err := s.Get(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	return nil
}
