package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type clientRepository interface {
	List(ctx context.Context, teacherID string, filter models.ClientFilter) ([]models.Client, int, error)
	FindByID(ctx context.Context, id string) (*models.Client, error)
	ExistsByEmail(ctx context.Context, teacherID, email, excludeID string) (bool, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Deactivate(ctx context.Context, id string) error
}

// CreateClientRequest captures payload to register a client.
type CreateClientRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	VIP      bool    `json:"vip"`
	Notes    *string `json:"notes"`
}

// UpdateClientRequest captures a partial client update.
type UpdateClientRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	VIP      *bool   `json:"vip"`
	Active   *bool   `json:"active"`
	Notes    *string `json:"notes"`
}

// ClientService handles client management for a tutor.
type ClientService struct {
	repo      clientRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService builds the service.
func NewClientService(repo clientRepository, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, validator: validate, logger: logger}
}

// List returns the tutor's clients.
func (s *ClientService) List(ctx context.Context, teacherID string, filter models.ClientFilter) ([]models.Client, int, error) {
	clients, total, err := s.repo.List(ctx, teacherID, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, total, nil
}

// Get returns one client owned by the tutor.
func (s *ClientService) Get(ctx context.Context, teacherID, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
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

// Create registers a client for the tutor.
func (s *ClientService) Create(ctx context.Context, teacherID string, req CreateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}
	if err := s.ensureUniqueEmail(ctx, teacherID, req.Email, ""); err != nil {
		return nil, err
	}

	client := &models.Client{
		TeacherID: teacherID,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		VIP:       req.VIP,
		Active:    true,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create client")
	}
	return client, nil
}

// Update applies a partial change to a client.
func (s *ClientService) Update(ctx context.Context, teacherID, id string, req UpdateClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid client payload")
	}

	client, err := s.Get(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		if err := s.ensureUniqueEmail(ctx, teacherID, req.Email, id); err != nil {
			return nil, err
		}
	}

	if req.FullName != nil {
		client.FullName = *req.FullName
	}
	if req.Email != nil {
		client.Email = req.Email
	}
	if req.Phone != nil {
		client.Phone = req.Phone
	}
	if req.VIP != nil {
		client.VIP = *req.VIP
	}
	if req.Active != nil {
		client.Active = *req.Active
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update client")
	}
	return client, nil
}

// Delete soft-deletes a client owned by the tutor. The record stays behind
// the active flag so past lessons and payments keep their reference.
func (s *ClientService) Delete(ctx context.Context, teacherID, id string) error {
	if _, err := s.Get(ctx, teacherID, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete client")
	}
	return nil
}

func (s *ClientService) ensureUniqueEmail(ctx context.Context, teacherID string, email *string, excludeID string) error {
	if email == nil || *email == "" {
		return nil
	}
	exists, err := s.repo.ExistsByEmail(ctx, teacherID, *email, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	return nil
}
