package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ais-api/internal/models"
)

// SlotRequestRepository provides persistence for client slot requests.
type SlotRequestRepository struct {
	db *sqlx.DB
}

// NewSlotRequestRepository creates a new slot request repository.
func NewSlotRequestRepository(db *sqlx.DB) *SlotRequestRepository {
	return &SlotRequestRepository{db: db}
}

const slotRequestColumns = `r.id, r.teacher_id, r.client_id, c.full_name AS client_name, r.proposed_slots, r.status, r.created_at, r.updated_at`

// List returns a tutor's slot requests, newest first.
func (r *SlotRequestRepository) List(ctx context.Context, teacherID string, status models.SlotRequestStatus) ([]models.SlotRequest, error) {
	base := "FROM slot_requests r JOIN clients c ON c.id = r.client_id WHERE r.teacher_id = $1"
	args := []interface{}{teacherID}
	var conditions []string

	if status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, status)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.created_at DESC", slotRequestColumns, base)
	var requests []models.SlotRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list slot requests: %w", err)
	}
	return requests, nil
}

// FindByID loads a slot request by id.
func (r *SlotRequestRepository) FindByID(ctx context.Context, id string) (*models.SlotRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_requests r JOIN clients c ON c.id = r.client_id WHERE r.id = $1`, slotRequestColumns)
	var request models.SlotRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// Create stores a new slot request.
func (r *SlotRequestRepository) Create(ctx context.Context, request *models.SlotRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	if request.Status == "" {
		request.Status = models.SlotRequestStatusNew
	}
	if len(request.ProposedSlots) == 0 {
		request.ProposedSlots = []byte("[]")
	}

	const query = `INSERT INTO slot_requests (id, teacher_id, client_id, proposed_slots, status, created_at, updated_at) VALUES (:id, :teacher_id, :client_id, :proposed_slots, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create slot request: %w", err)
	}
	return nil
}

// UpdateStatus transitions a request's status.
func (r *SlotRequestRepository) UpdateStatus(ctx context.Context, id string, status models.SlotRequestStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE slot_requests SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update slot request status: %w", err)
	}
	return nil
}

// Delete removes a slot request by id.
func (r *SlotRequestRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM slot_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete slot request: %w", err)
	}
	return nil
}
