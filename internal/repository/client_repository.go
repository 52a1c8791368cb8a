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

// ClientRepository provides persistence for clients.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new client repository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

const clientColumns = `id, teacher_id, full_name, email, phone, vip, active, notes, created_at, updated_at`

// List returns a tutor's clients with optional filtering and pagination.
func (r *ClientRepository) List(ctx context.Context, teacherID string, filter models.ClientFilter) ([]models.Client, int, error) {
	base := "FROM clients WHERE teacher_id = $1"
	args := []interface{}{teacherID}
	var conditions []string

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.VIP != nil {
		conditions = append(conditions, fmt.Sprintf("vip = $%d", len(args)+1))
		args = append(args, *filter.VIP)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"full_name":  true,
		"created_at": true,
		"vip":        true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", clientColumns, base, sortBy, order, size, offset)
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	return clients, total, nil
}

// FindByID loads a client by id.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE id = $1`, clientColumns)
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	return &client, nil
}

// Create stores a new client record.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	const query = `INSERT INTO clients (id, teacher_id, full_name, email, phone, vip, active, notes, created_at, updated_at) VALUES (:id, :teacher_id, :full_name, :email, :phone, :vip, :active, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies a client record.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	const query = `UPDATE clients SET full_name = :full_name, email = :email, phone = :phone, vip = :vip, active = :active, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, client); err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

// ExistsByEmail reports whether another client of the tutor already uses the
// email. excludeID skips the client being updated.
func (r *ClientRepository) ExistsByEmail(ctx context.Context, teacherID, email, excludeID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM clients WHERE teacher_id = $1 AND email = $2`
	args := []interface{}{teacherID, email}
	if excludeID != "" {
		query += ` AND id <> $3`
		args = append(args, excludeID)
	}
	query += `)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		return false, fmt.Errorf("check client email: %w", err)
	}
	return exists, nil
}

// Deactivate soft-deletes a client by flipping the active flag. History
// stays queryable for lessons and payments that reference the client.
func (r *ClientRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE clients SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate client: %w", err)
	}
	return nil
}
