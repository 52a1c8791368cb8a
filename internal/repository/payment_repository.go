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

// PaymentRepository provides persistence for payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, teacher_id, client_id, lesson_id, amount, method, paid_at, notes, created_at, updated_at`

func paymentFilterClause(teacherID string, filter models.PaymentFilter) (string, []interface{}) {
	base := "FROM payments WHERE teacher_id = $1"
	args := []interface{}{teacherID}
	var conditions []string

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("paid_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("paid_at < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}
	return base, args
}

// List returns a tutor's payments with optional filtering and pagination.
func (r *PaymentRepository) List(ctx context.Context, teacherID string, filter models.PaymentFilter) ([]models.Payment, int, error) {
	base, args := paymentFilterClause(teacherID, filter)

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY paid_at DESC LIMIT %d OFFSET %d", paymentColumns, base, size, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	return payments, total, nil
}

// FindByID loads a payment by id.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE id = $1`, paymentColumns)
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Summarize aggregates payment totals over the filtered set.
func (r *PaymentRepository) Summarize(ctx context.Context, teacherID string, filter models.PaymentFilter) (*models.PaymentSummary, error) {
	base, args := paymentFilterClause(teacherID, filter)
	query := fmt.Sprintf("SELECT COALESCE(SUM(amount), 0) AS total_amount, COUNT(*) AS count %s", base)
	var summary models.PaymentSummary
	if err := r.db.GetContext(ctx, &summary, query, args...); err != nil {
		return nil, fmt.Errorf("summarize payments: %w", err)
	}
	return &summary, nil
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	if payment.PaidAt.IsZero() {
		payment.PaidAt = now
	}

	const query = `INSERT INTO payments (id, teacher_id, client_id, lesson_id, amount, method, paid_at, notes, created_at, updated_at) VALUES (:id, :teacher_id, :client_id, :lesson_id, :amount, :method, :paid_at, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update modifies a payment record.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET client_id = :client_id, lesson_id = :lesson_id, amount = :amount, method = :method, paid_at = :paid_at, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete removes a payment by id.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}
