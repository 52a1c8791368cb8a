package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ais-api/internal/models"
)

// SlotWeightRepository persists per-tutor ranking configuration.
type SlotWeightRepository struct {
	db *sqlx.DB
}

// NewSlotWeightRepository constructs the repository.
func NewSlotWeightRepository(db *sqlx.DB) *SlotWeightRepository {
	return &SlotWeightRepository{db: db}
}

const slotWeightColumns = `id, teacher_id, w_time, w_compact, w_priority, working_days, preferred_times, min_gap_minutes, max_gap_minutes, gap_importance, created_at, updated_at`

// GetByTeacher returns the stored configuration for a tutor.
func (r *SlotWeightRepository) GetByTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_weights WHERE teacher_id = $1`, slotWeightColumns)
	var weights models.SlotWeight
	if err := r.db.GetContext(ctx, &weights, query, teacherID); err != nil {
		return nil, err
	}
	return &weights, nil
}

// Upsert creates or updates a tutor's configuration.
func (r *SlotWeightRepository) Upsert(ctx context.Context, weights *models.SlotWeight) error {
	if weights.ID == "" {
		weights.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if weights.CreatedAt.IsZero() {
		weights.CreatedAt = now
	}
	weights.UpdatedAt = now
	if len(weights.WorkingDays) == 0 {
		weights.WorkingDays = []byte("[]")
	}
	if len(weights.PreferredTimes) == 0 {
		weights.PreferredTimes = []byte("{}")
	}

	const query = `INSERT INTO slot_weights (id, teacher_id, w_time, w_compact, w_priority, working_days, preferred_times, min_gap_minutes, max_gap_minutes, gap_importance, created_at, updated_at)
		VALUES (:id, :teacher_id, :w_time, :w_compact, :w_priority, :working_days, :preferred_times, :min_gap_minutes, :max_gap_minutes, :gap_importance, :created_at, :updated_at)
		ON CONFLICT (teacher_id) DO UPDATE
		SET w_time = EXCLUDED.w_time,
		    w_compact = EXCLUDED.w_compact,
		    w_priority = EXCLUDED.w_priority,
		    working_days = EXCLUDED.working_days,
		    preferred_times = EXCLUDED.preferred_times,
		    min_gap_minutes = EXCLUDED.min_gap_minutes,
		    max_gap_minutes = EXCLUDED.max_gap_minutes,
		    gap_importance = EXCLUDED.gap_importance,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, weights); err != nil {
		return fmt.Errorf("upsert slot weights: %w", err)
	}
	return nil
}

// DeleteByTeacher removes a tutor's configuration so defaults apply again.
func (r *SlotWeightRepository) DeleteByTeacher(ctx context.Context, teacherID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM slot_weights WHERE teacher_id = $1`, teacherID)
	if err != nil {
		return 0, fmt.Errorf("delete slot weights: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete slot weights rows affected: %w", err)
	}
	return affected, nil
}

// ListAll returns every stored configuration, newest first.
func (r *SlotWeightRepository) ListAll(ctx context.Context) ([]models.SlotWeight, error) {
	query := fmt.Sprintf(`SELECT %s FROM slot_weights ORDER BY updated_at DESC`, slotWeightColumns)
	var weights []models.SlotWeight
	if err := r.db.SelectContext(ctx, &weights, query); err != nil {
		return nil, fmt.Errorf("list slot weights: %w", err)
	}
	return weights, nil
}
