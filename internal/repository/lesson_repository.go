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

// LessonRepository provides persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

const lessonColumns = `l.id, l.teacher_id, l.client_id, c.full_name AS client_name, l.start_time, l.duration_min, l.status, l.type, l.notes, l.created_at, l.updated_at`

// BeginTx opens a transaction for multi-step booking operations.
func (r *LessonRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin lesson tx: %w", err)
	}
	return tx, nil
}

// List returns lessons for a tutor with optional filtering and pagination.
func (r *LessonRepository) List(ctx context.Context, teacherID string, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = $1"
	args := []interface{}{teacherID}
	var conditions []string

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("l.client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("l.start_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("l.start_time < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY l.start_time %s LIMIT %d OFFSET %d", lessonColumns, base, order, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.id = $1`, lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListPlanned returns every PLANNED lesson of a tutor ordered by start time.
// The ranking engine scores candidate slots against this set.
func (r *LessonRepository) ListPlanned(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	query := fmt.Sprintf(`SELECT %s FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = $1 AND l.status = 'PLANNED' ORDER BY l.start_time ASC`, lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, teacherID); err != nil {
		return nil, fmt.Errorf("list planned lessons: %w", err)
	}
	return lessons, nil
}

// ListPlannedForUpdate locks a tutor's PLANNED lessons inside the given
// transaction so the commit-time conflict re-check cannot race a concurrent
// booking. Rows carry the client name so a conflict response can name the
// blocking client.
func (r *LessonRepository) ListPlannedForUpdate(ctx context.Context, tx *sqlx.Tx, teacherID string) ([]models.Lesson, error) {
	if tx == nil {
		return nil, fmt.Errorf("nil transaction provided")
	}
	query := fmt.Sprintf(`SELECT %s FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = $1 AND l.status = 'PLANNED' ORDER BY l.start_time ASC FOR UPDATE OF l`, lessonColumns)
	var lessons []models.Lesson
	if err := tx.SelectContext(ctx, &lessons, query, teacherID); err != nil {
		return nil, fmt.Errorf("lock planned lessons: %w", err)
	}
	return lessons, nil
}

// Create stores a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	return r.insertLesson(ctx, r.db, lesson)
}

// CreateWithTx stores a new lesson using an existing transaction.
func (r *LessonRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.insertLesson(ctx, tx, lesson)
}

func (r *LessonRepository) insertLesson(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	if lesson.Status == "" {
		lesson.Status = models.LessonStatusPlanned
	}

	const query = `INSERT INTO lessons (id, teacher_id, client_id, start_time, duration_min, status, type, notes, created_at, updated_at) VALUES (:id, :teacher_id, :client_id, :start_time, :duration_min, :status, :type, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update modifies a lesson record.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	return r.updateLesson(ctx, r.db, lesson)
}

// UpdateWithTx modifies a lesson using an existing transaction, so a reschedule
// can run under the same lock as its overlap re-check.
func (r *LessonRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.updateLesson(ctx, tx, lesson)
}

func (r *LessonRepository) updateLesson(ctx context.Context, exec sqlx.ExtContext, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET client_id = :client_id, start_time = :start_time, duration_min = :duration_min, status = :status, type = :type, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, lesson); err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return nil
}

// UpdateStatusWithTx transitions a lesson's status inside a transaction and
// reports whether a row matched.
func (r *LessonRepository) UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.LessonStatus) (int64, error) {
	if tx == nil {
		return 0, fmt.Errorf("nil transaction provided")
	}
	res, err := tx.ExecContext(ctx, `UPDATE lessons SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("update lesson status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update lesson status rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a lesson by id.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
