package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ais-api/internal/models"
)

func lessonRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "teacher_id", "client_id", "client_name", "start_time", "duration_min", "status", "type", "notes", "created_at", "updated_at"}).
		AddRow("lesson-1", "teacher-1", "client-1", "Anna K", now, 60, "PLANNED", "regular", nil, now, now)
}

func TestLessonRepositoryListPlanned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = (.+) AND l.status = 'PLANNED'").
		WithArgs("teacher-1").
		WillReturnRows(lessonRows(now))

	lessons, err := repo.ListPlanned(context.Background(), "teacher-1")
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "Anna K", lessons[0].ClientName)
	assert.Equal(t, now.Add(time.Hour), lessons[0].EndTime())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now().UTC()
	from := now.Add(-24 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM lessons l JOIN clients c").
		WithArgs("teacher-1", "client-1", "PLANNED", from).
		WillReturnRows(lessonRows(now))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM lessons l JOIN clients c").
		WithArgs("teacher-1", "client-1", "PLANNED", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	lessons, total, err := repo.List(context.Background(), "teacher-1", models.LessonFilter{
		ClientID: "client-1",
		Status:   models.LessonStatusPlanned,
		From:     &from,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, lessons, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), "teacher-1", "client-1", sqlmock.AnyArg(), 90, "PLANNED", "regular", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{
		TeacherID:   "teacher-1",
		ClientID:    "client-1",
		StartTime:   time.Now().UTC(),
		DurationMin: 90,
		Type:        "regular",
	}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, models.LessonStatusPlanned, lesson.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryUpdateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE lessons SET client_id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	lesson := &models.Lesson{
		ID:          "lesson-1",
		TeacherID:   "teacher-1",
		ClientID:    "client-1",
		StartTime:   time.Now().UTC(),
		DurationMin: 60,
		Status:      models.LessonStatusPlanned,
		Type:        "regular",
	}
	require.NoError(t, repo.UpdateWithTx(ctx, tx, lesson))
	require.NoError(t, tx.Commit())
	assert.False(t, lesson.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Locked rows must resolve the client name, since conflict responses built
// from them name the blocking client.
func TestLessonRepositoryListPlannedForUpdateResolvesClientName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) c.full_name AS client_name(.+) FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = (.+) FOR UPDATE OF l").
		WithArgs("teacher-1").
		WillReturnRows(lessonRows(now))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := repo.ListPlannedForUpdate(ctx, tx, "teacher-1")
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, "Anna K", locked[0].ClientName)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryReplaceWithinTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM lessons l JOIN clients c ON c.id = l.client_id WHERE l.teacher_id = (.+) FOR UPDATE OF l").
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "client_id", "client_name", "start_time", "duration_min", "status", "type", "notes", "created_at", "updated_at"}).
			AddRow("lesson-old", "teacher-1", "client-2", "Boris M", now, 60, "PLANNED", "regular", nil, now, now))
	mock.ExpectExec("UPDATE lessons SET status").
		WithArgs("CANCELLED", sqlmock.AnyArg(), "lesson-old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lessons").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	locked, err := repo.ListPlannedForUpdate(ctx, tx, "teacher-1")
	require.NoError(t, err)
	require.Len(t, locked, 1)

	affected, err := repo.UpdateStatusWithTx(ctx, tx, "lesson-old", models.LessonStatusCancelled)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	require.NoError(t, repo.CreateWithTx(ctx, tx, &models.Lesson{
		TeacherID:   "teacher-1",
		ClientID:    "client-1",
		StartTime:   now.Add(2 * time.Hour),
		DurationMin: 60,
		Type:        "regular",
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
