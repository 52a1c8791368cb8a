package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

// bookingRepoMock keeps lessons in memory and hands out real transactions
// from a sqlmock-backed connection so the service's tx plumbing runs.
type bookingRepoMock struct {
	db      *sqlx.DB
	lessons map[string]*models.Lesson
	seq     int
}

func newBookingRepoMock(t *testing.T, txBudget int) (*bookingRepoMock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < txBudget; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}
	return &bookingRepoMock{
		db:      sqlx.NewDb(db, "sqlmock"),
		lessons: make(map[string]*models.Lesson),
	}, func() { db.Close() }
}

func (m *bookingRepoMock) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, nil)
}

func (m *bookingRepoMock) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if lesson, ok := m.lessons[id]; ok {
		cp := *lesson
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *bookingRepoMock) ListPlannedForUpdate(ctx context.Context, tx *sqlx.Tx, teacherID string) ([]models.Lesson, error) {
	var planned []models.Lesson
	for _, lesson := range m.lessons {
		if lesson.TeacherID == teacherID && lesson.Status == models.LessonStatusPlanned {
			planned = append(planned, *lesson)
		}
	}
	return planned, nil
}

func (m *bookingRepoMock) CreateWithTx(ctx context.Context, tx *sqlx.Tx, lesson *models.Lesson) error {
	m.seq++
	lesson.ID = fmt.Sprintf("lesson-%d", m.seq)
	cp := *lesson
	m.lessons[lesson.ID] = &cp
	return nil
}

func (m *bookingRepoMock) UpdateStatusWithTx(ctx context.Context, tx *sqlx.Tx, id string, status models.LessonStatus) (int64, error) {
	lesson, ok := m.lessons[id]
	if !ok {
		return 0, nil
	}
	lesson.Status = status
	return 1, nil
}

func (m *bookingRepoMock) plannedCount() int {
	n := 0
	for _, lesson := range m.lessons {
		if lesson.Status == models.LessonStatusPlanned {
			n++
		}
	}
	return n
}

func newBookingFixture(t *testing.T, txBudget int) (*LessonBookingService, *bookingRepoMock, func()) {
	repo, cleanup := newBookingRepoMock(t, txBudget)
	clients := &clientReaderMock{clients: map[string]*models.Client{
		"client-1": {ID: "client-1", TeacherID: "teacher-1", FullName: "Anna K"},
		"client-2": {ID: "client-2", TeacherID: "teacher-1", FullName: "Boris M"},
	}}
	svc := NewLessonBookingService(repo, clients, validator.New(), zap.NewNop())
	return svc, repo, cleanup
}

func TestLessonBookingServiceCreateFromSlot(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 1)
	defer cleanup()

	lesson, conflict, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-1",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NotNil(t, lesson)
	assert.Equal(t, models.LessonStatusPlanned, lesson.Status)
	assert.Equal(t, "Anna K", lesson.ClientName)
	assert.Equal(t, 60, lesson.DurationMin, "duration derived from the slot window")
	assert.Equal(t, "individual", lesson.Type)
	assert.Equal(t, 1, repo.plannedCount())
}

func TestLessonBookingServiceCreateDetectsConflict(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 2)
	defer cleanup()

	_, _, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-2",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	require.NoError(t, err)

	lesson, conflict, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-1",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 30), To: dayAt(2, 11, 30)},
	})
	assert.Nil(t, lesson)
	require.NotNil(t, conflict)
	assert.Equal(t, "Boris M", conflict.ConflictingLesson.ClientName)
	assert.True(t, conflict.CanReplace)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 1, repo.plannedCount(), "conflicting booking must not be stored")
}

func TestLessonBookingServiceCreateAllowsTouchingSlots(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 2)
	defer cleanup()

	_, _, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-1",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	require.NoError(t, err)

	_, conflict, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-2",
		Slot:     dto.CandidateSlot{From: dayAt(2, 11, 0), To: dayAt(2, 12, 0)},
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	assert.Equal(t, 2, repo.plannedCount())
}

func TestLessonBookingServiceReplaceConflicting(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 2)
	defer cleanup()

	old, _, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-2",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	require.NoError(t, err)

	resp, conflict, err := svc.ReplaceConflicting(context.Background(), "teacher-1", dto.ReplaceSlotRequest{
		ConflictingLessonID: old.ID,
		ClientID:            "client-1",
		Slot:                dto.CandidateSlot{From: dayAt(2, 10, 30), To: dayAt(2, 11, 30)},
	})
	require.NoError(t, err)
	assert.Nil(t, conflict)
	require.NotNil(t, resp)
	assert.Equal(t, old.ID, resp.CancelledLessonID)
	assert.Equal(t, models.LessonStatusCancelled, repo.lessons[old.ID].Status)
	assert.Equal(t, models.LessonStatusPlanned, resp.Lesson.Status)
	assert.Equal(t, 1, repo.plannedCount())
}

func TestLessonBookingServiceReplaceRejectsForeignLesson(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 1)
	defer cleanup()

	repo.lessons["lesson-x"] = &models.Lesson{
		ID: "lesson-x", TeacherID: "someone-else", ClientID: "client-9",
		StartTime: dayAt(2, 10, 0), DurationMin: 60, Status: models.LessonStatusPlanned,
	}

	_, _, err := svc.ReplaceConflicting(context.Background(), "teacher-1", dto.ReplaceSlotRequest{
		ConflictingLessonID: "lesson-x",
		ClientID:            "client-1",
		Slot:                dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Equal(t, models.LessonStatusPlanned, repo.lessons["lesson-x"].Status)
}

func TestLessonBookingServiceReplaceBlocksOtherOverlap(t *testing.T) {
	svc, repo, cleanup := newBookingFixture(t, 3)
	defer cleanup()

	old, _, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-2",
		Slot:     dto.CandidateSlot{From: dayAt(2, 10, 0), To: dayAt(2, 11, 0)},
	})
	require.NoError(t, err)
	other, _, err := svc.CreateFromSlot(context.Background(), "teacher-1", dto.SelectSlotRequest{
		ClientID: "client-1",
		Slot:     dto.CandidateSlot{From: dayAt(2, 12, 0), To: dayAt(2, 13, 0)},
	})
	require.NoError(t, err)

	// The replacement window collides with the untouched second lesson, so
	// the cancellation must not stick.
	resp, conflict, err := svc.ReplaceConflicting(context.Background(), "teacher-1", dto.ReplaceSlotRequest{
		ConflictingLessonID: old.ID,
		ClientID:            "client-2",
		Slot:                dto.CandidateSlot{From: dayAt(2, 12, 30), To: dayAt(2, 13, 30)},
	})
	assert.Nil(t, resp)
	require.NotNil(t, conflict)
	assert.Equal(t, other.ID, conflict.ConflictingLesson.ID)
	require.Error(t, err)
	assert.Equal(t, models.LessonStatusPlanned, repo.lessons[old.ID].Status)
	assert.Equal(t, 2, repo.plannedCount())
}

// Random create/replace sequences must never leave two overlapping PLANNED
// lessons for one tutor.
func TestLessonBookingWorkflowKeepsLessonsDisjoint(t *testing.T) {
	const iterations = 150
	svc, repo, cleanup := newBookingFixture(t, iterations*2)
	defer cleanup()

	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for i := 0; i < iterations; i++ {
		start := dayAt(2, 8, 0).Add(time.Duration(rng.Intn(12*60)) * time.Minute)
		duration := 30 + rng.Intn(4)*30
		slot := dto.CandidateSlot{From: start, To: start.Add(time.Duration(duration) * time.Minute)}

		if rng.Intn(4) == 0 {
			var target string
			for id, lesson := range repo.lessons {
				if lesson.Status == models.LessonStatusPlanned {
					target = id
					break
				}
			}
			if target != "" {
				_, _, _ = svc.ReplaceConflicting(ctx, "teacher-1", dto.ReplaceSlotRequest{
					ConflictingLessonID: target,
					ClientID:            "client-1",
					Slot:                slot,
					DurationMin:         duration,
				})
			}
		} else {
			_, _, _ = svc.CreateFromSlot(ctx, "teacher-1", dto.SelectSlotRequest{
				ClientID:    "client-1",
				Slot:        slot,
				DurationMin: duration,
			})
		}

		var planned []models.Lesson
		for _, lesson := range repo.lessons {
			if lesson.Status == models.LessonStatusPlanned {
				planned = append(planned, *lesson)
			}
		}
		for a := 0; a < len(planned); a++ {
			for b := a + 1; b < len(planned); b++ {
				overlap := planned[a].StartTime.Before(planned[b].EndTime()) &&
					planned[b].StartTime.Before(planned[a].EndTime())
				require.Falsef(t, overlap, "iteration %d: lessons %s and %s overlap", i, planned[a].ID, planned[b].ID)
			}
		}
	}
}
