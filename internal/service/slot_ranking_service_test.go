package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type plannedLessonsMock struct {
	lessons []models.Lesson
	err     error
}

func (m *plannedLessonsMock) ListPlanned(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.lessons, nil
}

type clientReaderMock struct {
	clients map[string]*models.Client
}

func (m *clientReaderMock) FindByID(ctx context.Context, id string) (*models.Client, error) {
	if client, ok := m.clients[id]; ok {
		cp := *client
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type weightProviderMock struct {
	weights *models.SlotWeight
}

func (m *weightProviderMock) EnsureForTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	if m.weights == nil {
		m.weights = defaultSlotWeight(teacherID)
	}
	return m.weights, nil
}

func newRankingFixture(lessons []models.Lesson, vip bool) *SlotRankingService {
	return NewSlotRankingService(
		&plannedLessonsMock{lessons: lessons},
		&clientReaderMock{clients: map[string]*models.Client{
			"client-1": {ID: "client-1", TeacherID: "teacher-1", FullName: "Anna K", VIP: vip},
		}},
		&weightProviderMock{},
		50,
		validator.New(),
		zap.NewNop(),
	)
}

func TestSlotRankingServiceOrdersByScore(t *testing.T) {
	lessons := []models.Lesson{plannedLesson("lesson-1", dayAt(2, 10, 0), 60)}
	svc := newRankingFixture(lessons, false)

	resp, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID: "client-1",
		ProposedSlots: []dto.CandidateSlot{
			{From: dayAt(2, 10, 30), To: dayAt(2, 11, 30)},
			{From: dayAt(2, 13, 0), To: dayAt(2, 14, 0)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.RankedSlots, 2)

	best := resp.RankedSlots[0]
	assert.Equal(t, dayAt(2, 13, 0), best.From)
	assert.False(t, best.HasConflict)
	assert.Nil(t, best.ConflictingLesson)
	// Monday afternoon, 120 minute gap: day period 0.7, compactness 1.0.
	assert.Equal(t, 0.7, best.Breakdown.TimeScore)
	assert.Equal(t, 1.0, best.Breakdown.CompactScore)
	assert.Equal(t, 1.0, best.Breakdown.WorkingDayScore)
	assert.Equal(t, 0.5, best.Breakdown.PriorityScore)
	assert.Contains(t, best.Explanation, "optimal gap")

	worst := resp.RankedSlots[1]
	assert.True(t, worst.HasConflict)
	require.NotNil(t, worst.ConflictingLesson)
	assert.Equal(t, "lesson-1", worst.ConflictingLesson.ID)
	assert.Equal(t, "Boris M", worst.ConflictingLesson.ClientName)
	assert.Contains(t, worst.Explanation, "Boris M")
	assert.Less(t, worst.Score, best.Score)

	assert.False(t, resp.ClientVIP)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, resp.Weights.WorkingDays)
	assert.Equal(t, 60, resp.Weights.MinGapMinutes)
}

func TestSlotRankingServiceConflictPenalty(t *testing.T) {
	lessons := []models.Lesson{plannedLesson("lesson-1", dayAt(2, 10, 0), 60)}
	svc := newRankingFixture(lessons, false)

	resp, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID: "client-1",
		ProposedSlots: []dto.CandidateSlot{
			{From: dayAt(2, 10, 30), To: dayAt(2, 11, 30)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.RankedSlots, 1)

	got := resp.RankedSlots[0]
	cfg := defaultRankingConfig()
	unpenalized := aggregateScore(cfg,
		timeOfDayScore(dayAt(2, 10, 30), cfg.PreferredTimes),
		compactnessScore(dayAt(2, 10, 30), dayAt(2, 11, 30), lessons, cfg.MinGapMinutes, cfg.MaxGapMinutes),
		workingDayScore(dayAt(2, 10, 30), cfg.WorkingDays),
		0.5,
		false)
	assert.Equal(t, round2(unpenalized*0.1), got.Score)
}

func TestSlotRankingServiceZeroGapSlot(t *testing.T) {
	// A slot starting exactly when a lesson ends is free but cramped.
	lessons := []models.Lesson{plannedLesson("lesson-1", dayAt(2, 10, 0), 60)}
	svc := newRankingFixture(lessons, false)

	resp, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID:      "client-1",
		ProposedSlots: []dto.CandidateSlot{{From: dayAt(2, 11, 0), To: dayAt(2, 12, 0)}},
	})
	require.NoError(t, err)
	require.Len(t, resp.RankedSlots, 1)
	assert.False(t, resp.RankedSlots[0].HasConflict)
	assert.Equal(t, 0.2, resp.RankedSlots[0].Breakdown.CompactScore)
}

func TestSlotRankingServiceVIPBoost(t *testing.T) {
	slots := []dto.CandidateSlot{{From: dayAt(2, 13, 0), To: dayAt(2, 14, 0)}}

	regular, err := newRankingFixture(nil, false).RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID: "client-1", ProposedSlots: slots,
	})
	require.NoError(t, err)

	vip, err := newRankingFixture(nil, true).RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID: "client-1", ProposedSlots: slots,
	})
	require.NoError(t, err)

	assert.True(t, vip.ClientVIP)
	assert.Equal(t, 1.0, vip.RankedSlots[0].Breakdown.PriorityScore)
	assert.Equal(t, 0.5, regular.RankedSlots[0].Breakdown.PriorityScore)
	assert.Greater(t, vip.RankedSlots[0].Score, regular.RankedSlots[0].Score)
	assert.Contains(t, vip.RankedSlots[0].Explanation, "VIP client")
}

func TestSlotRankingServiceStableTies(t *testing.T) {
	svc := newRankingFixture(nil, false)

	// Identical windows produce identical scores; input order must hold.
	resp, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID: "client-1",
		ProposedSlots: []dto.CandidateSlot{
			{From: dayAt(2, 13, 0), To: dayAt(2, 14, 0)},
			{From: dayAt(9, 13, 0), To: dayAt(9, 14, 0)},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.RankedSlots, 2)
	assert.Equal(t, resp.RankedSlots[0].Score, resp.RankedSlots[1].Score)
	assert.Equal(t, dayAt(2, 13, 0), resp.RankedSlots[0].From)
	assert.Equal(t, dayAt(9, 13, 0), resp.RankedSlots[1].From)
}

func TestSlotRankingServiceSaturdayPenalizedNotRejected(t *testing.T) {
	svc := newRankingFixture(nil, false)

	resp, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID:      "client-1",
		ProposedSlots: []dto.CandidateSlot{{From: dayAt(7, 13, 0), To: dayAt(7, 14, 0)}},
	})
	require.NoError(t, err)
	require.Len(t, resp.RankedSlots, 1)
	assert.Equal(t, 0.3, resp.RankedSlots[0].Breakdown.WorkingDayScore)
	assert.Contains(t, resp.RankedSlots[0].Explanation, "non-working day")
}

func TestSlotRankingServiceClientNotOwned(t *testing.T) {
	svc := NewSlotRankingService(
		&plannedLessonsMock{},
		&clientReaderMock{clients: map[string]*models.Client{
			"client-9": {ID: "client-9", TeacherID: "someone-else"},
		}},
		&weightProviderMock{},
		50, validator.New(), zap.NewNop(),
	)

	_, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
		ClientID:      "client-9",
		ProposedSlots: []dto.CandidateSlot{{From: dayAt(2, 13, 0), To: dayAt(2, 14, 0)}},
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSlotRankingServiceRejectsBadInput(t *testing.T) {
	svc := newRankingFixture(nil, false)

	t.Run("empty slot list", func(t *testing.T) {
		_, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{ClientID: "client-1"})
		requireValidationError(t, err)
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := svc.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
			ClientID:      "client-1",
			ProposedSlots: []dto.CandidateSlot{{From: dayAt(2, 14, 0), To: dayAt(2, 13, 0)}},
		})
		requireValidationError(t, err)
	})

	t.Run("too many slots", func(t *testing.T) {
		capped := NewSlotRankingService(&plannedLessonsMock{}, &clientReaderMock{}, &weightProviderMock{}, 1, validator.New(), zap.NewNop())
		_, err := capped.RankSlots(context.Background(), "teacher-1", dto.RankSlotsRequest{
			ClientID: "client-1",
			ProposedSlots: []dto.CandidateSlot{
				{From: dayAt(2, 13, 0), To: dayAt(2, 14, 0)},
				{From: dayAt(2, 15, 0), To: dayAt(2, 16, 0)},
			},
		})
		requireValidationError(t, err)
	})
}

func requireValidationError(t *testing.T, err error) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
