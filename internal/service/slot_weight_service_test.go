package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type slotWeightRepoMock struct {
	stored  *models.SlotWeight
	upserts int
}

func (m *slotWeightRepoMock) GetByTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	if m.stored == nil {
		return nil, sql.ErrNoRows
	}
	cp := *m.stored
	return &cp, nil
}

func (m *slotWeightRepoMock) Upsert(ctx context.Context, weights *models.SlotWeight) error {
	m.upserts++
	cp := *weights
	m.stored = &cp
	return nil
}

func (m *slotWeightRepoMock) DeleteByTeacher(ctx context.Context, teacherID string) (int64, error) {
	if m.stored == nil {
		return 0, nil
	}
	m.stored = nil
	return 1, nil
}

func (m *slotWeightRepoMock) ListAll(ctx context.Context) ([]models.SlotWeight, error) {
	if m.stored == nil {
		return nil, nil
	}
	return []models.SlotWeight{*m.stored}, nil
}

type cacheMock struct {
	data map[string][]byte
}

func newCacheMock() *cacheMock {
	return &cacheMock{data: make(map[string][]byte)}
}

func (m *cacheMock) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *cacheMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *cacheMock) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newWeightService(repo *slotWeightRepoMock, cache weightCache) *SlotWeightService {
	return NewSlotWeightService(repo, cache, 5*time.Minute, nil, validator.New(), zap.NewNop())
}

func TestSlotWeightServiceGetReturnsDefaults(t *testing.T) {
	repo := &slotWeightRepoMock{}
	svc := newWeightService(repo, nil)

	weights, err := svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", weights.TeacherID)
	assert.Equal(t, 0.33, weights.WTime)
	assert.Equal(t, 60, weights.MinGapMinutes)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, weights.DecodeWorkingDays())
	assert.Equal(t, 0, repo.upserts, "plain reads never persist defaults")

	prefs := weights.DecodePreferredTimes()
	assert.False(t, prefs.Morning.Enabled)
	assert.True(t, prefs.Day.Enabled)
	assert.Equal(t, 0.7, prefs.Day.Weight)
}

func TestSlotWeightServiceEnsurePersistsDefaultsOnce(t *testing.T) {
	repo := &slotWeightRepoMock{}
	svc := newWeightService(repo, nil)

	first, err := svc.EnsureForTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts)

	second, err := svc.EnsureForTeacher(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.upserts, "existing row is reused")
	assert.Equal(t, first.TeacherID, second.TeacherID)
}

func TestSlotWeightServiceUpdatePartial(t *testing.T) {
	repo := &slotWeightRepoMock{}
	svc := newWeightService(repo, nil)

	gap := 0.8
	minGap := 30
	weights, err := svc.Update(context.Background(), "teacher-1", dto.UpdateSlotWeightsRequest{
		GapImportance: &gap,
		MinGapMinutes: &minGap,
		WorkingDays:   []int{1, 3, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.8, weights.GapImportance)
	assert.Equal(t, 30, weights.MinGapMinutes)
	assert.Equal(t, []int{1, 3, 5}, weights.DecodeWorkingDays())
	assert.Equal(t, 0.33, weights.WTime, "untouched fields keep defaults")
	assert.Equal(t, 180, weights.MaxGapMinutes)
}

func TestSlotWeightServiceUpdateRejectsBadGapRange(t *testing.T) {
	svc := newWeightService(&slotWeightRepoMock{}, nil)

	minGap := 240
	_, err := svc.Update(context.Background(), "teacher-1", dto.UpdateSlotWeightsRequest{
		MinGapMinutes: &minGap,
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
}

func TestSlotWeightServiceUpdateRejectsBadPeriodWeight(t *testing.T) {
	svc := newWeightService(&slotWeightRepoMock{}, nil)

	_, err := svc.Update(context.Background(), "teacher-1", dto.UpdateSlotWeightsRequest{
		PreferredTimes: &models.TimePreferences{
			Morning: models.PeriodPreference{Enabled: true, Weight: 0.95},
			Day:     models.PeriodPreference{Enabled: true, Weight: 0.7},
			Evening: models.PeriodPreference{Enabled: false, Weight: 0.5},
		},
	})
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErr.Code)
}

func TestSlotWeightServiceUpdateRejectsBadWorkingDays(t *testing.T) {
	svc := newWeightService(&slotWeightRepoMock{}, nil)

	_, err := svc.Update(context.Background(), "teacher-1", dto.UpdateSlotWeightsRequest{
		WorkingDays: []int{1, 7},
	})
	requireValidationError(t, err)
}

func TestSlotWeightServiceDeleteMissing(t *testing.T) {
	svc := newWeightService(&slotWeightRepoMock{}, nil)

	err := svc.Delete(context.Background(), "teacher-1")
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestSlotWeightServiceGetCountsCacheHitsAndMisses(t *testing.T) {
	repo := &slotWeightRepoMock{stored: defaultSlotWeight("teacher-1")}
	metrics := NewMetricsService()
	svc := NewSlotWeightService(repo, newCacheMock(), 5*time.Minute, metrics, validator.New(), zap.NewNop())

	// First read misses and fills the cache, second read hits.
	_, err := svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 1, snap.CacheMisses)
	assert.Equal(t, 0.5, snap.CacheHitRatio)
}

func TestSlotWeightServiceCacheRoundTrip(t *testing.T) {
	repo := &slotWeightRepoMock{stored: defaultSlotWeight("teacher-1")}
	cache := newCacheMock()
	svc := newWeightService(repo, cache)

	_, err := svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Contains(t, cache.data, weightCacheKey("teacher-1"))

	// A cached read survives the row disappearing underneath.
	repo.stored = nil
	cached, err := svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "teacher-1", cached.TeacherID)

	gap := 0.6
	repo.stored = defaultSlotWeight("teacher-1")
	_, err = svc.Update(context.Background(), "teacher-1", dto.UpdateSlotWeightsRequest{GapImportance: &gap})
	require.NoError(t, err)
	assert.NotContains(t, cache.data, weightCacheKey("teacher-1"), "update invalidates the cache")
}
