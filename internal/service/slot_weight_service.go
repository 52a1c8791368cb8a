package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type slotWeightRepo interface {
	GetByTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error)
	Upsert(ctx context.Context, weights *models.SlotWeight) error
	DeleteByTeacher(ctx context.Context, teacherID string) (int64, error)
	ListAll(ctx context.Context) ([]models.SlotWeight, error)
}

type weightCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// SlotWeightService manages per-tutor ranking configuration with lazy
// defaults and an optional read-through cache.
type SlotWeightService struct {
	repo      slotWeightRepo
	cache     weightCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotWeightService builds the service. The cache may be nil, in which
// case every read goes to the database. Metrics may be nil as well.
func NewSlotWeightService(repo slotWeightRepo, cache weightCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *SlotWeightService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotWeightService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

func weightCacheKey(teacherID string) string {
	return "slot-weights:" + teacherID
}

func defaultSlotWeight(teacherID string) *models.SlotWeight {
	cfg := defaultRankingConfig()
	weights := &models.SlotWeight{
		TeacherID:     teacherID,
		WTime:         cfg.WTime,
		WCompact:      cfg.WCompact,
		WPriority:     cfg.WPriority,
		MinGapMinutes: cfg.MinGapMinutes,
		MaxGapMinutes: cfg.MaxGapMinutes,
		GapImportance: cfg.GapImportance,
	}
	_ = weights.SetWorkingDays(cfg.WorkingDays)
	_ = weights.SetPreferredTimes(cfg.PreferredTimes)
	return weights
}

func effectiveConfig(weights *models.SlotWeight) rankingConfig {
	cfg := rankingConfig{
		WTime:          weights.WTime,
		WCompact:       weights.WCompact,
		WPriority:      weights.WPriority,
		WorkingDays:    weights.DecodeWorkingDays(),
		PreferredTimes: weights.DecodePreferredTimes(),
		MinGapMinutes:  weights.MinGapMinutes,
		MaxGapMinutes:  weights.MaxGapMinutes,
		GapImportance:  weights.GapImportance,
	}
	if len(cfg.WorkingDays) == 0 {
		cfg.WorkingDays = defaultRankingConfig().WorkingDays
	}
	return cfg
}

// Get returns the tutor's stored configuration, or defaults when none exists.
// Plain reads never persist the defaults.
func (s *SlotWeightService) Get(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	if s.cache != nil {
		var cached models.SlotWeight
		if err := s.cache.Get(ctx, weightCacheKey(teacherID), &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		}
		s.metrics.RecordCacheOperation(false)
	}

	weights, err := s.repo.GetByTeacher(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return defaultSlotWeight(teacherID), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot weights")
	}

	s.cacheStore(ctx, teacherID, weights)
	return weights, nil
}

// EnsureForTeacher returns the stored configuration, creating and persisting
// the defaults when the tutor has none yet. Ranking calls this so a tutor's
// first ranking run fixes their configuration row.
func (s *SlotWeightService) EnsureForTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error) {
	weights, err := s.repo.GetByTeacher(ctx, teacherID)
	if err == nil {
		return weights, nil
	}
	if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot weights")
	}

	weights = defaultSlotWeight(teacherID)
	if err := s.repo.Upsert(ctx, weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create default slot weights")
	}
	s.logger.Info("created default slot weights", zap.String("teacher_id", teacherID))
	s.cacheStore(ctx, teacherID, weights)
	return weights, nil
}

// Update applies a partial configuration change and returns the stored row.
func (s *SlotWeightService) Update(ctx context.Context, teacherID string, req dto.UpdateSlotWeightsRequest) (*models.SlotWeight, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot weights payload")
	}

	weights, err := s.repo.GetByTeacher(ctx, teacherID)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot weights")
		}
		weights = defaultSlotWeight(teacherID)
	}

	if req.WTime != nil {
		weights.WTime = *req.WTime
	}
	if req.WCompact != nil {
		weights.WCompact = *req.WCompact
	}
	if req.WPriority != nil {
		weights.WPriority = *req.WPriority
	}
	if req.WorkingDays != nil {
		if err := weights.SetWorkingDays(req.WorkingDays); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid working days payload")
		}
	}
	if req.PreferredTimes != nil {
		if err := validatePeriodWeights(*req.PreferredTimes); err != nil {
			return nil, err
		}
		if err := weights.SetPreferredTimes(*req.PreferredTimes); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preferred times payload")
		}
	}
	if req.MinGapMinutes != nil {
		weights.MinGapMinutes = *req.MinGapMinutes
	}
	if req.MaxGapMinutes != nil {
		weights.MaxGapMinutes = *req.MaxGapMinutes
	}
	if req.GapImportance != nil {
		weights.GapImportance = *req.GapImportance
	}

	if weights.MinGapMinutes > weights.MaxGapMinutes {
		return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "min gap cannot exceed max gap")
	}

	// Weight sums are deliberately not enforced; the aggregator tolerates
	// unnormalized weights, so a drifted sum only earns a warning.
	if sum := weights.WTime + weights.WCompact + weights.WPriority; math.Abs(sum-1.0) > 0.05 {
		s.logger.Warn("slot weight sum is far from 1.0",
			zap.String("teacher_id", teacherID),
			zap.Float64("sum", sum))
	}

	if err := s.repo.Upsert(ctx, weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store slot weights")
	}
	s.invalidateCache(ctx, teacherID)
	return weights, nil
}

// Delete removes the tutor's configuration so defaults apply again.
func (s *SlotWeightService) Delete(ctx context.Context, teacherID string) error {
	affected, err := s.repo.DeleteByTeacher(ctx, teacherID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete slot weights")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "slot weights not found")
	}
	s.invalidateCache(ctx, teacherID)
	return nil
}

// ListAll returns every stored configuration. Admin-only.
func (s *SlotWeightService) ListAll(ctx context.Context) ([]models.SlotWeight, error) {
	weights, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slot weights")
	}
	return weights, nil
}

func (s *SlotWeightService) cacheStore(ctx context.Context, teacherID string, weights *models.SlotWeight) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, weightCacheKey(teacherID), weights, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache slot weights", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func (s *SlotWeightService) invalidateCache(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, weightCacheKey(teacherID)); err != nil {
		s.logger.Warn("failed to invalidate slot weights cache", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func validatePeriodWeights(prefs models.TimePreferences) error {
	for _, p := range []models.PeriodPreference{prefs.Morning, prefs.Day, prefs.Evening} {
		if p.Weight < 0.1 || p.Weight > 0.9 {
			return appErrors.Clone(appErrors.ErrInvalidWeights, fmt.Sprintf("period weight %.2f outside [0.1, 0.9]", p.Weight))
		}
	}
	return nil
}
