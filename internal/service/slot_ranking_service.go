package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ais-api/internal/dto"
	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type plannedLessonReader interface {
	ListPlanned(ctx context.Context, teacherID string) ([]models.Lesson, error)
}

type clientReader interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

type weightConfigProvider interface {
	EnsureForTeacher(ctx context.Context, teacherID string) (*models.SlotWeight, error)
}

// SlotRankingService scores client-proposed slots against a tutor's
// preferences and planned lessons.
type SlotRankingService struct {
	lessons   plannedLessonReader
	clients   clientReader
	weights   weightConfigProvider
	maxSlots  int
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSlotRankingService builds the service. maxSlots caps how many candidate
// windows a single request may carry.
func NewSlotRankingService(lessons plannedLessonReader, clients clientReader, weights weightConfigProvider, maxSlots int, validate *validator.Validate, logger *zap.Logger) *SlotRankingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSlots <= 0 {
		maxSlots = 50
	}
	return &SlotRankingService{
		lessons:   lessons,
		clients:   clients,
		weights:   weights,
		maxSlots:  maxSlots,
		validator: validate,
		logger:    logger,
	}
}

// RankSlots scores every candidate window and returns them ordered by score,
// descending. Ties keep their input order.
func (s *SlotRankingService) RankSlots(ctx context.Context, teacherID string, req dto.RankSlotsRequest) (*dto.RankSlotsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ranking payload")
	}
	if len(req.ProposedSlots) > s.maxSlots {
		return nil, appErrors.Clone(appErrors.ErrValidation, "too many proposed slots")
	}
	for _, slot := range req.ProposedSlots {
		if !slot.From.Before(slot.To) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "slot end must be after slot start")
		}
	}

	client, err := s.clients.FindByID(ctx, req.ClientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	if client.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "client not found")
	}

	weights, err := s.weights.EnsureForTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	cfg := effectiveConfig(weights)

	lessons, err := s.lessons.ListPlanned(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load planned lessons")
	}

	ranked := make([]dto.RankedSlot, 0, len(req.ProposedSlots))
	for _, slot := range req.ProposedSlots {
		conflicts := findLessonConflicts(slot.From, slot.To, lessons)
		if len(conflicts) > 1 {
			s.logger.Warn("candidate slot overlaps multiple planned lessons",
				zap.String("teacher_id", teacherID),
				zap.Int("conflicts", len(conflicts)))
		}

		timeScore := timeOfDayScore(slot.From, cfg.PreferredTimes)
		compactScore := compactnessScore(slot.From, slot.To, lessons, cfg.MinGapMinutes, cfg.MaxGapMinutes)
		dayScore := workingDayScore(slot.From, cfg.WorkingDays)
		prioScore := priorityScore(client.VIP)

		var conflict *models.Lesson
		if len(conflicts) > 0 {
			conflict = &conflicts[0]
		}

		entry := dto.RankedSlot{
			From: slot.From,
			To:   slot.To,
			// Rounded before the sort below, so ordering follows the
			// presented two-decimal scores.
			Score: round2(aggregateScore(cfg, timeScore, compactScore, dayScore, prioScore, conflict != nil)),
			Breakdown: dto.ScoreBreakdown{
				TimeScore:       round2(timeScore),
				CompactScore:    round2(compactScore),
				WorkingDayScore: round2(dayScore),
				PriorityScore:   round2(prioScore),
			},
			Explanation: buildExplanation(timeScore, compactScore, dayScore, client.VIP, conflict),
			HasConflict: conflict != nil,
		}
		if conflict != nil {
			entry.ConflictingLesson = &dto.ConflictingLessonRef{
				ID:         conflict.ID,
				ClientName: conflict.ClientName,
				StartTime:  conflict.StartTime,
			}
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	s.logger.Info("ranked candidate slots",
		zap.String("teacher_id", teacherID),
		zap.String("client_id", req.ClientID),
		zap.Int("slots", len(ranked)))

	return &dto.RankSlotsResponse{
		RankedSlots: ranked,
		Weights: dto.EffectiveWeights{
			WTime:          weights.WTime,
			WCompact:       weights.WCompact,
			WPriority:      weights.WPriority,
			WorkingDays:    cfg.WorkingDays,
			PreferredTimes: cfg.PreferredTimes,
			MinGapMinutes:  weights.MinGapMinutes,
			MaxGapMinutes:  weights.MaxGapMinutes,
			GapImportance:  weights.GapImportance,
		},
		ClientVIP: client.VIP,
	}, nil
}
