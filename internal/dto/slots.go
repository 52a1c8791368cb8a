package dto

import (
	"time"

	"github.com/noah-isme/ais-api/internal/models"
)

// CandidateSlot is one client-proposed time window to be ranked. The window
// exists only for the duration of a single ranking call.
type CandidateSlot struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}

// RankSlotsRequest asks the engine to score candidate windows for a client.
type RankSlotsRequest struct {
	ClientID      string          `json:"client_id" validate:"required"`
	ProposedSlots []CandidateSlot `json:"proposed_slots" validate:"required,min=1,dive"`
}

// ScoreBreakdown exposes the four component scores behind a final score.
type ScoreBreakdown struct {
	TimeScore       float64 `json:"time_score"`
	CompactScore    float64 `json:"compact_score"`
	WorkingDayScore float64 `json:"working_day_score"`
	PriorityScore   float64 `json:"priority_score"`
}

// ConflictingLessonRef identifies the lesson a candidate slot collides with.
type ConflictingLessonRef struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	StartTime  time.Time `json:"start_time"`
}

// RankedSlot is one scored candidate in the ranking response.
type RankedSlot struct {
	From              time.Time             `json:"from"`
	To                time.Time             `json:"to"`
	Score             float64               `json:"score"`
	Breakdown         ScoreBreakdown        `json:"breakdown"`
	Explanation       string                `json:"explanation"`
	HasConflict       bool                  `json:"has_conflict"`
	ConflictingLesson *ConflictingLessonRef `json:"conflicting_lesson,omitempty"`
}

// EffectiveWeights echoes the configuration the ranking was computed with.
type EffectiveWeights struct {
	WTime          float64                `json:"w_time"`
	WCompact       float64                `json:"w_compact"`
	WPriority      float64                `json:"w_priority"`
	WorkingDays    []int                  `json:"working_days"`
	PreferredTimes models.TimePreferences `json:"preferred_times"`
	MinGapMinutes  int                    `json:"min_gap_minutes"`
	MaxGapMinutes  int                    `json:"max_gap_minutes"`
	GapImportance  float64                `json:"gap_importance"`
}

// RankSlotsResponse carries the ranked candidates, descending by score.
type RankSlotsResponse struct {
	RankedSlots []RankedSlot     `json:"ranked_slots"`
	Weights     EffectiveWeights `json:"weights"`
	ClientVIP   bool             `json:"client_vip"`
}

// SelectSlotRequest books a lesson from a previously ranked slot.
type SelectSlotRequest struct {
	ClientID    string        `json:"client_id" validate:"required"`
	Slot        CandidateSlot `json:"slot" validate:"required"`
	DurationMin int           `json:"duration_min" validate:"omitempty,min=1"`
	Type        string        `json:"type"`
	Notes       *string       `json:"notes"`
}

// ReplaceSlotRequest cancels a conflicting lesson and books the new slot in
// its place, as one atomic operation.
type ReplaceSlotRequest struct {
	ConflictingLessonID string        `json:"conflicting_lesson_id" validate:"required"`
	ClientID            string        `json:"client_id" validate:"required"`
	Slot                CandidateSlot `json:"slot" validate:"required"`
	DurationMin         int           `json:"duration_min" validate:"omitempty,min=1"`
	Type                string        `json:"type"`
	Notes               *string       `json:"notes"`
}

// BookingConflict is the 409 payload returned when a commit-time re-check
// finds an overlap.
type BookingConflict struct {
	Message           string               `json:"message"`
	ConflictingLesson ConflictingLessonRef `json:"conflicting_lesson"`
	CanReplace        bool                 `json:"can_replace"`
}

// ReplaceSlotResponse reports the replacement outcome.
type ReplaceSlotResponse struct {
	CancelledLessonID string         `json:"cancelled_lesson_id"`
	Lesson            *models.Lesson `json:"lesson"`
}
