package dto

import "github.com/noah-isme/ais-api/internal/models"

// UpdateSlotWeightsRequest partially updates a tutor's ranking
// configuration. Nil fields keep their stored values.
type UpdateSlotWeightsRequest struct {
	WTime          *float64                `json:"w_time" validate:"omitempty,gte=0,lte=1"`
	WCompact       *float64                `json:"w_compact" validate:"omitempty,gte=0,lte=1"`
	WPriority      *float64                `json:"w_priority" validate:"omitempty,gte=0,lte=1"`
	WorkingDays    []int                   `json:"working_days" validate:"omitempty,min=1,dive,gte=0,lte=6"`
	PreferredTimes *models.TimePreferences `json:"preferred_times"`
	MinGapMinutes  *int                    `json:"min_gap_minutes" validate:"omitempty,gte=0"`
	MaxGapMinutes  *int                    `json:"max_gap_minutes" validate:"omitempty,gte=0"`
	GapImportance  *float64                `json:"gap_importance" validate:"omitempty,gte=0.1,lte=0.9"`
}
