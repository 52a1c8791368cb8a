package models

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// PeriodPreference is one configurable time-of-day window.
type PeriodPreference struct {
	Enabled bool    `json:"enabled"`
	Weight  float64 `json:"weight"`
}

// TimePreferences holds the three known scoring periods. The set of periods
// is fixed, so this is a closed struct rather than an open map.
type TimePreferences struct {
	Morning PeriodPreference `json:"morning"`
	Day     PeriodPreference `json:"day"`
	Evening PeriodPreference `json:"evening"`
}

// SlotWeight stores one tutor's slot ranking configuration. working_days and
// preferred_times are JSONB columns.
type SlotWeight struct {
	ID             string         `db:"id" json:"id"`
	TeacherID      string         `db:"teacher_id" json:"teacher_id"`
	WTime          float64        `db:"w_time" json:"w_time"`
	WCompact       float64        `db:"w_compact" json:"w_compact"`
	WPriority      float64        `db:"w_priority" json:"w_priority"`
	WorkingDays    types.JSONText `db:"working_days" json:"working_days"`
	PreferredTimes types.JSONText `db:"preferred_times" json:"preferred_times"`
	MinGapMinutes  int            `db:"min_gap_minutes" json:"min_gap_minutes"`
	MaxGapMinutes  int            `db:"max_gap_minutes" json:"max_gap_minutes"`
	GapImportance  float64        `db:"gap_importance" json:"gap_importance"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// DecodeWorkingDays unpacks the working_days JSON array (0=Sunday..6=Saturday).
func (w *SlotWeight) DecodeWorkingDays() []int {
	var days []int
	if len(w.WorkingDays) > 0 {
		_ = json.Unmarshal(w.WorkingDays, &days)
	}
	return days
}

// SetWorkingDays encodes the working day set into the JSON column.
func (w *SlotWeight) SetWorkingDays(days []int) error {
	raw, err := json.Marshal(days)
	if err != nil {
		return err
	}
	w.WorkingDays = types.JSONText(raw)
	return nil
}

// DecodePreferredTimes unpacks the preferred_times JSON document. Missing or
// malformed data yields the zero value, which scores neutrally.
func (w *SlotWeight) DecodePreferredTimes() TimePreferences {
	var prefs TimePreferences
	if len(w.PreferredTimes) > 0 {
		_ = json.Unmarshal(w.PreferredTimes, &prefs)
	}
	return prefs
}

// SetPreferredTimes encodes the period preferences into the JSON column.
func (w *SlotWeight) SetPreferredTimes(prefs TimePreferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	w.PreferredTimes = types.JSONText(raw)
	return nil
}
