package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/noah-isme/ais-api/internal/models"
)

// rankingConfig is the fully-resolved configuration a ranking run executes
// with. It is decoded once per request from the stored row (or defaults).
type rankingConfig struct {
	WTime          float64
	WCompact       float64
	WPriority      float64
	WorkingDays    []int
	PreferredTimes models.TimePreferences
	MinGapMinutes  int
	MaxGapMinutes  int
	GapImportance  float64
}

func defaultRankingConfig() rankingConfig {
	return rankingConfig{
		WTime:       0.33,
		WCompact:    0.33,
		WPriority:   0.34,
		WorkingDays: []int{1, 2, 3, 4, 5},
		PreferredTimes: models.TimePreferences{
			Morning: models.PeriodPreference{Enabled: false, Weight: 0.5},
			Day:     models.PeriodPreference{Enabled: true, Weight: 0.7},
			Evening: models.PeriodPreference{Enabled: false, Weight: 0.5},
		},
		MinGapMinutes: 60,
		MaxGapMinutes: 180,
		GapImportance: 0.5,
	}
}

// findLessonConflicts returns every PLANNED lesson whose half-open interval
// [start, end) overlaps the candidate window. Touching boundaries do not
// overlap, so a slot starting exactly when a lesson ends is free.
func findLessonConflicts(slotStart, slotEnd time.Time, lessons []models.Lesson) []models.Lesson {
	var conflicts []models.Lesson
	for _, lesson := range lessons {
		if lesson.Status != models.LessonStatusPlanned {
			continue
		}
		if slotStart.Before(lesson.EndTime()) && lesson.StartTime.Before(slotEnd) {
			conflicts = append(conflicts, lesson)
		}
	}
	return conflicts
}

// timeOfDayScore maps the slot's starting hour onto the tutor's period
// preferences. Morning is [6,12), day [12,18), evening [18,23). A disabled
// period, or an hour outside all three, scores the neutral 0.5.
func timeOfDayScore(slotStart time.Time, prefs models.TimePreferences) float64 {
	hour := slotStart.Hour()

	switch {
	case prefs.Morning.Enabled && hour >= 6 && hour < 12:
		return prefs.Morning.Weight
	case prefs.Day.Enabled && hour >= 12 && hour < 18:
		return prefs.Day.Weight
	case prefs.Evening.Enabled && hour >= 18 && hour < 23:
		return prefs.Evening.Weight
	}
	return 0.5
}

// compactnessScore rewards slots that sit a comfortable distance from the
// nearest existing lesson. The per-lesson gap is the smaller of the distances
// between the slot edges and the lesson edges, in minutes; the slot keeps the
// best score it earns against any lesson.
func compactnessScore(slotStart, slotEnd time.Time, lessons []models.Lesson, minGap, maxGap int) float64 {
	if len(lessons) == 0 {
		return 0.5
	}

	best := 0.0
	for _, lesson := range lessons {
		gapBefore := math.Abs(slotStart.Sub(lesson.EndTime()).Minutes())
		gapAfter := math.Abs(lesson.StartTime.Sub(slotEnd).Minutes())
		gap := math.Min(gapBefore, gapAfter)

		var score float64
		switch {
		case gap < float64(minGap):
			score = 0.2 + (gap/float64(minGap))*0.3
		case gap <= float64(maxGap):
			score = 1.0
		default:
			excess := gap - float64(maxGap)
			score = math.Max(0.3, 0.8-(excess/(float64(maxGap)*2))*0.5)
		}
		best = math.Max(best, score)
	}
	return best
}

// workingDayScore checks the slot's weekday (0 = Sunday) against the tutor's
// working-day set.
func workingDayScore(slotStart time.Time, workingDays []int) float64 {
	day := int(slotStart.Weekday())
	for _, d := range workingDays {
		if d == day {
			return 1.0
		}
	}
	return 0.3
}

// priorityScore favors VIP clients.
func priorityScore(vip bool) float64 {
	if vip {
		return 1.0
	}
	return 0.5
}

// aggregateScore combines the component scores. Gap importance shifts weight
// away from raw compactness and toward the working-day signal. A conflicted
// slot keeps a tenth of its score so it stays visible and orderable.
func aggregateScore(cfg rankingConfig, timeScore, compactScore, workingDay, priority float64, hasConflict bool) float64 {
	base := cfg.WTime*timeScore +
		cfg.WCompact*compactScore*(1-cfg.GapImportance*0.5) +
		cfg.WPriority*priority +
		cfg.GapImportance*0.3*workingDay

	if hasConflict {
		base *= 0.1
	}
	return base
}

// round2 rounds to two decimals, the precision every exposed score carries.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// buildExplanation produces the human-readable reason string for one slot.
func buildExplanation(timeScore, compactScore, workingDay float64, vip bool, conflict *models.Lesson) string {
	if conflict != nil {
		name := conflict.ClientName
		if name == "" {
			name = "another client"
		}
		return fmt.Sprintf("conflict: time already taken by %s", name)
	}

	var reasons []string
	if timeScore >= 0.7 {
		reasons = append(reasons, "convenient time")
	} else if timeScore < 0.5 {
		reasons = append(reasons, "inconvenient time")
	}

	if compactScore >= 0.8 {
		reasons = append(reasons, "optimal gap")
	} else if compactScore < 0.5 {
		reasons = append(reasons, "poor gap")
	}

	if workingDay >= 0.9 {
		reasons = append(reasons, "working day")
	} else {
		reasons = append(reasons, "non-working day")
	}

	if vip {
		reasons = append(reasons, "VIP client")
	}

	return strings.Join(reasons, ", ")
}
