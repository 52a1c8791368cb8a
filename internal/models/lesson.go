package models

import "time"

// LessonStatus enumerates the lifecycle of a lesson.
type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "PLANNED"
	LessonStatusDone      LessonStatus = "DONE"
	LessonStatusCancelled LessonStatus = "CANCELLED"
)

// Lesson is a booked tutoring session. Only PLANNED lessons participate in
// conflict checks and compactness scoring.
type Lesson struct {
	ID          string       `db:"id" json:"id"`
	TeacherID   string       `db:"teacher_id" json:"teacher_id"`
	ClientID    string       `db:"client_id" json:"client_id"`
	ClientName  string       `db:"client_name" json:"client_name,omitempty"`
	StartTime   time.Time    `db:"start_time" json:"start_time"`
	DurationMin int          `db:"duration_min" json:"duration_min"`
	Status      LessonStatus `db:"status" json:"status"`
	Type        string       `db:"type" json:"type"`
	Notes       *string      `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// EndTime returns the derived exclusive end of the lesson interval.
func (l Lesson) EndTime() time.Time {
	return l.StartTime.Add(time.Duration(l.DurationMin) * time.Minute)
}

// LessonFilter captures filtering criteria for listing lessons.
type LessonFilter struct {
	ClientID  string
	Status    LessonStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortOrder string
}
