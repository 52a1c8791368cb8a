package models

import "time"

// Payment records money received from a client, optionally tied to a lesson.
type Payment struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClientID  string    `db:"client_id" json:"client_id"`
	LessonID  *string   `db:"lesson_id" json:"lesson_id,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	Method    string    `db:"method" json:"method"`
	PaidAt    time.Time `db:"paid_at" json:"paid_at"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PaymentFilter captures filtering criteria for listing payments.
type PaymentFilter struct {
	ClientID string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// PaymentSummary aggregates payment totals over a period.
type PaymentSummary struct {
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
	Count       int     `db:"count" json:"count"`
}
