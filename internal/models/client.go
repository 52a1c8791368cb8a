package models

import "time"

// Client is a student (or their parent) managed by a single tutor.
type Client struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	VIP       bool      `db:"vip" json:"vip"`
	Active    bool      `db:"active" json:"active"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClientFilter captures filtering criteria for listing clients.
type ClientFilter struct {
	Search    string
	VIP       *bool
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
