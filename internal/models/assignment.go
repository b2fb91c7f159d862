package models

import "time"

// Assignment is free-text coursework posted to a classroom by its teacher.
type Assignment struct {
	ID          string    `db:"id" json:"id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
