package models

import "time"

// LearningLog is an append-only record of a scored activity. Rows are never
// updated or deleted by the application and are listed newest-first.
type LearningLog struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	ActivityType string    `db:"activity_type" json:"activity_type"`
	Score        int       `db:"score" json:"score"`
	Details      string    `db:"details" json:"details"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// StudentScore aggregates a roster member's quiz activity for reports.
type StudentScore struct {
	Username     string     `db:"username" json:"username"`
	Attempts     int        `db:"attempts" json:"attempts"`
	BestScore    int        `db:"best_score" json:"best_score"`
	AverageScore float64    `db:"average_score" json:"average_score"`
	LastActivity *time.Time `db:"last_activity" json:"last_activity,omitempty"`
}
