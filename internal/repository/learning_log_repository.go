package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kotoba-labs/kotoba-api/internal/models"
)

// LearningLogRepository provides database access for the append-only
// learning activity log.
type LearningLogRepository struct {
	db *sqlx.DB
}

// NewLearningLogRepository creates a new instance of LearningLogRepository.
func NewLearningLogRepository(db *sqlx.DB) *LearningLogRepository {
	return &LearningLogRepository{db: db}
}

// Create appends a learning log row. Rows are never updated or deleted.
func (r *LearningLogRepository) Create(ctx context.Context, log *models.LearningLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO learning_logs (id, user_id, activity_type, score, details, created_at) VALUES (:id, :user_id, :activity_type, :score, :details, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create learning log: %w", err)
	}
	return nil
}

// ListRecentByUser returns the user's most recent logs, newest first.
func (r *LearningLogRepository) ListRecentByUser(ctx context.Context, userID string, limit int) ([]models.LearningLog, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT id, user_id, activity_type, score, details, created_at FROM learning_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	var logs []models.LearningLog
	if err := r.db.SelectContext(ctx, &logs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list recent learning logs: %w", err)
	}
	return logs, nil
}

// ScoresByClassroom aggregates quiz activity per enrolled student for the
// classroom report.
func (r *LearningLogRepository) ScoresByClassroom(ctx context.Context, classroomID string, limit int) ([]models.StudentScore, error) {
	if limit <= 0 {
		limit = 500
	}
	const query = `SELECT u.username,
		COUNT(l.id) AS attempts,
		COALESCE(MAX(l.score), 0) AS best_score,
		COALESCE(AVG(l.score), 0) AS average_score,
		MAX(l.created_at) AS last_activity
	FROM enrollments e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN learning_logs l ON l.user_id = e.user_id
	WHERE e.classroom_id = $1
	GROUP BY u.username
	ORDER BY u.username ASC
	LIMIT $2`
	var scores []models.StudentScore
	if err := r.db.SelectContext(ctx, &scores, query, classroomID, limit); err != nil {
		return nil, fmt.Errorf("aggregate classroom scores: %w", err)
	}
	return scores, nil
}
