package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kotoba-labs/kotoba-api/internal/models"
)

// AssignmentRepository provides database access for classroom assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, classroom_id, title, content, created_at) VALUES (:id, :classroom_id, :title, :content, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// ListByClassroom returns a classroom's assignments, newest first.
func (r *AssignmentRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Assignment, error) {
	const query = `SELECT id, classroom_id, title, content, created_at FROM assignments WHERE classroom_id = $1 ORDER BY created_at DESC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, classroomID); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
