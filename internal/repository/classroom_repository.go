package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kotoba-labs/kotoba-api/internal/models"
)

// ClassroomRepository provides database access for classrooms and the
// enrollments join table.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new instance of ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// Create inserts a new classroom.
func (r *ClassroomRepository) Create(ctx context.Context, classroom *models.Classroom) error {
	if classroom.ID == "" {
		classroom.ID = uuid.NewString()
	}
	if classroom.CreatedAt.IsZero() {
		classroom.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classrooms (id, name, teacher_id, code, created_at) VALUES (:id, :name, :teacher_id, :code, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, classroom); err != nil {
		return fmt.Errorf("create classroom: %w", err)
	}
	return nil
}

// FindByID returns a classroom by identifier.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	const query = `SELECT id, name, teacher_id, code, created_at FROM classrooms WHERE id = $1 LIMIT 1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom by id: %w", err)
	}
	return &classroom, nil
}

// FindDetailByID returns a classroom with the owning teacher's username.
func (r *ClassroomRepository) FindDetailByID(ctx context.Context, id string) (*models.ClassroomDetail, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, c.code, c.created_at, u.username AS teacher_name FROM classrooms c JOIN users u ON u.id = c.teacher_id WHERE c.id = $1 LIMIT 1`
	var detail models.ClassroomDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom detail: %w", err)
	}
	return &detail, nil
}

// FindByCode returns the classroom matching a join code exactly.
func (r *ClassroomRepository) FindByCode(ctx context.Context, code string) (*models.Classroom, error) {
	const query = `SELECT id, name, teacher_id, code, created_at FROM classrooms WHERE code = $1 LIMIT 1`
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find classroom by code: %w", err)
	}
	return &classroom, nil
}

// CodeExists reports whether a join code is already issued.
func (r *ClassroomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM classrooms WHERE code = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check classroom code: %w", err)
	}
	return exists, nil
}

// ListByTeacher returns the classrooms owned by a teacher.
func (r *ClassroomRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	const query = `SELECT id, name, teacher_id, code, created_at FROM classrooms WHERE teacher_id = $1 ORDER BY created_at DESC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classrooms by teacher: %w", err)
	}
	return classrooms, nil
}

// CountByTeacher returns how many classrooms a teacher owns.
func (r *ClassroomRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM classrooms WHERE teacher_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count classrooms by teacher: %w", err)
	}
	return count, nil
}

// ListEnrolledByUser returns the classrooms a student has joined.
func (r *ClassroomRepository) ListEnrolledByUser(ctx context.Context, userID string) ([]models.ClassroomDetail, error) {
	const query = `SELECT c.id, c.name, c.teacher_id, c.code, c.created_at, u.username AS teacher_name FROM classrooms c JOIN enrollments e ON e.classroom_id = c.id JOIN users u ON u.id = c.teacher_id WHERE e.user_id = $1 ORDER BY e.joined_at DESC`
	var classrooms []models.ClassroomDetail
	if err := r.db.SelectContext(ctx, &classrooms, query, userID); err != nil {
		return nil, fmt.Errorf("list enrolled classrooms: %w", err)
	}
	return classrooms, nil
}

// IsEnrolled reports whether the student already joined the classroom.
func (r *ClassroomRepository) IsEnrolled(ctx context.Context, userID, classroomID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND classroom_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, classroomID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}

// Enroll inserts an enrollment row.
func (r *ClassroomRepository) Enroll(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.JoinedAt.IsZero() {
		enrollment.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO enrollments (user_id, classroom_id, joined_at) VALUES (:user_id, :classroom_id, :joined_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Roster returns the enrolled students of a classroom.
func (r *ClassroomRepository) Roster(ctx context.Context, classroomID string) ([]models.RosterEntry, error) {
	const query = `SELECT e.user_id, u.username, e.joined_at FROM enrollments e JOIN users u ON u.id = e.user_id WHERE e.classroom_id = $1 ORDER BY u.username ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, classroomID); err != nil {
		return nil, fmt.Errorf("load classroom roster: %w", err)
	}
	return roster, nil
}
