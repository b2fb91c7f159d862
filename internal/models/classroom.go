package models

import "time"

// Classroom is a class owned by a teacher that students join via code.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Code      string    `db:"code" json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassroomDetail extends Classroom with the owning teacher's username.
type ClassroomDetail struct {
	Classroom
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// Enrollment links a student to a classroom. The (user, classroom) pair is
// unique; joining twice is a no-op.
type Enrollment struct {
	UserID      string    `db:"user_id" json:"user_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	JoinedAt    time.Time `db:"joined_at" json:"joined_at"`
}

// RosterEntry is one enrolled student on a classroom roster.
type RosterEntry struct {
	UserID   string    `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
