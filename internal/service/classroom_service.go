package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type classroomRepository interface {
	Create(ctx context.Context, classroom *models.Classroom) error
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	FindDetailByID(ctx context.Context, id string) (*models.ClassroomDetail, error)
	FindByCode(ctx context.Context, code string) (*models.Classroom, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Classroom, error)
	ListEnrolledByUser(ctx context.Context, userID string) ([]models.ClassroomDetail, error)
	IsEnrolled(ctx context.Context, userID, classroomID string) (bool, error)
	Enroll(ctx context.Context, enrollment *models.Enrollment) error
	Roster(ctx context.Context, classroomID string) ([]models.RosterEntry, error)
}

// CreateClassroomRequest is the teacher's class-creation payload.
type CreateClassroomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// JoinClassroomRequest carries the student-entered join code.
type JoinClassroomRequest struct {
	Code string `json:"code" validate:"required"`
}

// JoinResult reports the outcome of a join attempt. AlreadyEnrolled marks the
// idempotent second join; Notice carries the user-visible message.
type JoinResult struct {
	Classroom       *models.Classroom `json:"classroom"`
	AlreadyEnrolled bool              `json:"already_enrolled"`
	Notice          string            `json:"-"`
}

// ClassroomConfig tunes join-code issuance.
type ClassroomConfig struct {
	CodeLength      int
	CodeMaxAttempts int
}

// ClassroomService orchestrates classroom and enrollment workflows.
type ClassroomService struct {
	repo      classroomRepository
	audit     auditRecorder
	validator *validator.Validate
	logger    *zap.Logger
	config    ClassroomConfig
}

// NewClassroomService constructs a ClassroomService.
func NewClassroomService(repo classroomRepository, audit auditRecorder, validate *validator.Validate, logger *zap.Logger, config ClassroomConfig) *ClassroomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.CodeLength <= 0 {
		config.CodeLength = 6
	}
	if config.CodeMaxAttempts <= 0 {
		config.CodeMaxAttempts = 5
	}
	return &ClassroomService{repo: repo, audit: audit, validator: validate, logger: logger, config: config}
}

// Create issues a classroom with a fresh join code for the teacher. On a code
// collision a new code is generated, up to a bounded number of attempts.
func (s *ClassroomService) Create(ctx context.Context, teacherID string, req CreateClassroomRequest) (*models.Classroom, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid classroom payload")
	}

	code, err := s.issueCode(ctx)
	if err != nil {
		return nil, err
	}

	classroom := &models.Classroom{
		Name:      strings.TrimSpace(req.Name),
		TeacherID: teacherID,
		Code:      code,
	}
	if err := s.repo.Create(ctx, classroom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create classroom")
	}

	payload, _ := json.Marshal(map[string]string{"name": classroom.Name, "code": classroom.Code})
	s.record(&models.AuditLog{
		UserID:     &teacherID,
		Action:     models.AuditActionClassCreate,
		Resource:   "classrooms",
		ResourceID: &classroom.ID,
		NewValues:  payload,
	})

	return classroom, nil
}

// Join enrolls the student in the classroom matching the trimmed code. Three
// outcomes: unknown code, already enrolled (no duplicate row), or a new
// enrollment naming the classroom.
func (s *ClassroomService) Join(ctx context.Context, userID string, req JoinClassroomRequest) (*JoinResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid join payload")
	}

	code := strings.TrimSpace(req.Code)
	classroom, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom code not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up classroom")
	}

	enrolled, err := s.repo.IsEnrolled(ctx, userID, classroom.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if enrolled {
		return &JoinResult{
			Classroom:       classroom,
			AlreadyEnrolled: true,
			Notice:          fmt.Sprintf("You have already joined %s", classroom.Name),
		}, nil
	}

	if err := s.repo.Enroll(ctx, &models.Enrollment{UserID: userID, ClassroomID: classroom.ID}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}

	s.record(&models.AuditLog{
		UserID:     &userID,
		Action:     models.AuditActionClassJoin,
		Resource:   "classrooms",
		ResourceID: &classroom.ID,
		NewValues:  []byte(`{"status":"joined"}`),
	})

	return &JoinResult{
		Classroom: classroom,
		Notice:    fmt.Sprintf("Joined classroom: %s", classroom.Name),
	}, nil
}

// ListEnrolled returns the classrooms the student has joined.
func (s *ClassroomService) ListEnrolled(ctx context.Context, userID string) ([]models.ClassroomDetail, error) {
	classrooms, err := s.repo.ListEnrolledByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrolled classrooms")
	}
	return classrooms, nil
}

// ListOwned returns the classrooms a teacher owns.
func (s *ClassroomService) ListOwned(ctx context.Context, teacherID string) ([]models.Classroom, error) {
	classrooms, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list owned classrooms")
	}
	return classrooms, nil
}

// Detail returns the classroom for a caller allowed to see it: enrolled
// students, the owning teacher, or an admin.
func (s *ClassroomService) Detail(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.ClassroomDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}

	if err := s.authorize(ctx, claims, &detail.Classroom); err != nil {
		return nil, err
	}
	return detail, nil
}

// Roster returns the enrolled students; owner or admin only.
func (s *ClassroomService) Roster(ctx context.Context, claims *models.JWTClaims, classroomID string) ([]models.RosterEntry, error) {
	classroom, err := s.repo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if claims.Role != models.RoleAdmin && classroom.TeacherID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}

	roster, err := s.repo.Roster(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}

// Authorize checks that the caller may access the classroom: admins always,
// the owning teacher, or an enrolled student.
func (s *ClassroomService) authorize(ctx context.Context, claims *models.JWTClaims, classroom *models.Classroom) error {
	switch {
	case claims.Role == models.RoleAdmin:
		return nil
	case classroom.TeacherID == claims.UserID:
		return nil
	}
	enrolled, err := s.repo.IsEnrolled(ctx, claims.UserID, classroom.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return appErrors.Clone(appErrors.ErrForbidden, "not enrolled in this classroom")
	}
	return nil
}

// FindForOwner loads a classroom and verifies the caller owns it (or is an
// admin). Used by the assignment workflow.
func (s *ClassroomService) FindForOwner(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if claims.Role != models.RoleAdmin && classroom.TeacherID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}
	return classroom, nil
}

// AuthorizeMember exposes the member access check for sibling services.
func (s *ClassroomService) AuthorizeMember(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error) {
	classroom, err := s.repo.FindByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if err := s.authorize(ctx, claims, classroom); err != nil {
		return nil, err
	}
	return classroom, nil
}

func (s *ClassroomService) issueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.config.CodeMaxAttempts; attempt++ {
		code, err := randomCode(s.config.CodeLength)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate join code")
		}
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check join code")
		}
		if !exists {
			return code, nil
		}
		s.logger.Warn("join code collision, regenerating", zap.Int("attempt", attempt+1))
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not issue a unique join code")
}

func (s *ClassroomService) record(log *models.AuditLog) {
	if s.audit != nil {
		s.audit.Record(log)
	}
}

func randomCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = codeAlphabet[n.Int64()]
	}
	return string(out), nil
}
