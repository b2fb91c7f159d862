package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Assignment, error)
}

type classroomOwnerChecker interface {
	FindForOwner(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error)
	AuthorizeMember(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error)
}

// CreateAssignmentRequest is the teacher's assignment payload.
type CreateAssignmentRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"max=2000"`
}

// AssignmentService manages classroom assignments.
type AssignmentService struct {
	repo       assignmentRepository
	classrooms classroomOwnerChecker
	audit      auditRecorder
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, classrooms classroomOwnerChecker, audit auditRecorder, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, classrooms: classrooms, audit: audit, validator: validate, logger: logger}
}

// Create posts an assignment to a classroom the caller owns.
func (s *AssignmentService) Create(ctx context.Context, claims *models.JWTClaims, classroomID string, req CreateAssignmentRequest) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.classrooms.FindForOwner(ctx, claims, classroomID); err != nil {
		return nil, err
	}

	assignment := &models.Assignment{
		ClassroomID: classroomID,
		Title:       strings.TrimSpace(req.Title),
		Content:     strings.TrimSpace(req.Content),
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	payload, _ := json.Marshal(map[string]string{"title": assignment.Title, "classroom_id": classroomID})
	if s.audit != nil {
		s.audit.Record(&models.AuditLog{
			UserID:     &claims.UserID,
			Action:     models.AuditActionAssignCreate,
			Resource:   "assignments",
			ResourceID: &assignment.ID,
			NewValues:  payload,
		})
	}

	return assignment, nil
}

// List returns a classroom's assignments, newest first, for any member.
func (s *AssignmentService) List(ctx context.Context, claims *models.JWTClaims, classroomID string) ([]models.Assignment, error) {
	if _, err := s.classrooms.AuthorizeMember(ctx, claims, classroomID); err != nil {
		return nil, err
	}
	assignments, err := s.repo.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}
