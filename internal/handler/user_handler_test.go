package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	"github.com/kotoba-labs/kotoba-api/internal/service"
)

type stubUserRepo struct {
	users      []models.User
	lastFilter models.UserFilter
}

func (s *stubUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	s.lastFilter = filter
	return s.users, len(s.users), nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return nil, sql.ErrNoRows
}

func (s *stubUserRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) Update(ctx context.Context, user *models.User) error { return nil }

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id string) error { return nil }

type stubClassroomCounter struct{}

func (s *stubClassroomCounter) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	return 0, nil
}

func newUserListHandler(repo *stubUserRepo) *UserHandler {
	svc := service.NewUserService(repo, &stubClassroomCounter{}, nil, nil, nil)
	return NewUserHandler(svc)
}

func TestUserListHandlerRoleFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubUserRepo{users: []models.User{{ID: "u1", Username: "student1", Role: models.RoleStudent}}}
	handler := newUserListHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/users?role=STUDENT", nil)

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.lastFilter.Role)
	assert.Equal(t, models.RoleStudent, *repo.lastFilter.Role)
}

func TestUserListHandlerRejectsUnknownRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubUserRepo{}
	handler := newUserListHandler(repo)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin/users?role=WIZARD", nil)

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, repo.lastFilter.Role)
}
