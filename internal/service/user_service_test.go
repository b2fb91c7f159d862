package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type fakeUserRepo struct {
	users   map[string]*models.User
	deleted []string
	updates int
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[string]*models.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.updates++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeClassroomCounter struct {
	counts map[string]int
}

func (f *fakeClassroomCounter) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	return f.counts[teacherID], nil
}

func TestCreateUserNormalizesUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeClassroomCounter{}, nil, nil, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "  Student3 ",
		Password: "secret1",
		Role:     models.RoleStudent,
		Active:   true,
	}, "admin", models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, "student3", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "student1", Role: models.RoleStudent})
	svc := NewUserService(repo, &fakeClassroomCounter{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Username: "Student1",
		Password: "secret1",
		Role:     models.RoleStudent,
	}, "admin", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUpdateUserKeepsPasswordWhenOmitted(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "student1", Role: models.RoleStudent, PasswordHash: "orig-hash"})
	svc := NewUserService(repo, &fakeClassroomCounter{}, nil, nil, nil)

	user, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		Username: "student1",
		Role:     models.RoleTeacher,
	}, "admin", models.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.Equal(t, "orig-hash", repo.users["u1"].PasswordHash)

	_, err = svc.Update(context.Background(), "u1", UpdateUserRequest{
		Username: "student1",
		Role:     models.RoleTeacher,
		Password: "newpass1",
	}, "admin", models.LoginRequest{})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u1"].PasswordHash), []byte("newpass1")))
}

func TestUpdateUserHashFailureWritesNothing(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "student1", Role: models.RoleStudent, PasswordHash: "orig-hash"})
	svc := NewUserService(repo, &fakeClassroomCounter{}, nil, nil, nil)

	// bcrypt refuses passwords longer than 72 bytes.
	long := strings.Repeat("x", 80)
	_, err := svc.Update(context.Background(), "u1", UpdateUserRequest{
		Username: "renamed",
		Role:     models.RoleTeacher,
		Password: long,
	}, "admin", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	assert.Equal(t, 0, repo.updates)
	assert.Equal(t, "orig-hash", repo.users["u1"].PasswordHash)
}

func TestDeleteUserRefusedWhileOwningClassrooms(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "t1", Username: "teacher1", Role: models.RoleTeacher})
	counter := &fakeClassroomCounter{counts: map[string]int{"t1": 2}}
	svc := NewUserService(repo, counter, nil, nil, nil)

	err := svc.Delete(context.Background(), "t1", "admin", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.users, "t1")
}

func TestDeleteUser(t *testing.T) {
	repo := newFakeUserRepo(&models.User{ID: "u1", Username: "student1", Role: models.RoleStudent})
	audit := &fakeAudit{}
	svc := NewUserService(repo, &fakeClassroomCounter{}, audit, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "u1", "admin", models.LoginRequest{}))
	assert.NotContains(t, repo.users, "u1")
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionUserDelete, audit.logs[0].Action)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 0, pagination.TotalCount)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc := NewUserService(newFakeUserRepo(), &fakeClassroomCounter{}, nil, nil, nil)

	err := svc.Delete(context.Background(), "ghost", "admin", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
