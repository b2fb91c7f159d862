package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type fakeAudit struct {
	logs []*models.AuditLog
}

func (f *fakeAudit) Record(log *models.AuditLog) {
	f.logs = append(f.logs, log)
}

type fakeAuthRepo struct {
	users            map[string]*models.User
	refreshTokens    map[string]*models.RefreshToken
	lastLoginUpdated bool
	revokedAll       bool
	updatedHash      string
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	repo := &fakeAuthRepo{
		users:         map[string]*models.User{},
		refreshTokens: map[string]*models.RefreshToken{},
	}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.lastLoginUpdated = true
	return nil
}

func (f *fakeAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	f.updatedHash = passwordHash
	if u, ok := f.users[id]; ok {
		u.PasswordHash = passwordHash
		u.ForcePasswordChange = false
	}
	return nil
}

func (f *fakeAuthRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	f.revokedAll = true
	return nil
}

func (f *fakeAuthRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	f.refreshTokens[token.Token] = token
	return nil
}

func (f *fakeAuthRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if rt, ok := f.refreshTokens[token]; ok {
		return rt, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAuthRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, rt := range f.refreshTokens {
		if rt.ID == id {
			rt.Revoked = true
			rt.RevokedAt = &revokedAt
		}
	}
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "kotoba-test",
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := newFakeAuthRepo(&models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	audit := &fakeAudit{}
	svc := NewAuthService(repo, audit, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "stu123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "/home", res.Home)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.True(t, repo.lastLoginUpdated)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionLogin, audit.logs[0].Action)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestLoginHomeByRole(t *testing.T) {
	cases := []struct {
		role models.UserRole
		home string
	}{
		{models.RoleAdmin, "/admin"},
		{models.RoleTeacher, "/teacher"},
		{models.RoleStudent, "/home"},
	}
	for _, tc := range cases {
		repo := newFakeAuthRepo(&models.User{
			ID:           "u1",
			Username:     "user",
			PasswordHash: hashPassword(t, "pass123"),
			Role:         tc.role,
			Active:       true,
		})
		svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

		res, err := svc.Login(context.Background(), models.LoginRequest{Username: "user", Password: "pass123"})
		require.NoError(t, err)
		assert.Equal(t, tc.home, res.Home, "role %s", tc.role)
	}
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	repo := newFakeAuthRepo(&models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	_, err1 := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "nope"})
	_, err2 := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "nope"})
	require.Error(t, err1)
	require.Error(t, err2)
	assert.Equal(t, appErrors.FromError(err1).Code, appErrors.FromError(err2).Code)
	assert.Equal(t, appErrors.FromError(err1).Message, appErrors.FromError(err2).Message)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := newFakeAuthRepo(&models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       false,
	})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "stu123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshTokenRotates(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       true,
	}
	repo := newFakeAuthRepo(user)
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "stu123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	old := repo.refreshTokens[login.RefreshToken]
	assert.True(t, old.Revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       true,
	}
	repo := newFakeAuthRepo(user)
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "stu123"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else", models.LoginRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "u1", models.LoginRequest{}))
	assert.True(t, repo.refreshTokens[login.RefreshToken].Revoked)
}

func TestChangePassword(t *testing.T) {
	user := &models.User{
		ID:                  "u1",
		Username:            "student1",
		PasswordHash:        hashPassword(t, "stu123"),
		Role:                models.RoleStudent,
		Active:              true,
		ForcePasswordChange: true,
	}
	repo := newFakeAuthRepo(user)
	audit := &fakeAudit{}
	svc := NewAuthService(repo, audit, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "newpass1"})
	require.Error(t, err)

	require.NoError(t, svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{OldPassword: "stu123", NewPassword: "newpass1"}))
	assert.True(t, repo.revokedAll)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.updatedHash), []byte("newpass1")))
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPasswordChange, audit.logs[0].Action)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	repo := newFakeAuthRepo(&models.User{
		ID:           "u1",
		Username:     "student1",
		PasswordHash: hashPassword(t, "stu123"),
		Role:         models.RoleStudent,
		Active:       true,
	})
	svc := NewAuthService(repo, nil, nil, nil, testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "student1", Password: "stu123"})
	require.NoError(t, err)

	otherCfg := testAuthConfig()
	otherCfg.AccessTokenSecret = "different-secret"
	otherSvc := NewAuthService(repo, nil, nil, nil, otherCfg)

	_, err = otherSvc.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
