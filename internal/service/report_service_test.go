package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
)

type fakeScoreAggregator struct {
	scores []models.StudentScore
}

func (f *fakeScoreAggregator) ScoresByClassroom(ctx context.Context, classroomID string, limit int) ([]models.StudentScore, error) {
	return f.scores, nil
}

type fakeOwnerChecker struct {
	classroom *models.Classroom
	ownerID   string
}

func (f *fakeOwnerChecker) FindForOwner(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error) {
	if claims.Role != models.RoleAdmin && claims.UserID != f.ownerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "classroom belongs to another teacher")
	}
	return f.classroom, nil
}

func (f *fakeOwnerChecker) AuthorizeMember(ctx context.Context, claims *models.JWTClaims, classroomID string) (*models.Classroom, error) {
	return f.classroom, nil
}

func testScores() []models.StudentScore {
	last := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []models.StudentScore{
		{Username: "student1", Attempts: 3, BestScore: 9, AverageScore: 7.3, LastActivity: &last},
		{Username: "student2", Attempts: 0, BestScore: 0, AverageScore: 0},
	}
}

func newTestReportService() *ReportService {
	checker := &fakeOwnerChecker{
		classroom: &models.Classroom{ID: "c1", Name: "Japanese 101", TeacherID: "t1", Code: "ABC123"},
		ownerID:   "t1",
	}
	return NewReportService(&fakeScoreAggregator{scores: testScores()}, checker, nil, 0)
}

func TestExportCSV(t *testing.T) {
	svc := newTestReportService()
	claims := &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}

	file, err := svc.Export(context.Background(), claims, "c1", FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Content)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Username")
	assert.Contains(t, lines[1], "student1")
	assert.Contains(t, lines[1], "7.3")
	assert.Contains(t, lines[2], "student2")
}

func TestExportPDF(t *testing.T) {
	svc := newTestReportService()
	claims := &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}

	file, err := svc.Export(context.Background(), claims, "c1", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := newTestReportService()
	claims := &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}

	_, err := svc.Export(context.Background(), claims, "c1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportOwnerOnly(t *testing.T) {
	svc := newTestReportService()
	claims := &models.JWTClaims{UserID: "t2", Role: models.RoleTeacher}

	_, err := svc.Export(context.Background(), claims, "c1", FormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
