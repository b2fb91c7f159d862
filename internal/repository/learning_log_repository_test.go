package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/kotoba-api/internal/models"
)

func TestCreateLearningLog(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLearningLogRepository(db)

	mock.ExpectExec("INSERT INTO learning_logs").WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.LearningLog{UserID: "u1", ActivityType: "N3 Quiz", Score: 8, Details: "AI Quiz"}
	require.NoError(t, repo.Create(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLearningLogRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "activity_type", "score", "details", "created_at"}).
		AddRow("l2", "u1", "N3 Quiz", 9, "AI Quiz", now).
		AddRow("l1", "u1", "N3 Quiz", 7, "AI Quiz", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, activity_type, score, details, created_at FROM learning_logs WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2")).
		WithArgs("u1", 10).
		WillReturnRows(rows)

	logs, err := repo.ListRecentByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "l2", logs[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScoresByClassroom(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLearningLogRepository(db)

	last := time.Now()
	rows := sqlmock.NewRows([]string{"username", "attempts", "best_score", "average_score", "last_activity"}).
		AddRow("student1", 3, 9, 7.3, last).
		AddRow("student2", 0, 0, 0.0, nil)
	mock.ExpectQuery("SELECT u.username,").
		WithArgs("c1", 500).
		WillReturnRows(rows)

	scores, err := repo.ScoresByClassroom(context.Background(), "c1", 0)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 9, scores[0].BestScore)
	assert.Nil(t, scores[1].LastActivity, "never-active students keep a null last activity")
	assert.NoError(t, mock.ExpectationsWereMet())
}
