package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/export"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

type scoreAggregator interface {
	ScoresByClassroom(ctx context.Context, classroomID string, limit int) ([]models.StudentScore, error)
}

// ReportFile is a rendered download: bytes plus the metadata the handler
// needs to set Content-Type and Content-Disposition.
type ReportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService renders classroom score reports for the owning teacher.
type ReportService struct {
	scores     scoreAggregator
	classrooms classroomOwnerChecker
	logger     *zap.Logger
	pageLimit  int
}

// NewReportService constructs a ReportService.
func NewReportService(scores scoreAggregator, classrooms classroomOwnerChecker, logger *zap.Logger, pageLimit int) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageLimit <= 0 {
		pageLimit = 500
	}
	return &ReportService{scores: scores, classrooms: classrooms, logger: logger, pageLimit: pageLimit}
}

// Scores returns the per-student aggregate for a classroom the caller owns.
func (s *ReportService) Scores(ctx context.Context, claims *models.JWTClaims, classroomID string) ([]models.StudentScore, error) {
	if _, err := s.classrooms.FindForOwner(ctx, claims, classroomID); err != nil {
		return nil, err
	}
	scores, err := s.scores.ScoresByClassroom(ctx, classroomID, s.pageLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate classroom scores")
	}
	return scores, nil
}

// Export renders the classroom score report as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, claims *models.JWTClaims, classroomID, format string) (*ReportFile, error) {
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format, use csv or pdf")
	}

	classroom, err := s.classrooms.FindForOwner(ctx, claims, classroomID)
	if err != nil {
		return nil, err
	}
	scores, err := s.scores.ScoresByClassroom(ctx, classroomID, s.pageLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate classroom scores")
	}

	data := scoreDataset(scores)
	stamp := time.Now().UTC().Format("20060102")

	switch format {
	case FormatCSV:
		content, err := export.CSV(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV report")
		}
		return &ReportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("scores_%s_%s.csv", classroom.Code, stamp),
		}, nil
	default:
		content, err := export.PDF(data, fmt.Sprintf("Score Report - %s", classroom.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF report")
		}
		return &ReportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("scores_%s_%s.pdf", classroom.Code, stamp),
		}, nil
	}
}

func scoreDataset(scores []models.StudentScore) export.Dataset {
	data := export.Dataset{
		Headers: []string{"Username", "Attempts", "Best Score", "Average Score", "Last Activity"},
	}
	for _, score := range scores {
		lastActivity := ""
		if score.LastActivity != nil {
			lastActivity = score.LastActivity.UTC().Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, map[string]string{
			"Username":      score.Username,
			"Attempts":      strconv.Itoa(score.Attempts),
			"Best Score":    strconv.Itoa(score.BestScore),
			"Average Score": strconv.FormatFloat(score.AverageScore, 'f', 1, 64),
			"Last Activity": lastActivity,
		})
	}
	return data
}
