package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/service"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// ClassroomHandler exposes classroom and enrollment endpoints.
type ClassroomHandler struct {
	service *service.ClassroomService
	reports *service.ReportService
}

// NewClassroomHandler creates a new handler.
func NewClassroomHandler(svc *service.ClassroomService, reports *service.ReportService) *ClassroomHandler {
	return &ClassroomHandler{service: svc, reports: reports}
}

// Create godoc
// @Summary Create classroom
// @Description Creates a classroom with a fresh join code for the calling teacher
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.CreateClassroomRequest true "Classroom payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classrooms [post]
func (h *ClassroomHandler) Create(c *gin.Context) {
	var req service.CreateClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid classroom payload"))
		return
	}

	claims := claimsFromContext(c)
	classroom, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, classroom)
}

// Join godoc
// @Summary Join classroom by code
// @Description Enrolls the caller in the classroom matching the join code
// @Tags Classrooms
// @Accept json
// @Produce json
// @Param payload body service.JoinClassroomRequest true "Join payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/join [post]
func (h *ClassroomHandler) Join(c *gin.Context) {
	var req service.JoinClassroomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid join payload"))
		return
	}

	claims := claimsFromContext(c)
	result, err := h.service.Join(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Notice(c, http.StatusOK, result, result.Notice)
}

// ListOwned godoc
// @Summary List classrooms the caller teaches
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms/teaching [get]
func (h *ClassroomHandler) ListOwned(c *gin.Context) {
	claims := claimsFromContext(c)
	classrooms, err := h.service.ListOwned(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// ListEnrolled godoc
// @Summary List classrooms the caller has joined
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms/enrolled [get]
func (h *ClassroomHandler) ListEnrolled(c *gin.Context) {
	claims := claimsFromContext(c)
	classrooms, err := h.service.ListEnrolled(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// Detail godoc
// @Summary Classroom detail
// @Description Visible to the owning teacher, enrolled students and admins
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classrooms/{id} [get]
func (h *ClassroomHandler) Detail(c *gin.Context) {
	claims := claimsFromContext(c)
	detail, err := h.service.Detail(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Roster godoc
// @Summary Classroom roster
// @Description Enrolled students; owning teacher or admin only
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classrooms/{id}/roster [get]
func (h *ClassroomHandler) Roster(c *gin.Context) {
	claims := claimsFromContext(c)
	roster, err := h.service.Roster(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Scores godoc
// @Summary Classroom score report
// @Description Per-student quiz aggregates; owning teacher or admin only
// @Tags Classrooms
// @Produce json
// @Param id path string true "Classroom id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classrooms/{id}/scores [get]
func (h *ClassroomHandler) Scores(c *gin.Context) {
	claims := claimsFromContext(c)
	scores, err := h.reports.Scores(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scores, nil)
}

// ExportScores godoc
// @Summary Download classroom score report
// @Description Renders the score report as CSV or PDF
// @Tags Classrooms
// @Produce octet-stream
// @Param id path string true "Classroom id"
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /classrooms/{id}/scores/export [get]
func (h *ClassroomHandler) ExportScores(c *gin.Context) {
	claims := claimsFromContext(c)
	file, err := h.reports.Export(c.Request.Context(), claims, c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
