package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/service"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// AssignmentHandler exposes classroom assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// Create godoc
// @Summary Post an assignment
// @Description Owning teacher only
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Classroom id"
// @Param payload body service.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classrooms/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	claims := claimsFromContext(c)
	assignment, err := h.service.Create(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, assignment)
}

// List godoc
// @Summary List classroom assignments
// @Description Newest first; classroom members only
// @Tags Assignments
// @Produce json
// @Param id path string true "Classroom id"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classrooms/{id}/assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	assignments, err := h.service.List(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
