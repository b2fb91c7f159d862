package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/service"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// QuizHandler exposes AI quiz endpoints.
type QuizHandler struct {
	service *service.QuizService
}

// NewQuizHandler creates a new handler.
func NewQuizHandler(svc *service.QuizService) *QuizHandler {
	return &QuizHandler{service: svc}
}

// Generate godoc
// @Summary Generate a quiz question
// @Description Asks the AI for one multiple-choice question at the given JLPT level
// @Tags Quiz
// @Accept json
// @Produce json
// @Param payload body service.GenerateQuizRequest true "Quiz request"
// @Success 200 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /quiz/generate [post]
func (h *QuizHandler) Generate(c *gin.Context) {
	var req service.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid quiz request"))
		return
	}

	item, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, item, nil)
}

// Save godoc
// @Summary Save a quiz result
// @Description Appends a learning log row for the caller's attempt
// @Tags Quiz
// @Accept json
// @Produce json
// @Param payload body service.SaveQuizResultRequest true "Result payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /quiz/results [post]
func (h *QuizHandler) Save(c *gin.Context) {
	var req service.SaveQuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid result payload"))
		return
	}

	claims := claimsFromContext(c)
	log, err := h.service.SaveResult(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, log)
}
