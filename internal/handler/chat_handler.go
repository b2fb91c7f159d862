package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/service"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// ChatHandler exposes the AI conversation endpoint.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler creates a new handler.
func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{service: svc}
}

// Reply godoc
// @Summary Chat with the AI persona
// @Description Returns the persona's reply; provider failures degrade to a fixed apology with HTTP 200
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body service.ChatRequest true "Chat payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /chat [post]
func (h *ChatHandler) Reply(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid chat payload"))
		return
	}

	reply, err := h.service.Reply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, reply, nil)
}
