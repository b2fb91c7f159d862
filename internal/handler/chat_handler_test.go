package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotoba-labs/kotoba-api/internal/service"
)

func TestChatHandlerReply(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewChatService(&stubCompleter{response: "いらっしゃいませ！"}, nil, nil, nil, 5)
	handler := NewChatHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"こんにちは","history":[]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Reply(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "いらっしゃいませ！", envelope.Data["reply"])
}

func TestChatHandlerFailureIsStillOK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewChatService(&stubCompleter{err: errors.New("provider down")}, nil, nil, nil, 5)
	handler := NewChatHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"こんにちは"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Reply(c)

	require.Equal(t, http.StatusOK, rec.Code, "provider failure must not change the status code")
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "すみません、エラーが発生しました。", envelope.Data["reply"])
}

func TestChatHandlerRejectsEmptyMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewChatService(&stubCompleter{response: "はい"}, nil, nil, nil, 5)
	handler := NewChatHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":""}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Reply(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
