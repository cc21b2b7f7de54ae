package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

func errorRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		c.Error(fmt.Errorf("stage service: %w", err))
	})
	return r
}

func doFail(t *testing.T, r *gin.Engine) (int, string) {
	t.Helper()
	req, _ := http.NewRequest("GET", "/fail", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body["error"]
}

func TestErrorHandler_NotFoundSentinels(t *testing.T) {
	cases := []struct {
		err     error
		message string
	}{
		{repository.ErrUserNotFound, "пользователь не найден"},
		{repository.ErrBusinessNotFound, "объявление не найдено"},
		{repository.ErrDealNotFound, "сделка не найдена"},
		{repository.ErrChecklistItemNotFound, "пункт чек-листа не найден"},
		{repository.ErrDocumentNotFound, "документ не найден"},
		{repository.ErrApprovalNotFound, "согласование не найдено"},
		{repository.ErrCommentNotFound, "комментарий не найден"},
		{repository.ErrMediaNotFound, "файл не найден"},
		{repository.ErrNotificationNotFound, "уведомление не найдено"},
	}

	for _, tc := range cases {
		code, message := doFail(t, errorRouter(tc.err))
		assert.Equal(t, http.StatusNotFound, code, "ошибка %v", tc.err)
		assert.Equal(t, tc.message, message)
	}
}

func TestErrorHandler_SessionNotFound(t *testing.T) {
	code, message := doFail(t, errorRouter(repository.ErrSessionNotFound))

	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "сессия не найдена", message)
}

func TestErrorHandler_ForbiddenAndConflict(t *testing.T) {
	code, _ := doFail(t, errorRouter(service.ErrNotDealParty))
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = doFail(t, errorRouter(service.ErrApprovalResolved))
	assert.Equal(t, http.StatusConflict, code)
}

func TestErrorHandler_MasksInternalErrors(t *testing.T) {
	code, message := doFail(t, errorRouter(fmt.Errorf("sql: no rows in result set")))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "внутренняя ошибка сервера", message)
}
