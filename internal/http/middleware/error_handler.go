package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/bizbridge/acquisition-backend/internal/logger"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

// ErrorHandler обрабатывает ошибки централизованно.
// Маскирует внутренние ошибки и возвращает понятные сообщения клиенту.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		if len(c.Errors) > 0 {
			err := c.Errors.Last()

			statusCode := http.StatusInternalServerError
			message := "внутренняя ошибка сервера"

			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  err.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			switch {
			case errors.Is(err.Err, repository.ErrUserNotFound):
				statusCode = http.StatusNotFound
				message = "пользователь не найден"
			case errors.Is(err.Err, repository.ErrBusinessNotFound):
				statusCode = http.StatusNotFound
				message = "объявление не найдено"
			case errors.Is(err.Err, repository.ErrMatchNotFound):
				statusCode = http.StatusNotFound
				message = "заявка не найдена"
			case errors.Is(err.Err, repository.ErrDealNotFound):
				statusCode = http.StatusNotFound
				message = "сделка не найдена"
			case errors.Is(err.Err, repository.ErrStageNotFound):
				statusCode = http.StatusNotFound
				message = "этап не найден"
			case errors.Is(err.Err, repository.ErrConversationNotFound):
				statusCode = http.StatusNotFound
				message = "переписка не найдена"
			case errors.Is(err.Err, repository.ErrChecklistItemNotFound):
				statusCode = http.StatusNotFound
				message = "пункт чек-листа не найден"
			case errors.Is(err.Err, repository.ErrDocumentNotFound):
				statusCode = http.StatusNotFound
				message = "документ не найден"
			case errors.Is(err.Err, repository.ErrApprovalNotFound):
				statusCode = http.StatusNotFound
				message = "согласование не найдено"
			case errors.Is(err.Err, repository.ErrCommentNotFound):
				statusCode = http.StatusNotFound
				message = "комментарий не найден"
			case errors.Is(err.Err, repository.ErrMediaNotFound):
				statusCode = http.StatusNotFound
				message = "файл не найден"
			case errors.Is(err.Err, repository.ErrNotificationNotFound):
				statusCode = http.StatusNotFound
				message = "уведомление не найдено"
			case errors.Is(err.Err, repository.ErrSessionNotFound):
				statusCode = http.StatusUnauthorized
				message = "сессия не найдена"
			case errors.Is(err.Err, service.ErrNotDealParty),
				errors.Is(err.Err, service.ErrNotConversationMember),
				errors.Is(err.Err, service.ErrNotBusinessOwner):
				statusCode = http.StatusForbidden
				message = err.Err.Error()
			case errors.Is(err.Err, service.ErrTaskNotAllowed),
				errors.Is(err.Err, service.ErrApprovalNotAllowed):
				statusCode = http.StatusForbidden
				message = err.Err.Error()
			case errors.Is(err.Err, service.ErrStageNotReady),
				errors.Is(err.Err, service.ErrStageCompleted),
				errors.Is(err.Err, service.ErrApprovalResolved),
				errors.Is(err.Err, service.ErrRejectionReasonRequired),
				errors.Is(err.Err, service.ErrMatchAlreadyExists):
				statusCode = http.StatusConflict
				message = err.Err.Error()
			default:
				if errStr := err.Error(); errStr != "" && !containsInternalKeywords(errStr) {
					message = errStr
					if contains(errStr, "неверный") || contains(errStr, "невалид") || contains(errStr, "недопустим") {
						statusCode = http.StatusBadRequest
					} else if contains(errStr, "нет прав") || contains(errStr, "не авторизован") {
						statusCode = http.StatusForbidden
					}
				}
			}

			c.JSON(statusCode, gin.H{"error": message})
		}
	}
}

// containsInternalKeywords проверяет, содержит ли строка ключевые слова внутренних ошибок.
func containsInternalKeywords(s string) bool {
	keywords := []string{
		"sql:",
		"database",
		"connection",
		"timeout",
		"internal",
		"panic",
		"runtime",
	}

	for _, keyword := range keywords {
		if contains(s, keyword) {
			return true
		}
	}
	return false
}

// contains проверяет, содержит ли строка подстроку (case-insensitive).
func contains(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
