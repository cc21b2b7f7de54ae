package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/dto"
	"github.com/bizbridge/acquisition-backend/internal/http/handlers/common"
	"github.com/bizbridge/acquisition-backend/internal/service"
	"github.com/bizbridge/acquisition-backend/internal/workflow"
)

// StageHandler предоставляет HTTP слой для этапов сделки:
// чеклисты, документы, комментарии и согласования.
type StageHandler struct {
	stages *service.StageService
}

func NewStageHandler(stages *service.StageService) *StageHandler {
	return &StageHandler{stages: stages}
}

// stageParams извлекает идентификатор сделки и ключ этапа из URL.
func stageParams(c *gin.Context) (uuid.UUID, string, bool) {
	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return uuid.Nil, "", false
	}

	stageKey := c.Param("stage")
	if _, ok := workflow.Template(stageKey); !ok {
		common.RespondBadRequest(c, "неизвестный этап сделки")
		return uuid.Nil, "", false
	}

	return dealID, stageKey, true
}

// Get обрабатывает GET /deals/:id/stages/:stage - этап со всеми коллекциями.
func (h *StageHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	stage, err := h.stages.GetStage(c.Request.Context(), dealID, userID, stageKey)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewStageResponse(stage, userID))
}

// ToggleChecklistItem обрабатывает PATCH /deals/:id/stages/:stage/checklist/:itemId.
func (h *StageHandler) ToggleChecklistItem(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	itemID, err := common.ParseUUIDParam(c, "itemId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ToggleChecklistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	item, err := h.stages.ToggleChecklistItem(c.Request.Context(), service.ChecklistToggleCommand{
		DealID:    dealID,
		Stage:     stageKey,
		ItemID:    itemID,
		UserID:    userID,
		Completed: req.Completed,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, item)
}

// UploadDocument обрабатывает POST /deals/:id/stages/:stage/documents.
// Повторная загрузка с тем же заголовком заменяет документ и
// увеличивает его версию.
func (h *StageHandler) UploadDocument(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	var req dto.UploadStageDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор медиафайла")
		return
	}

	doc, err := h.stages.UploadDocument(c.Request.Context(), service.DocumentUploadCommand{
		DealID:               dealID,
		Stage:                stageKey,
		UserID:               userID,
		MediaID:              mediaID,
		Title:                req.Title,
		Category:             req.Category,
		ConfidentialityLevel: req.ConfidentialityLevel,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, doc)
}

// UpdateDocumentStatus обрабатывает PATCH /deals/:id/stages/:stage/documents/:docId/status.
func (h *StageHandler) UpdateDocumentStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	docID, err := common.ParseUUIDParam(c, "docId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	doc, err := h.stages.UpdateDocumentStatus(c.Request.Context(), dealID, stageKey, docID, userID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// AddComment обрабатывает POST /deals/:id/stages/:stage/comments.
func (h *StageHandler) AddComment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	var req dto.AddStageCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	comment, err := h.stages.AddComment(c.Request.Context(), service.CommentAddCommand{
		DealID:    dealID,
		Stage:     stageKey,
		UserID:    userID,
		Content:   req.Content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// EditComment обрабатывает PATCH /deals/:id/stages/:stage/comments/:commentId.
func (h *StageHandler) EditComment(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	commentID, err := common.ParseUUIDParam(c, "commentId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.EditStageCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.stages.EditComment(c.Request.Context(), dealID, stageKey, commentID, userID, req.Content); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "комментарий обновлён"})
}

// CreateApproval обрабатывает POST /deals/:id/stages/:stage/approvals.
func (h *StageHandler) CreateApproval(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	var req dto.CreateApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	approval, err := h.stages.CreateApproval(c.Request.Context(), dealID, stageKey, userID, req.Title, req.RequiredFrom)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, approval)
}

// ActOnApproval обрабатывает POST /deals/:id/stages/:stage/approvals/:approvalId.
func (h *StageHandler) ActOnApproval(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, stageKey, ok := stageParams(c)
	if !ok {
		return
	}

	approvalID, err := common.ParseUUIDParam(c, "approvalId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.ApprovalActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	approval, err := h.stages.ActOnApproval(c.Request.Context(), service.ApprovalActionCommand{
		DealID:     dealID,
		Stage:      stageKey,
		ApprovalID: approvalID,
		UserID:     userID,
		Status:     req.Status,
		Reason:     req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, approval)
}
