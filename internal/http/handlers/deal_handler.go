package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/dto"
	"github.com/bizbridge/acquisition-backend/internal/http/handlers/common"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

// DealHandler предоставляет HTTP слой для сделок.
type DealHandler struct {
	deals *service.DealService
}

func NewDealHandler(deals *service.DealService) *DealHandler {
	return &DealHandler{deals: deals}
}

// List обрабатывает GET /deals - сделки текущего пользователя.
func (h *DealHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)

	deals, err := h.deals.ListMyDeals(c.Request.Context(), userID, c.Query("status"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	responses := make([]*dto.DealResponse, 0, len(deals))
	for i := range deals {
		responses = append(responses, dto.NewDealResponse(&deals[i], userID))
	}

	c.JSON(http.StatusOK, gin.H{"deals": responses, "count": len(responses)})
}

// Get обрабатывает GET /deals/:id - полная карточка сделки со всеми этапами.
func (h *DealHandler) Get(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deal, err := h.deals.GetDeal(c.Request.Context(), dealID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDealResponse(deal, userID))
}

// UpdateStatus обрабатывает PATCH /deals/:id/status.
func (h *DealHandler) UpdateStatus(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateDealStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deal, err := h.deals.UpdateStatus(c.Request.Context(), dealID, userID, req.Status)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDealResponse(deal, userID))
}

// UpdateTerms обрабатывает PATCH /deals/:id/terms.
func (h *DealHandler) UpdateTerms(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateDealTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	targetClosing, err := req.ParseTargetClosingDate()
	if err != nil {
		common.RespondBadRequest(c, "неверный формат target_closing_date, ожидается RFC3339")
		return
	}

	deal, err := h.deals.UpdateTerms(c.Request.Context(), dealID, userID, service.UpdateTermsInput{
		DealValue:         req.DealValue,
		DealStructure:     req.DealStructure,
		FinancingType:     req.FinancingType,
		TargetClosingDate: targetClosing,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDealResponse(deal, userID))
}

// AdvanceStage обрабатывает POST /deals/:id/advance - переход к следующему этапу.
func (h *DealHandler) AdvanceStage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deal, err := h.deals.AdvanceStage(c.Request.Context(), dealID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewDealResponse(deal, userID))
}

// AddTeamMember обрабатывает POST /deals/:id/team.
func (h *DealHandler) AddTeamMember(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AddTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	member := &models.TeamMember{
		Name:  req.Name,
		Role:  req.Role,
		Email: req.Email,
	}

	if req.UserID != nil {
		memberUserID, err := uuid.Parse(*req.UserID)
		if err != nil {
			common.RespondBadRequest(c, "неверный идентификатор пользователя")
			return
		}
		member.UserID = &memberUserID
	}

	created, err := h.deals.AddTeamMember(c.Request.Context(), dealID, userID, member)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// AddKeyDate обрабатывает POST /deals/:id/key-dates.
func (h *DealHandler) AddKeyDate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AddKeyDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	dueAt, err := req.ParseDueAt()
	if err != nil {
		common.RespondBadRequest(c, "неверный формат due_at, ожидается RFC3339")
		return
	}

	keyDate := &models.KeyDate{
		Title: req.Title,
		DueAt: dueAt,
	}

	created, err := h.deals.AddKeyDate(c.Request.Context(), dealID, userID, keyDate)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListActivity обрабатывает GET /deals/:id/activity - журнал действий по сделке.
func (h *DealHandler) ListActivity(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	dealID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)

	entries, err := h.deals.ListActivity(c.Request.Context(), dealID, userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activity": entries, "count": len(entries)})
}
