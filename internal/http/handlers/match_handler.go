package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/dto"
	"github.com/bizbridge/acquisition-backend/internal/http/handlers/common"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

// MatchHandler предоставляет HTTP слой для заявок покупателей.
type MatchHandler struct {
	matches *service.MatchService
}

func NewMatchHandler(matches *service.MatchService) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// Create обрабатывает POST /matches - покупатель подаёт заявку на бизнес.
func (h *MatchHandler) Create(c *gin.Context) {
	buyerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	businessID, err := uuid.Parse(req.BusinessID)
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор бизнеса")
		return
	}

	match, err := h.matches.Request(c.Request.Context(), buyerID, businessID, req.Message)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, match)
}

// List обрабатывает GET /matches - заявки текущего пользователя с обеих сторон.
func (h *MatchHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)

	matches, err := h.matches.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// Accept обрабатывает POST /matches/:id/accept - продавец принимает заявку,
// создаётся сделка.
func (h *MatchHandler) Accept(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	matchID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	match, deal, err := h.matches.Accept(c.Request.Context(), sellerID, matchID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := dto.MatchWithDealResponse{Match: match}
	if deal != nil {
		resp.Deal = dto.NewDealResponse(deal, sellerID)
	}

	c.JSON(http.StatusOK, resp)
}

// Decline обрабатывает POST /matches/:id/decline - продавец отклоняет заявку.
func (h *MatchHandler) Decline(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	matchID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	match, err := h.matches.Decline(c.Request.Context(), sellerID, matchID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, match)
}
