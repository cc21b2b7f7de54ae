package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bizbridge/acquisition-backend/internal/http/handlers/common"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

// FavoriteHandler предоставляет HTTP слой для избранных объявлений.
type FavoriteHandler struct {
	favorites *service.FavoriteService
}

func NewFavoriteHandler(favorites *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites}
}

// List обрабатывает GET /favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businesses, err := h.favorites.ListFavorites(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"favorites": businesses, "count": len(businesses)})
}

// Add обрабатывает PUT /favorites/:businessId - идемпотентное добавление.
func (h *FavoriteHandler) Add(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "businessId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.favorites.AddFavorite(c.Request.Context(), userID, businessID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "объявление добавлено в избранное"})
}

// Remove обрабатывает DELETE /favorites/:businessId - идемпотентное удаление.
func (h *FavoriteHandler) Remove(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "businessId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.favorites.RemoveFavorite(c.Request.Context(), userID, businessID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "объявление удалено из избранного"})
}
