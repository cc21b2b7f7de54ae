package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/dto"
	"github.com/bizbridge/acquisition-backend/internal/http/handlers/common"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/service"
)

// BusinessHandler предоставляет HTTP слой для каталога бизнесов.
type BusinessHandler struct {
	businesses *service.BusinessService
	favorites  *service.FavoriteService
}

func NewBusinessHandler(businesses *service.BusinessService, favorites *service.FavoriteService) *BusinessHandler {
	return &BusinessHandler{businesses: businesses, favorites: favorites}
}

// Create обрабатывает POST /businesses - создание объявления продавцом.
func (h *BusinessHandler) Create(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	business, err := h.businesses.Create(c.Request.Context(), sellerID, service.CreateBusinessInput{
		Name:          req.Name,
		Industry:      req.Industry,
		Location:      req.Location,
		Description:   req.Description,
		AnnualRevenue: req.AnnualRevenue,
		Valuation:     req.Valuation,
		AskingPrice:   req.AskingPrice,
		EmployeeCount: req.EmployeeCount,
		FoundedYear:   req.FoundedYear,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, business)
}

// List обрабатывает GET /businesses - публичный каталог с фильтрами.
func (h *BusinessHandler) List(c *gin.Context) {
	limit, offset := common.GetPagination(c)

	params := repository.ListParams{
		Industry: c.Query("industry"),
		Location: c.Query("location"),
		Search:   c.Query("search"),
		Limit:    limit,
		Offset:   offset,
	}

	businesses, err := h.businesses.List(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses, "count": len(businesses)})
}

// Get обрабатывает GET /businesses/:id.
func (h *BusinessHandler) Get(c *gin.Context) {
	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	business, err := h.businesses.Get(c.Request.Context(), businessID)
	if err != nil {
		c.Error(err)
		return
	}

	resp := dto.BusinessResponse{Business: business}

	// Для авторизованного пользователя добавляем флаг избранного.
	if userID, err := common.CurrentUserID(c); err == nil {
		if fav, err := h.favorites.IsFavorite(c.Request.Context(), userID, businessID); err == nil {
			resp.IsFavorite = fav
		}
	}

	c.JSON(http.StatusOK, resp)
}

// ListMine обрабатывает GET /businesses/my - объявления текущего продавца.
func (h *BusinessHandler) ListMine(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)

	businesses, err := h.businesses.ListMine(c.Request.Context(), sellerID, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"businesses": businesses, "count": len(businesses)})
}

// Update обрабатывает PUT /businesses/:id.
func (h *BusinessHandler) Update(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	business := &models.Business{
		ID:            businessID,
		Name:          req.Name,
		Industry:      req.Industry,
		Location:      req.Location,
		Description:   req.Description,
		AnnualRevenue: req.AnnualRevenue,
		Valuation:     req.Valuation,
		AskingPrice:   req.AskingPrice,
		EmployeeCount: req.EmployeeCount,
		FoundedYear:   req.FoundedYear,
	}

	if err := h.businesses.Update(c.Request.Context(), sellerID, business); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, business)
}

// UpdateStatus обрабатывает PATCH /businesses/:id/status.
func (h *BusinessHandler) UpdateStatus(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.UpdateBusinessStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.businesses.UpdateStatus(c.Request.Context(), sellerID, businessID, req.Status); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "статус успешно обновлён", "status": req.Status})
}

// Delete обрабатывает DELETE /businesses/:id.
func (h *BusinessHandler) Delete(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.businesses.Delete(c.Request.Context(), sellerID, businessID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "объявление успешно удалено"})
}

// AddImage обрабатывает POST /businesses/:id/images.
func (h *BusinessHandler) AddImage(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.AddBusinessImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		common.RespondBadRequest(c, "неверный идентификатор медиафайла")
		return
	}

	image, err := h.businesses.AddImage(c.Request.Context(), sellerID, businessID, mediaID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

// DeleteImage обрабатывает DELETE /businesses/:id/images/:imageId.
func (h *BusinessHandler) DeleteImage(c *gin.Context) {
	sellerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	businessID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	imageID, err := common.ParseUUIDParam(c, "imageId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.businesses.DeleteImage(c.Request.Context(), sellerID, businessID, imageID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "фотография удалена"})
}
