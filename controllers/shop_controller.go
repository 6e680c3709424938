package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pacekeeper/pacekeeper/services"
	"github.com/pacekeeper/pacekeeper/utils"
)

// ShopController sells consumables against the run points balance.
type ShopController struct {
	shop *services.ShopService
}

// NewShopController creates a new controller instance.
func NewShopController(shop *services.ShopService) *ShopController {
	return &ShopController{shop: shop}
}

// ListItems returns the purchasable catalogue.
func (s *ShopController) ListItems(ctx *gin.Context) {
	items, err := s.shop.ListItems()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load shop items")
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// Purchase buys one consumable by item code.
func (s *ShopController) Purchase(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ItemCode string `json:"item_code" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid request payload")
		return
	}

	purchase, err := s.shop.Purchase(userID, req.ItemCode)
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		utils.Error(ctx, http.StatusNotFound, 40470, "unknown shop item")
		return
	case errors.Is(err, services.ErrInsufficientBalance):
		utils.Error(ctx, http.StatusBadRequest, 40071, "insufficient run points")
		return
	case errors.Is(err, services.ErrWeeklyLimitExceeded):
		utils.Error(ctx, http.StatusBadRequest, 40072, "weekly purchase limit reached")
		return
	case err != nil:
		utils.Sugar.Errorf("purchase failed for user %d: %v", userID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to complete purchase")
		return
	}

	utils.Success(ctx, gin.H{"purchase": purchase})
}

// ListCredits returns the user's unused, unexpired credits.
func (s *ShopController) ListCredits(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	credits, err := s.shop.ListAvailable(userID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load credits")
		return
	}
	utils.Success(ctx, gin.H{"credits": credits})
}
