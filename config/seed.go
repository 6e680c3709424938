package config

import (
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pacekeeper/pacekeeper/models"
)

// SeedShopItems upserts the built-in shop catalogue. Prices and caps follow
// configuration so operators can retune without a schema change.
func SeedShopItems(db *gorm.DB) {
	cfg := Get()

	items := []models.ShopItem{
		{
			Code:       models.ItemCodeSkipCard,
			Name:       "Skip Card",
			PriceRP:    cfg.SkipCardPriceRP,
			WeeklyCap:  cfg.SkipCardWeeklyCap,
			ValidHours: cfg.SkipCardValidHrs,
		},
	}

	for _, item := range items {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price_rp", "weekly_cap", "valid_hours"}),
		}).Create(&item).Error
		if err != nil {
			log.Printf("shop item seed failed for %s: %v", item.Code, err)
		}
	}
}
