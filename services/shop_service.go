package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/pacekeeper/pacekeeper/models"
)

// ShopService sells consumables against the run points balance and tracks
// forgiveness credits. Credits are consumed only by the streak reconciler.
type ShopService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewShopService creates a ShopService.
func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{db: db, now: time.Now}
}

// ListItems returns the purchasable catalogue.
func (s *ShopService) ListItems() ([]models.ShopItem, error) {
	var items []models.ShopItem
	if err := s.db.Order("price_rp ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Purchase debits the user's balance and inserts a credit that expires after
// the item's validity window. The weekly cap counts every purchase made in
// the current ISO week bucket, used or not.
func (s *ShopService) Purchase(userID uint, itemCode string) (*models.Purchase, error) {
	now := s.now()

	var item models.ShopItem
	if err := s.db.Where("code = ?", itemCode).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("load shop item: %w", err)
	}

	purchase := models.Purchase{
		UserID:     userID,
		ItemID:     item.ID,
		WeekBucket: weekBucket(now),
		ExpiresAt:  now.Add(time.Duration(item.ValidHours) * time.Hour),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := forUpdate(tx).First(&user, userID).Error; err != nil {
			return err
		}
		if user.RunPoints < item.PriceRP {
			return ErrInsufficientBalance
		}

		var bought int64
		err := tx.Model(&models.Purchase{}).
			Where("user_id = ? AND item_id = ? AND week_bucket = ?", userID, item.ID, purchase.WeekBucket).
			Count(&bought).Error
		if err != nil {
			return err
		}
		if int(bought) >= item.WeeklyCap {
			return ErrWeeklyLimitExceeded
		}

		err = tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("run_points", gorm.Expr("run_points - ?", item.PriceRP)).Error
		if err != nil {
			return err
		}

		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// ListAvailable returns unused, unexpired credits.
func (s *ShopService) ListAvailable(userID uint) ([]models.Purchase, error) {
	var credits []models.Purchase
	err := s.db.Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, s.now()).
		Order("expires_at ASC").
		Find(&credits).Error
	if err != nil {
		return nil, err
	}
	return credits, nil
}

// consumeCredits marks up to max available credits as used at the given time
// and reports how many were consumed. Marking used_at is one-way; a credit is
// never returned to the pool.
func (s *ShopService) consumeCredits(tx *gorm.DB, userID uint, max int, now time.Time) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	var credits []models.Purchase
	err := tx.Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, now).
		Order("expires_at ASC").
		Limit(max).
		Find(&credits).Error
	if err != nil {
		return 0, err
	}

	for i := range credits {
		err := tx.Model(&models.Purchase{}).
			Where("id = ? AND used_at IS NULL", credits[i].ID).
			UpdateColumn("used_at", now).Error
		if err != nil {
			return 0, err
		}
	}
	return len(credits), nil
}
