package models

import "time"

// ItemCodeSkipCard is the consumable that forgives one missed streak day.
const ItemCodeSkipCard = "skip_card"

// ShopItem is a purchasable consumable. The catalogue is seeded at boot.
type ShopItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	PriceRP    int       `gorm:"not null" json:"price_rp"`
	WeeklyCap  int       `gorm:"not null;default:2" json:"weekly_cap"`
	ValidHours int       `gorm:"not null;default:24" json:"valid_hours"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Purchase is one bought consumable credit. A credit is available while
// UsedAt is null and ExpiresAt is in the future; marking UsedAt is a one-way
// transition. WeekBucket (ISO year*100 + ISO week) groups purchases for the
// weekly cap.
type Purchase struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	ItemID     uint       `gorm:"index;not null" json:"item_id"`
	WeekBucket int        `gorm:"index;not null" json:"week_bucket"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt     *time.Time `json:"used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}
