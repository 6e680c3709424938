package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pacekeeper/pacekeeper/models"
)

// TargetService reads and writes per-user daily target rows. Generation is an
// upsert keyed by (user, date), so repeating a call with the same arguments is
// a no-op and regenerating after a streak change overwrites only dates that
// have not elapsed yet.
type TargetService struct {
	db         *gorm.DB
	windowDays int
	now        func() time.Time
}

// NewTargetService creates a TargetService with the given rolling window of
// pre-generated future targets.
func NewTargetService(db *gorm.DB, windowDays int) *TargetService {
	if windowDays <= 0 {
		windowDays = 90
	}
	return &TargetService{db: db, windowDays: windowDays, now: time.Now}
}

// GenerateFutureTargets upserts targets for [today, today+daysAhead), mapping
// today to startStreakDay on the curve. daysAhead <= 0 uses the configured
// window.
func (s *TargetService) GenerateFutureTargets(userID uint, startStreakDay, daysAhead int) error {
	return s.generateFrom(s.db, userID, dateOf(s.now()), startStreakDay, daysAhead)
}

func (s *TargetService) generateFrom(tx *gorm.DB, userID uint, startDate time.Time, startStreakDay, daysAhead int) error {
	if daysAhead <= 0 {
		daysAhead = s.windowDays
	}
	if startStreakDay < 1 {
		startStreakDay = 1
	}

	rows := make([]models.DailyTarget, 0, daysAhead)
	for i := 0; i < daysAhead; i++ {
		day := startStreakDay + i
		rows = append(rows, models.DailyTarget{
			UserID:    userID,
			Date:      startDate.AddDate(0, 0, i),
			StreakDay: day,
			TargetKm:  TargetForStreakDay(day),
		})
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"target_km", "streak_day", "updated_at"}),
	}).CreateInBatches(&rows, 100).Error
}

// DeleteFutureTargets removes all target rows dated tomorrow or later. Used
// on a hard streak reset so stale high-value targets don't linger.
func (s *TargetService) DeleteFutureTargets(userID uint) error {
	return s.deleteFuture(s.db, userID)
}

func (s *TargetService) deleteFuture(tx *gorm.DB, userID uint) error {
	tomorrow := dateOf(s.now()).AddDate(0, 0, 1)
	return tx.Where("user_id = ? AND date >= ?", userID, tomorrow).
		Delete(&models.DailyTarget{}).Error
}

// EnsureToday returns today's target, generating a fresh window anchored at
// streak day currentStreak+1 when no row exists yet. An existing row is
// returned unchanged: today's target is never silently altered mid-day.
func (s *TargetService) EnsureToday(userID uint, currentStreak int) (float64, error) {
	today := dateOf(s.now())

	var row models.DailyTarget
	err := s.db.Where("user_id = ? AND date = ?", userID, today).First(&row).Error
	if err == nil {
		return row.TargetKm, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	startDay := currentStreak + 1
	if err := s.generateFrom(s.db, userID, today, startDay, 0); err != nil {
		return 0, err
	}
	return TargetForStreakDay(startDay), nil
}

// TodayTarget returns today's stored target without generating anything.
func (s *TargetService) TodayTarget(userID uint) (*models.DailyTarget, error) {
	var row models.DailyTarget
	err := s.db.Where("user_id = ? AND date = ?", userID, dateOf(s.now())).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// MonthTargets returns all target rows for one calendar month, ordered by
// date, for calendar rendering.
func (s *TargetService) MonthTargets(userID uint, year int, month time.Month) ([]models.DailyTarget, error) {
	loc := s.now().Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	var rows []models.DailyTarget
	err := s.db.Where("user_id = ? AND date >= ? AND date < ?", userID, first, next).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// lastKnownTargetKm returns the most recent stored target up to and including
// today, or fallback when the user has none.
func (s *TargetService) lastKnownTargetKm(tx *gorm.DB, userID uint, fallback float64) float64 {
	var row models.DailyTarget
	err := tx.Where("user_id = ? AND date <= ?", userID, dateOf(s.now())).
		Order("date DESC").
		First(&row).Error
	if err != nil {
		return fallback
	}
	return row.TargetKm
}
