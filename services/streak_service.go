package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pacekeeper/pacekeeper/models"
)

// StreakConfig tunes the streak engine.
type StreakConfig struct {
	// WindowDays is the rolling window of future targets regenerated after a
	// streak change.
	WindowDays int
	// DefaultPenaltyKm is charged per uncovered missed day when the user has
	// no stored target to derive the debt from.
	DefaultPenaltyKm float64
	// RPPerExcessKm is the run points awarded per whole kilometer beyond the
	// daily target.
	RPPerExcessKm int
}

// WorkoutResult is the completion handler's outcome, returned to the client
// for immediate feedback.
type WorkoutResult struct {
	TargetKm       float64 `json:"target_km"`
	TargetMet      bool    `json:"target_met"`
	RPEarned       int     `json:"rp_earned"`
	PenaltyCleared float64 `json:"penalty_cleared"`
	NewStreak      int     `json:"new_streak"`
	PenaltyKm      float64 `json:"penalty_km"`
}

// WorkoutInput is one finished run as reported by the client.
type WorkoutInput struct {
	DistanceKm  float64
	DurationSec int
	Route       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// StreakService owns the streak record state machine: missed-day
// reconciliation and workout completion. Every mutation runs as a single
// transaction with a row lock on the streak record, so a foreground race on
// the same account cannot lose updates.
type StreakService struct {
	db      *gorm.DB
	targets *TargetService
	shop    *ShopService
	cfg     StreakConfig
	now     func() time.Time
}

// NewStreakService creates a StreakService.
func NewStreakService(db *gorm.DB, targets *TargetService, shop *ShopService, cfg StreakConfig) *StreakService {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = 90
	}
	if cfg.DefaultPenaltyKm <= 0 {
		cfg.DefaultPenaltyKm = 2.0
	}
	if cfg.RPPerExcessKm <= 0 {
		cfg.RPPerExcessKm = 10
	}
	return &StreakService{db: db, targets: targets, shop: shop, cfg: cfg, now: time.Now}
}

// Get returns the user's streak record, creating it lazily with zero
// defaults on first access.
func (s *StreakService) Get(userID uint) (*models.Streak, error) {
	var streak models.Streak
	err := s.db.Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.Streak{UserID: userID}
		err = s.db.Create(&streak).Error
	}
	if err != nil {
		return nil, fmt.Errorf("load streak record: %w", err)
	}
	return &streak, nil
}

// EnsureTodayTarget returns today's target, generating it from the current
// streak position when absent.
func (s *StreakService) EnsureTodayTarget(userID uint) (float64, error) {
	streak, err := s.Get(userID)
	if err != nil {
		return 0, err
	}
	return s.targets.EnsureToday(userID, streak.CurrentStreak)
}

// Reconcile processes any calendar days missed since the last run. Invoked
// on app open and before every workout completion; idempotent within a local
// calendar day. Returns the penalty distance added, if any.
//
// Policy: one uncovered missed day adds distance debt, two or more reset the
// streak outright (and wipe existing debt rather than compounding it).
// Available skip cards cover missed days before either penalty applies.
func (s *StreakService) Reconcile(userID uint) (float64, error) {
	now := s.now()
	today := dateOf(now)
	var penaltyAdded float64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		streak, err := s.lockStreak(tx, userID)
		if err != nil {
			return err
		}

		// New user: no history means nothing to miss.
		if streak.LastRunDate == nil {
			return nil
		}

		// Already reconciled (or ran) today.
		if sameDay(streak.UpdatedAt, now) || sameDay(*streak.LastRunDate, now) {
			return nil
		}

		diffDays := daysBetween(*streak.LastRunDate, today)
		if diffDays <= 1 {
			// No gap; just stamp the record as reconciled for today.
			return s.saveStreak(tx, streak.ID, map[string]interface{}{
				"updated_at": now,
			})
		}

		missed := diffDays - 1
		consumed, err := s.shop.consumeCredits(tx, userID, missed, now)
		if err != nil {
			return fmt.Errorf("consume skip cards: %w", err)
		}
		remaining := missed - consumed

		// Each forgiven day counts as a run for continuity bookkeeping.
		newLast := streak.LastRunDate.AddDate(0, 0, consumed)
		updates := map[string]interface{}{
			"last_run_date": newLast,
			"updated_at":    now,
		}

		switch {
		case remaining == 0:
			// Fully covered by skip cards; streak preserved as-is.

		case remaining == 1:
			// Soft miss: one day's distance becomes debt, streak survives.
			debt := s.targets.lastKnownTargetKm(tx, userID, s.cfg.DefaultPenaltyKm)
			updates["penalty_km"] = streak.PenaltyKm + debt
			penaltyAdded = debt

		default:
			// Hard reset: streak and debt wiped, stale future targets
			// removed, today restarts the curve at day one.
			updates["current_streak"] = 0
			updates["penalty_km"] = 0.0
			if err := s.targets.deleteFuture(tx, userID); err != nil {
				return fmt.Errorf("delete future targets: %w", err)
			}
			if err := s.targets.generateFrom(tx, userID, today, 1, s.cfg.WindowDays); err != nil {
				return fmt.Errorf("regenerate targets: %w", err)
			}
		}

		return s.saveStreak(tx, streak.ID, updates)
	})
	if err != nil {
		return 0, err
	}

	// Every reconcile path guarantees today's target exists.
	if _, err := s.EnsureTodayTarget(userID); err != nil {
		return penaltyAdded, err
	}
	return penaltyAdded, nil
}

// CompleteWorkout persists a finished run and applies the completion rules:
// outstanding penalty is cleared before the day's target is evaluated, bonus
// run points accrue for distance beyond the target, and the streak advances
// only on the first qualifying workout of the day. The workout row, streak
// update, and point credit commit in one transaction so a partial write can
// never advance the streak without recording it or vice versa.
func (s *StreakService) CompleteWorkout(userID uint, in WorkoutInput) (*models.Workout, *WorkoutResult, error) {
	if _, err := s.Reconcile(userID); err != nil {
		return nil, nil, err
	}
	targetKm, err := s.EnsureTodayTarget(userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	today := dateOf(now)
	res := &WorkoutResult{TargetKm: targetKm}

	workout := models.Workout{
		UserID:      userID,
		Date:        today,
		DistanceKm:  in.DistanceKm,
		DurationSec: in.DurationSec,
		Route:       in.Route,
		StartedAt:   in.StartedAt,
		FinishedAt:  in.FinishedAt,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		streak, err := s.lockStreak(tx, userID)
		if err != nil {
			return err
		}

		// Debt is run off first; only the residual counts toward today.
		cleared := math.Min(in.DistanceKm, streak.PenaltyKm)
		remaining := in.DistanceKm - cleared
		newPenalty := streak.PenaltyKm - cleared

		// A zero target (rest day) is satisfied by any nonzero run.
		targetMet := in.DistanceKm > 0
		if targetKm > 0 {
			targetMet = remaining >= targetKm
		}

		rp := 0
		if targetMet && targetKm > 0 {
			excess := remaining - targetKm
			rp = int(math.Floor(excess * float64(s.cfg.RPPerExcessKm)))
		}

		firstToday := streak.LastRunDate == nil || !sameDay(*streak.LastRunDate, now)
		current := streak.CurrentStreak
		longest := streak.LongestStreak
		if targetMet && firstToday {
			if current == 0 {
				current = 1
			} else {
				current++
			}
			if current > longest {
				longest = current
			}
			// Tomorrow's target must reflect the new streak position
			// immediately; today's row is left as evaluated.
			err := s.targets.generateFrom(tx, userID, today.AddDate(0, 0, 1), current+1, s.cfg.WindowDays)
			if err != nil {
				return fmt.Errorf("regenerate targets: %w", err)
			}
		}

		if err := tx.Create(&workout).Error; err != nil {
			return fmt.Errorf("record workout: %w", err)
		}

		err = s.saveStreak(tx, streak.ID, map[string]interface{}{
			"penalty_km":     newPenalty,
			"current_streak": current,
			"longest_streak": longest,
			"last_run_date":  today,
			"updated_at":     now,
		})
		if err != nil {
			return err
		}

		if rp > 0 {
			err := tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("run_points", gorm.Expr("run_points + ?", rp)).Error
			if err != nil {
				return fmt.Errorf("credit run points: %w", err)
			}
		}

		res.TargetMet = targetMet
		res.RPEarned = rp
		res.PenaltyCleared = cleared
		res.NewStreak = current
		res.PenaltyKm = newPenalty
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &workout, res, nil
}

// lockStreak loads the user's streak record under FOR UPDATE inside tx,
// creating it lazily for new users.
func (s *StreakService) lockStreak(tx *gorm.DB, userID uint) (*models.Streak, error) {
	var streak models.Streak
	err := forUpdate(tx).Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		streak = models.Streak{UserID: userID}
		err = tx.Create(&streak).Error
	}
	if err != nil {
		return nil, fmt.Errorf("lock streak record: %w", err)
	}
	return &streak, nil
}

// saveStreak writes exactly the given columns, bypassing gorm's automatic
// updated_at so the reconciled-today marker stays under the engine's clock.
func (s *StreakService) saveStreak(tx *gorm.DB, id uint, updates map[string]interface{}) error {
	err := tx.Model(&models.Streak{}).Where("id = ?", id).UpdateColumns(updates).Error
	if err != nil {
		return fmt.Errorf("save streak record: %w", err)
	}
	return nil
}

// forUpdate applies a row lock on dialects that support it; SQLite, used by
// the test suite, rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
