package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacekeeper/pacekeeper/models"
)

func TestGenerateFutureTargetsWindow(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 30)
	svc.now = fixedClock(at)

	require.NoError(t, svc.GenerateFutureTargets(user.ID, 1, 0))

	var rows []models.DailyTarget
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("date ASC").Find(&rows).Error)
	require.Len(t, rows, 30)

	assert.True(t, sameDay(rows[0].Date, at))
	assert.Equal(t, 1, rows[0].StreakDay)
	assert.Equal(t, 1.0, rows[0].TargetKm)
	assert.Equal(t, 30, rows[29].StreakDay)
	assert.Equal(t, 2.5, rows[29].TargetKm)
}

func TestGenerateFutureTargetsUpserts(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 10)
	svc.now = fixedClock(at)

	require.NoError(t, svc.GenerateFutureTargets(user.ID, 1, 0))
	// Regenerate from a later curve position; same dates, new values
	require.NoError(t, svc.GenerateFutureTargets(user.ID, 50, 0))

	var count int64
	require.NoError(t, db.Model(&models.DailyTarget{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(10), count)

	var row models.DailyTarget
	require.NoError(t, db.Where("user_id = ? AND date = ?", user.ID, dateOf(at)).First(&row).Error)
	assert.Equal(t, 50, row.StreakDay)
	assert.Equal(t, TargetForStreakDay(50), row.TargetKm)
}

func TestEnsureTodayReturnsExistingRowUnchanged(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 30)
	svc.now = fixedClock(at)

	seedTarget(t, db, user.ID, at, 12, 1.5)

	// currentStreak argument must not affect an already stored row
	got, err := svc.EnsureToday(user.ID, 99)
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	var count int64
	require.NoError(t, db.Model(&models.DailyTarget{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureTodayGeneratesFromStreakPosition(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 30)
	svc.now = fixedClock(at)

	got, err := svc.EnsureToday(user.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, TargetForStreakDay(5), got)

	row, err := svc.TodayTarget(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, row.StreakDay)

	var count int64
	require.NoError(t, db.Model(&models.DailyTarget{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(30), count)
}

func TestDeleteFutureTargetsKeepsTodayAndPast(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 30)
	svc.now = fixedClock(at)

	seedTarget(t, db, user.ID, at.AddDate(0, 0, -1), 9, 1.5)
	seedTarget(t, db, user.ID, at, 10, 1.5)
	seedTarget(t, db, user.ID, at.AddDate(0, 0, 1), 11, 1.5)
	seedTarget(t, db, user.ID, at.AddDate(0, 0, 5), 15, 2.0)

	require.NoError(t, svc.DeleteFutureTargets(user.ID))

	var rows []models.DailyTarget
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("date ASC").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, 9, rows[0].StreakDay)
	assert.Equal(t, 10, rows[1].StreakDay)
}

func TestMonthTargets(t *testing.T) {
	db := newTestDB(t)
	user := newTestUser(t, db, 0)
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

	svc := NewTargetService(db, 60)
	svc.now = fixedClock(at)

	require.NoError(t, svc.GenerateFutureTargets(user.ID, 1, 0))

	rows, err := svc.MonthTargets(user.ID, 2026, time.March)
	require.NoError(t, err)
	// March 10 through March 31
	require.Len(t, rows, 22)
	assert.True(t, sameDay(rows[0].Date, at))
	assert.Equal(t, 31, rows[len(rows)-1].Date.Day())

	april, err := svc.MonthTargets(user.ID, 2026, time.April)
	require.NoError(t, err)
	assert.Len(t, april, 30)
}
