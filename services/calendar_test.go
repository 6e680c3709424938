package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysBetween(t *testing.T) {
	base := time.Date(2026, 3, 10, 23, 50, 0, 0, time.Local)

	assert.Equal(t, 0, daysBetween(base, base))
	// Ten minutes of wall clock, one calendar day
	assert.Equal(t, 1, daysBetween(base, base.Add(20*time.Minute)))
	assert.Equal(t, 3, daysBetween(base, base.AddDate(0, 0, 3)))
	assert.Equal(t, -2, daysBetween(base, base.AddDate(0, 0, -2)))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2026, 3, 10, 0, 0, 1, 0, time.Local)
	night := time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)
	next := time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)

	assert.True(t, sameDay(morning, night))
	assert.False(t, sameDay(night, next))
}

func TestDateOf(t *testing.T) {
	at := time.Date(2026, 3, 10, 18, 42, 7, 123, time.Local)
	d := dateOf(at)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 10, d.Day())
	assert.Equal(t, 0, d.Hour())
	assert.Equal(t, 0, d.Minute())
}

func TestWeekBucket(t *testing.T) {
	// 2025-12-29 is a Monday belonging to ISO week 1 of 2026
	assert.Equal(t, 202601, weekBucket(time.Date(2025, 12, 29, 10, 0, 0, 0, time.Local)))
	// 2025-12-28 is the Sunday closing ISO week 52 of 2025
	assert.Equal(t, 202552, weekBucket(time.Date(2025, 12, 28, 10, 0, 0, 0, time.Local)))

	mon := time.Date(2026, 3, 9, 8, 0, 0, 0, time.Local)
	sun := time.Date(2026, 3, 15, 22, 0, 0, 0, time.Local)
	assert.Equal(t, weekBucket(mon), weekBucket(sun))
	assert.NotEqual(t, weekBucket(mon), weekBucket(sun.AddDate(0, 0, 1)))
}
