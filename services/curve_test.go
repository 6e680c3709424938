package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTargetForStreakDayAnchors(t *testing.T) {
	cases := []struct {
		day  int
		want float64
	}{
		{1, 1.0},
		{30, 2.5},
		{31, 2.5},
		{60, 4.0},
		{61, 4.0},
		{100, 6.0},
		{101, 6.0},
		{200, 8.0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, TargetForStreakDay(c.day), "day %d", c.day)
	}
}

func TestTargetForStreakDayClamps(t *testing.T) {
	assert.Equal(t, 1.0, TargetForStreakDay(0))
	assert.Equal(t, 1.0, TargetForStreakDay(-5))
	assert.Equal(t, 8.0, TargetForStreakDay(201))
	assert.Equal(t, 8.0, TargetForStreakDay(10000))
}

func TestTargetForStreakDayGranularity(t *testing.T) {
	for day := 1; day <= 200; day++ {
		v := TargetForStreakDay(day)
		steps := v / targetStepKm
		assert.InDelta(t, math.Round(steps), steps, 1e-9, "day %d target %v is not a 0.5 km multiple", day, v)
	}
}

func TestTargetForStreakDayMonotonic(t *testing.T) {
	prev := TargetForStreakDay(1)
	for day := 2; day <= 200; day++ {
		v := TargetForStreakDay(day)
		assert.GreaterOrEqual(t, v, prev, "day %d", day)
		prev = v
	}
}
