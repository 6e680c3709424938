package services

import (
	"math"
	"time"
)

// dateOf truncates t to local midnight of its calendar day. All date columns
// store these midnight-anchored values.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// noonOf anchors t at 12:00 of its calendar day. Day arithmetic runs on noon
// timestamps so DST transitions cannot shift a day boundary.
func noonOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// daysBetween returns the number of whole calendar days from a to b
// (positive when b is after a).
func daysBetween(a, b time.Time) int {
	return int(math.Round(noonOf(b).Sub(noonOf(a)).Hours() / 24))
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// weekBucket identifies the ISO week a timestamp falls into, as year*100+week.
func weekBucket(t time.Time) int {
	year, week := t.ISOWeek()
	return year*100 + week
}
