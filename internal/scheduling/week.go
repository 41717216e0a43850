package scheduling

import (
	"fmt"
	"math"
	"time"
)

// WeekDays lists weekday names Monday-first. These are the keys of a
// teacher's availability map and the column order of the weekly grid.
var WeekDays = []string{"Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi", "Pazar"}

// WeekdayName maps a date to its Monday-first weekday name.
func WeekdayName(date time.Time) string {
	return WeekDays[(int(date.Weekday())+6)%7]
}

// StartOfWeek returns midnight of the Monday of the date's week.
func StartOfWeek(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	y, m, d := date.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// WeekYear computes the "{year}-W{week}" key grouping dates into
// Monday-starting weeks. The week number counts Monday-aligned week starts
// relative to January 1 of the date's own year.
//
// Sessions store this key at creation time and it is never recomputed, so
// the arithmetic here must stay stable: a change would silently break the
// weekly-limit lookup against previously stored sessions.
func WeekYear(date time.Time) string {
	year := date.Year()
	start := StartOfWeek(date)
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, date.Location())
	days := start.Sub(jan1).Hours() / 24
	week := int(math.Ceil((days + float64(jan1.Weekday()) + 1) / 7))
	return fmt.Sprintf("%d-W%02d", year, week)
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
