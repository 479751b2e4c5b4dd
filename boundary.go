package main

import "time"

// NextQuarterHour returns the next aligned 15-minute boundary at or
// after t; instants already exactly on a boundary map to themselves.
// Advisory only (shown as "next scheduled update" and used by the
// service loop's timer) — block selection never consults it.
func NextQuarterHour(t time.Time) time.Time {
	h, m, s := t.Clock()
	if m%15 == 0 && s == 0 && t.Nanosecond() == 0 {
		return t
	}
	// time.Date normalizes minute overflow into the next hour/day.
	return time.Date(t.Year(), t.Month(), t.Day(), h, m-m%15+15, 0, 0, t.Location())
}
