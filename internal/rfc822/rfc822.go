// Package rfc822 formats times the way RSS 2.0 readers expect pubDate and
// lastBuildDate values.
package rfc822

import (
	"fmt"
	"time"
)

var (
	days   = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
)

// Format renders t in the local zone of the running process, e.g.
// "Mon, 15 Jan 2024 09:05:03 +0000".
func Format(t time.Time) string {
	return FormatIn(t, time.Local)
}

// FormatIn renders t in loc.
func FormatIn(t time.Time, loc *time.Location) string {
	t = t.In(loc)

	// Offset is measured in minutes behind UTC, so zones west of Greenwich
	// are positive and get a '-' sign.
	_, east := t.Zone()
	behind := -east / 60

	sign := "+"
	if behind > 0 {
		sign = "-"
	}

	if behind < 0 {
		behind = -behind
	}

	// Hours are truncated, not floored: Asia/Kolkata is +0530.
	return fmt.Sprintf("%s, %d %s %d %02d:%02d:%02d %s%02d%02d",
		days[t.Weekday()],
		t.Day(),
		months[t.Month()-1],
		t.Year(),
		t.Hour(),
		t.Minute(),
		t.Second(),
		sign,
		behind/60,
		behind%60)
}
