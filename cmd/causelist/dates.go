package main

import (
	"fmt"
	"time"

	"github.com/dineshroyal9121687814/Ecourts-scrapper/internal/types"
)

// The portal only serves cause lists inside this window around today.
const (
	maxPastDays   = 365
	maxFutureDays = 60
)

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDate reads a dd-mm-yyyy date, defaulting to today, and checks the window.
func parseDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return today(now), nil
	}
	date, err := time.Parse(types.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected dd-mm-yyyy", value)
	}
	if err := checkDateWindow(date, now); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

func checkDateWindow(date, now time.Time) error {
	start := today(now).AddDate(0, 0, -maxPastDays)
	end := today(now).AddDate(0, 0, maxFutureDays)
	if date.Before(start) || date.After(end) {
		return fmt.Errorf("date %s is outside %s..%s", date.Format(types.DateLayout), start.Format(types.DateLayout), end.Format(types.DateLayout))
	}
	return nil
}
