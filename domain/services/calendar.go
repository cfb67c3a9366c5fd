package services

import (
	"fmt"
	"time"

	"github.com/rich-automation/lotto-action/domain/entities"
)

// DefaultTimezone is the zone the lottery operates in
const DefaultTimezone = "Asia/Seoul"

// Calendar carries the process timezone into date computations.
// It is built once at startup and passed to whoever needs "today".
type Calendar struct {
	Location *time.Location
	Clock    func() time.Time
}

// NewCalendar loads the named timezone. An empty name uses DefaultTimezone.
func NewCalendar(timezone string) (*Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}
	return &Calendar{Location: loc, Clock: time.Now}, nil
}

// Now returns the current instant in the calendar's timezone
func (c *Calendar) Now() time.Time {
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	return clock().In(c.Location)
}

// Today returns the current civil date formatted as YYYY-MM-DD
func (c *Calendar) Today() string {
	return c.Now().Format(entities.DateLayout)
}
