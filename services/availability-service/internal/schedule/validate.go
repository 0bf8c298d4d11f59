package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ErrInvalidConfiguration marks any structural or semantic configuration
// failure. The wrapped message names the rule and, where applicable, the
// offending weekday or period index.
var ErrInvalidConfiguration = errors.New("invalid configuration")

func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

var shiftTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Validate checks cfg and returns ErrInvalidConfiguration on the first rule
// violation. It never modifies cfg; a valid configuration passes untouched.
func Validate(cfg Configuration) error {
	if cfg.SlotDurationMinutes < 1 {
		return invalidf("slot_duration_minutes must be at least 1")
	}
	if cfg.SlotStartStepMinutes < 0 || cfg.SlotStartStepMinutes > 30 {
		return invalidf("slot_start_step_minutes must be between 1 and 30")
	}
	if cfg.MinFreeBeforeSlotMinutes < 0 {
		return invalidf("min_free_before_slot_minutes must not be negative")
	}
	if cfg.MinFreeAfterSlotMinutes < 0 {
		return invalidf("min_free_after_slot_minutes must not be negative")
	}
	if cfg.LeadTimeMinutes < 0 {
		return invalidf("lead_time_minutes must not be negative")
	}
	if cfg.HorizonDays < 0 {
		return invalidf("horizon_days must not be negative")
	}
	if strings.TrimSpace(cfg.Timezone) == "" {
		return invalidf("timezone is required")
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return invalidf("invalid timezone %q", cfg.Timezone)
	}

	for i, wa := range cfg.Availability {
		if wa.ISOWeekday < 1 || wa.ISOWeekday > 7 {
			return invalidf("availability[%d]: iso_weekday must be between 1 and 7", i)
		}
		for j, s := range wa.Shifts {
			if !shiftTimePattern.MatchString(s.StartTime) || !shiftTimePattern.MatchString(s.EndTime) {
				return invalidf("availability[%d].shifts[%d]: times must match HH:MM", i, j)
			}
			if s.EndTime <= s.StartTime {
				return invalidf("availability[%d].shifts[%d]: end_time must be after start_time", i, j)
			}
		}
		// A merge that drops shifts means the caller supplied overlapping ones.
		if len(MergeShifts(wa.Shifts)) != len(wa.Shifts) {
			return invalidf("availability[%d]: shifts overlap or touch", i)
		}
	}

	for i, p := range cfg.BlockedPeriods {
		if err := validateMoment(p.StartAt, i, "start_at"); err != nil {
			return err
		}
		if err := validateMoment(p.EndAt, i, "end_at"); err != nil {
			return err
		}
		if p.StartAt.Recurring() != p.EndAt.Recurring() {
			return invalidf("blocked_periods[%d]: start_at and end_at must both carry a year or both omit it", i)
		}
		if !p.StartAt.Recurring() {
			start := p.StartAt.Resolve(loc, 0, false)
			end := p.EndAt.Resolve(loc, 0, true)
			if !end.After(start) {
				return invalidf("blocked_periods[%d]: start_at must precede end_at", i)
			}
		}
	}

	if cfg.LeadTimeMinutes > 0 && cfg.HorizonDays > 0 && cfg.LeadTimeMinutes/(24*60) > cfg.HorizonDays {
		return invalidf("lead_time_minutes pushes the first slot past horizon_days")
	}
	return nil
}

func validateMoment(m CalendarMoment, idx int, field string) error {
	if m.Month < 0 || m.Month > 11 {
		return invalidf("blocked_periods[%d].%s: month must be between 0 and 11", idx, field)
	}
	if m.Day < 1 || m.Day > daysInMonth(m.Month, m.Year) {
		return invalidf("blocked_periods[%d].%s: day %d is out of range for month %d", idx, field, m.Day, m.Month)
	}
	if m.Hour == nil {
		if m.Minute != nil {
			return invalidf("blocked_periods[%d].%s: minute requires hour", idx, field)
		}
		return nil
	}
	if *m.Hour < 0 || *m.Hour > 23 {
		return invalidf("blocked_periods[%d].%s: hour must be between 0 and 23", idx, field)
	}
	if m.Minute != nil && (*m.Minute < 0 || *m.Minute > 59) {
		return invalidf("blocked_periods[%d].%s: minute must be between 0 and 59", idx, field)
	}
	return nil
}

// daysInMonth is leap-year aware when a year is present. Recurring moments
// have no year, so February keeps its 29th; resolution against a non-leap
// reference year normalizes it forward.
func daysInMonth(month int, year *int) int {
	if year == nil {
		switch time.Month(month + 1) {
		case time.February:
			return 29
		case time.April, time.June, time.September, time.November:
			return 30
		default:
			return 31
		}
	}
	// Day 0 of the following month is the last day of this one.
	return time.Date(*year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}
