package schedule

import (
	"fmt"
	"time"
)

// CalendarMoment is a calendar date-time in the configured timezone. When Year
// is nil the moment recurs every year; when Hour is nil it covers the whole
// day (start of day as a period start, following midnight as a period end).
// Month is zero-based: January is 0.
type CalendarMoment struct {
	Year   *int `json:"year,omitempty"`
	Month  int  `json:"month"`
	Day    int  `json:"day"`
	Hour   *int `json:"hour,omitempty"`
	Minute *int `json:"minute,omitempty"`
}

// Recurring reports whether the moment repeats every year.
func (m CalendarMoment) Recurring() bool {
	return m.Year == nil
}

// Resolve turns the moment into an instant in loc. Recurring moments borrow
// refYear. A period end without an hour resolves to the following midnight so
// that all intervals stay half-open.
func (m CalendarMoment) Resolve(loc *time.Location, refYear int, periodEnd bool) time.Time {
	year := refYear
	if m.Year != nil {
		year = *m.Year
	}
	if m.Hour == nil {
		day := m.Day
		if periodEnd {
			day++
		}
		return time.Date(year, time.Month(m.Month+1), day, 0, 0, 0, 0, loc)
	}
	minute := 0
	if m.Minute != nil {
		minute = *m.Minute
	}
	return time.Date(year, time.Month(m.Month+1), m.Day, *m.Hour, minute, 0, 0, loc)
}

// BlockedPeriod is an interval during which no slot may be offered. Both ends
// must agree on year presence: either an absolute one-off range or a range
// that recurs every year.
type BlockedPeriod struct {
	StartAt CalendarMoment `json:"start_at"`
	EndAt   CalendarMoment `json:"end_at"`
}

// DailyShift is a bookable time-of-day interval, "HH:MM" 24-hour clock,
// zero-padded. No overnight wraparound: EndTime must sort after StartTime.
type DailyShift struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// WeekdayAvailability lists the shifts offered on one ISO weekday
// (1 = Monday ... 7 = Sunday).
type WeekdayAvailability struct {
	ISOWeekday int          `json:"iso_weekday"`
	Shifts     []DailyShift `json:"shifts"`
}

// DefaultSlotStartStepMinutes is the slot alignment granularity applied when
// the configuration leaves slot_start_step_minutes unset.
const DefaultSlotStartStepMinutes = 5

// Configuration describes everything the slot search needs. Zero values mean
// "unset" for the optional fields: step falls back to the default, a zero
// horizon means no horizon, buffers and lead time default to no padding.
type Configuration struct {
	SlotDurationMinutes      int                   `json:"slot_duration_minutes"`
	SlotStartStepMinutes     int                   `json:"slot_start_step_minutes,omitempty"`
	Timezone                 string                `json:"timezone"`
	Availability             []WeekdayAvailability `json:"availability"`
	BlockedPeriods           []BlockedPeriod       `json:"blocked_periods,omitempty"`
	MinFreeBeforeSlotMinutes int                   `json:"min_free_before_slot_minutes,omitempty"`
	MinFreeAfterSlotMinutes  int                   `json:"min_free_after_slot_minutes,omitempty"`
	LeadTimeMinutes          int                   `json:"lead_time_minutes,omitempty"`
	HorizonDays              int                   `json:"horizon_days,omitempty"`
}

// StepMinutes returns the effective slot alignment step.
func (c Configuration) StepMinutes() int {
	if c.SlotStartStepMinutes == 0 {
		return DefaultSlotStartStepMinutes
	}
	return c.SlotStartStepMinutes
}

// Location resolves the configured timezone identifier.
func (c Configuration) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timezone %q", ErrInvalidConfiguration, c.Timezone)
	}
	return loc, nil
}

// ShiftsByWeekday builds the merged per-weekday shift lookup used by the day
// loop. Multiple availability entries for the same weekday are allowed; their
// shift lists are concatenated and merged into one non-overlapping list.
func (c Configuration) ShiftsByWeekday() map[int][]DailyShift {
	byDay := make(map[int][]DailyShift, len(c.Availability))
	for _, wa := range c.Availability {
		byDay[wa.ISOWeekday] = append(byDay[wa.ISOWeekday], wa.Shifts...)
	}
	for day, shifts := range byDay {
		byDay[day] = MergeShifts(shifts)
	}
	return byDay
}
