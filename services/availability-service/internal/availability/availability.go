// Package availability computes bookable appointment slots from a recurring
// weekly schedule, blocked periods and buffering constraints. The computation
// is a pure function of its inputs plus one explicitly supplied clock reading;
// it performs no I/O and raises no errors once the inputs are validated.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/schedule"
)

// TimeSlot is one bookable interval. Slots are emitted in non-decreasing
// StartAt order, never overlap a blocked interval, and always carry the
// configured duration.
type TimeSlot struct {
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	DurationMinutes int       `json:"duration_minutes"`
}

// ErrInvalidSearchWindow marks a malformed or mis-ordered from/to pair.
var ErrInvalidSearchWindow = errors.New("invalid search window")

func IsInvalidWindow(err error) bool {
	return errors.Is(err, ErrInvalidSearchWindow)
}

func invalidWindowf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidSearchWindow, fmt.Sprintf(format, args...))
}

// maxSearchSpan caps how far a caller may search. A wider window without a
// horizon is treated as a caller error rather than silently capped.
const maxSearchSpan = 5 * 366 * 24 * time.Hour

// ValidateConfiguration reports whether cfg is usable. It either returns true
// or fails with ErrInvalidConfiguration carrying the reason; it never returns
// false without an error.
func ValidateConfiguration(cfg schedule.Configuration) (bool, error) {
	if err := schedule.Validate(cfg); err != nil {
		return false, err
	}
	return true, nil
}

// FindAvailableSlots returns every bookable slot inside [from, to) that
// satisfies cfg. The clock is sampled once by the caller and passed as now so
// that all boundary arithmetic within one call is consistent and testable.
// On any validation failure no partial results are returned.
func FindAvailableSlots(cfg schedule.Configuration, from, to, now time.Time) ([]TimeSlot, error) {
	if err := schedule.Validate(cfg); err != nil {
		return nil, err
	}
	if from.IsZero() || to.IsZero() {
		return nil, invalidWindowf("from and to are required")
	}
	if !to.After(from) {
		return nil, invalidWindowf("to must be after from")
	}
	if to.Sub(from) > maxSearchSpan {
		return nil, invalidWindowf("window spans more than %d days", int(maxSearchSpan/(24*time.Hour)))
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	firstFrom, lastTo := searchBounds(cfg, from, to, now, loc)
	if !lastTo.After(firstFrom) {
		return nil, nil
	}

	shiftsByWeekday := cfg.ShiftsByWeekday()
	blocks := consolidateBlockedPeriods(cfg.BlockedPeriods, loc, firstFrom.Year())
	params := searchParams{
		duration:        time.Duration(cfg.SlotDurationMinutes) * time.Minute,
		before:          time.Duration(cfg.MinFreeBeforeSlotMinutes) * time.Minute,
		after:           time.Duration(cfg.MinFreeAfterSlotMinutes) * time.Minute,
		stepMinutes:     cfg.StepMinutes(),
		durationMinutes: cfg.SlotDurationMinutes,
	}

	var slots []TimeSlot
	for day := startOfDay(firstFrom, loc); day.Before(lastTo); day = nextDay(day, loc) {
		for _, shift := range shiftsByWeekday[isoWeekday(day)] {
			windowStart := shiftInstant(day, shift.StartTime, loc)
			windowEnd := shiftInstant(day, shift.EndTime, loc)
			if windowStart.Before(firstFrom) {
				windowStart = firstFrom
			}
			if windowEnd.After(lastTo) {
				windowEnd = lastTo
			}
			if windowEnd.After(windowStart) {
				slots = append(slots, searchShiftWindow(windowStart, windowEnd, blocks, params)...)
			}
		}
	}
	return slots, nil
}

// searchBounds narrows the caller window: the search may not begin before now
// plus the before-buffer and lead time, and with a horizon configured it may
// not extend past the end of the day horizon_days from now.
func searchBounds(cfg schedule.Configuration, from, to, now time.Time, loc *time.Location) (time.Time, time.Time) {
	firstFrom := from.In(loc)
	earliest := now.In(loc).
		Add(time.Duration(cfg.MinFreeBeforeSlotMinutes) * time.Minute).
		Add(time.Duration(cfg.LeadTimeMinutes) * time.Minute)
	if earliest.After(firstFrom) {
		firstFrom = earliest
	}

	lastTo := to.In(loc)
	if cfg.HorizonDays > 0 {
		limit := nextDay(startOfDay(now.In(loc).AddDate(0, 0, cfg.HorizonDays), loc), loc)
		if limit.Before(lastTo) {
			lastTo = limit
		}
	}
	return firstFrom, lastTo
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// nextDay steps to the following midnight via the calendar, which stays
// correct across DST transitions where the day is not 24 hours long.
func nextDay(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func isoWeekday(day time.Time) int {
	if wd := int(day.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// shiftInstant places a validated "HH:MM" clock time on the given calendar day.
func shiftInstant(day time.Time, clock string, loc *time.Location) time.Time {
	y, m, d := day.Date()
	hour := 10*int(clock[0]-'0') + int(clock[1]-'0')
	minute := 10*int(clock[3]-'0') + int(clock[4]-'0')
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}
