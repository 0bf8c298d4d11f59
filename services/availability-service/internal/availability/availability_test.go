package availability

import (
	"testing"
	"time"

	"github.com/md-rashed-zaman/slotserve/services/availability-service/internal/schedule"
)

func intp(v int) *int { return &v }

// 2026-03-06 is a Friday.
var friday = time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)

func fridayConfig(durationMinutes int) schedule.Configuration {
	return schedule.Configuration{
		SlotDurationMinutes: durationMinutes,
		Timezone:            "UTC",
		Availability: []schedule.WeekdayAvailability{
			{ISOWeekday: 5, Shifts: []schedule.DailyShift{{StartTime: "10:00", EndTime: "20:00"}}},
		},
	}
}

func TestFindAvailableSlots_FullShiftNoBlocks(t *testing.T) {
	cfg := fridayConfig(15)
	now := friday.AddDate(0, 0, -3)

	slots, err := FindAvailableSlots(cfg, friday.Add(10*time.Hour), friday.Add(20*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10 hours of shift, one slot per 15 minutes.
	if len(slots) != 40 {
		t.Fatalf("expected 40 slots, got %d", len(slots))
	}
	if !slots[0].StartAt.Equal(friday.Add(10 * time.Hour)) {
		t.Fatalf("expected first slot at 10:00, got %s", slots[0].StartAt)
	}
	last := slots[len(slots)-1]
	if !last.StartAt.Equal(friday.Add(19*time.Hour + 45*time.Minute)) {
		t.Fatalf("expected last slot at 19:45, got %s", last.StartAt)
	}
	for i, s := range slots {
		if s.DurationMinutes != 15 {
			t.Fatalf("slot %d: duration %d, want 15", i, s.DurationMinutes)
		}
		if !s.EndAt.Equal(s.StartAt.Add(15 * time.Minute)) {
			t.Fatalf("slot %d: end does not match duration", i)
		}
		if i > 0 && s.StartAt.Before(slots[i-1].StartAt) {
			t.Fatalf("slot %d: out of order", i)
		}
	}
}

func TestFindAvailableSlots_RoundsPastNowWithBeforeBuffer(t *testing.T) {
	cfg := schedule.Configuration{
		SlotDurationMinutes:      10,
		SlotStartStepMinutes:     5,
		MinFreeBeforeSlotMinutes: 2,
		Timezone:                 "UTC",
		Availability: []schedule.WeekdayAvailability{
			{ISOWeekday: 5, Shifts: []schedule.DailyShift{{StartTime: "09:00", EndTime: "18:00"}}},
		},
	}
	now := friday.Add(15*time.Hour + 3*time.Minute + 12*time.Second)

	slots, err := FindAvailableSlots(cfg, friday.Add(15*time.Hour), friday.Add(16*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	wantStarts := []time.Time{
		friday.Add(15*time.Hour + 10*time.Minute),
		friday.Add(15*time.Hour + 25*time.Minute),
		friday.Add(15*time.Hour + 40*time.Minute),
	}
	for i, want := range wantStarts {
		if !slots[i].StartAt.Equal(want) {
			t.Fatalf("slot %d: expected %s, got %s", i, want, slots[i].StartAt)
		}
	}
}

func TestFindAvailableSlots_SkipsBlockedInterval(t *testing.T) {
	cfg := fridayConfig(15)
	cfg.BlockedPeriods = []schedule.BlockedPeriod{
		{
			StartAt: schedule.CalendarMoment{Year: intp(2026), Month: 2, Day: 6, Hour: intp(12), Minute: intp(30)},
			EndAt:   schedule.CalendarMoment{Year: intp(2026), Month: 2, Day: 6, Hour: intp(14), Minute: intp(0)},
		},
	}
	now := friday.AddDate(0, 0, -3)

	slots, err := FindAvailableSlots(cfg, friday.Add(10*time.Hour), friday.Add(20*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blockStart := friday.Add(12*time.Hour + 30*time.Minute)
	blockEnd := friday.Add(14 * time.Hour)
	var firstAfterBlock time.Time
	for _, s := range slots {
		if s.StartAt.Before(blockEnd) && blockStart.Before(s.EndAt) {
			t.Fatalf("slot %s overlaps blocked interval", s.StartAt)
		}
		if firstAfterBlock.IsZero() && !s.StartAt.Before(blockEnd) {
			firstAfterBlock = s.StartAt
		}
	}
	if !firstAfterBlock.Equal(blockEnd) {
		t.Fatalf("expected first slot after block at 14:00, got %s", firstAfterBlock)
	}
	// 10 slots before the block (10:00..12:15) and 24 after (14:00..19:45).
	if len(slots) != 34 {
		t.Fatalf("expected 34 slots, got %d", len(slots))
	}
}

func TestFindAvailableSlots_HorizonCapsWindow(t *testing.T) {
	cfg := schedule.Configuration{
		SlotDurationMinutes: 30,
		Timezone:            "UTC",
		HorizonDays:         1,
	}
	for wd := 1; wd <= 7; wd++ {
		cfg.Availability = append(cfg.Availability, schedule.WeekdayAvailability{
			ISOWeekday: wd,
			Shifts:     []schedule.DailyShift{{StartTime: "09:00", EndTime: "17:00"}},
		})
	}
	now := friday.Add(18 * time.Hour)

	slots, err := FindAvailableSlots(cfg, friday, friday.AddDate(0, 0, 14), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots on the horizon day")
	}
	dayAfterHorizon := friday.AddDate(0, 0, 2)
	for _, s := range slots {
		if s.EndAt.After(dayAfterHorizon) {
			t.Fatalf("slot %s extends past the horizon", s.StartAt)
		}
	}
	// The shift on day D ends at 17:00, before now; only D+1 contributes.
	saturday := friday.AddDate(0, 0, 1)
	if !slots[0].StartAt.Equal(saturday.Add(9 * time.Hour)) {
		t.Fatalf("expected first slot Saturday 09:00, got %s", slots[0].StartAt)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots, got %d", len(slots))
	}
}

func TestFindAvailableSlots_LeadTimePushesFirstSlot(t *testing.T) {
	cfg := fridayConfig(30)
	cfg.LeadTimeMinutes = 120
	now := friday.Add(10 * time.Hour)

	slots, err := FindAvailableSlots(cfg, friday, friday.AddDate(0, 0, 1), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	if slots[0].StartAt.Before(friday.Add(12 * time.Hour)) {
		t.Fatalf("lead time ignored: first slot %s", slots[0].StartAt)
	}
}

func TestFindAvailableSlots_AfterBufferSpacing(t *testing.T) {
	cfg := schedule.Configuration{
		SlotDurationMinutes:     15,
		MinFreeAfterSlotMinutes: 10,
		Timezone:                "UTC",
		Availability: []schedule.WeekdayAvailability{
			{ISOWeekday: 5, Shifts: []schedule.DailyShift{{StartTime: "10:00", EndTime: "11:00"}}},
		},
	}
	now := friday.AddDate(0, 0, -1)

	slots, err := FindAvailableSlots(cfg, friday, friday.AddDate(0, 0, 1), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10:00-10:15 then 10:25-10:40; a third slot's after-buffer would not fit.
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if !slots[1].StartAt.Equal(friday.Add(10*time.Hour + 25*time.Minute)) {
		t.Fatalf("expected second slot at 10:25, got %s", slots[1].StartAt)
	}
}

func TestFindAvailableSlots_StepAlignment(t *testing.T) {
	cfg := fridayConfig(10)
	cfg.SlotStartStepMinutes = 20
	now := friday.Add(10*time.Hour + 7*time.Minute)

	slots, err := FindAvailableSlots(cfg, friday.Add(10*time.Hour), friday.Add(12*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected slots")
	}
	for _, s := range slots {
		if s.StartAt.Minute()%20 != 0 {
			t.Fatalf("slot %s not aligned to 20-minute step", s.StartAt)
		}
	}
	if !slots[0].StartAt.Equal(friday.Add(10*time.Hour + 20*time.Minute)) {
		t.Fatalf("expected first slot 10:20, got %s", slots[0].StartAt)
	}
}

func TestFindAvailableSlots_RecurringBlockAcrossDecember(t *testing.T) {
	cfg := schedule.Configuration{
		SlotDurationMinutes: 60,
		Timezone:            "UTC",
		BlockedPeriods: []schedule.BlockedPeriod{
			{
				StartAt: schedule.CalendarMoment{Month: 11, Day: 24},
				EndAt:   schedule.CalendarMoment{Month: 11, Day: 26},
			},
		},
	}
	for wd := 1; wd <= 7; wd++ {
		cfg.Availability = append(cfg.Availability, schedule.WeekdayAvailability{
			ISOWeekday: wd,
			Shifts:     []schedule.DailyShift{{StartTime: "09:00", EndTime: "17:00"}},
		})
	}
	from := time.Date(2026, 12, 23, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)
	now := from.Add(-24 * time.Hour)

	slots, err := FindAvailableSlots(cfg, from, to, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	blockStart := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	blockEnd := time.Date(2026, 12, 27, 0, 0, 0, 0, time.UTC)
	seen := map[int]bool{}
	for _, s := range slots {
		if s.StartAt.Before(blockEnd) && blockStart.Before(s.EndAt) {
			t.Fatalf("slot %s falls in the recurring block", s.StartAt)
		}
		seen[s.StartAt.Day()] = true
	}
	if !seen[23] || !seen[27] {
		t.Fatalf("expected slots on Dec 23 and Dec 27, got days %v", seen)
	}
}

func TestFindAvailableSlots_WindowErrors(t *testing.T) {
	cfg := fridayConfig(15)
	now := friday

	if _, err := FindAvailableSlots(cfg, friday, friday, now); !IsInvalidWindow(err) {
		t.Fatalf("expected invalid-window error for from==to, got %v", err)
	}
	if _, err := FindAvailableSlots(cfg, friday, friday.Add(-time.Hour), now); !IsInvalidWindow(err) {
		t.Fatalf("expected invalid-window error for reversed window, got %v", err)
	}
	if _, err := FindAvailableSlots(cfg, friday, friday.AddDate(6, 0, 0), now); !IsInvalidWindow(err) {
		t.Fatalf("expected invalid-window error for oversized window, got %v", err)
	}
	if _, err := FindAvailableSlots(cfg, time.Time{}, friday, now); !IsInvalidWindow(err) {
		t.Fatalf("expected invalid-window error for zero from, got %v", err)
	}
}

func TestFindAvailableSlots_InvalidConfigurationFailsFast(t *testing.T) {
	cfg := fridayConfig(0)
	_, err := FindAvailableSlots(cfg, friday, friday.AddDate(0, 0, 1), friday)
	if !schedule.IsInvalidConfiguration(err) {
		t.Fatalf("expected invalid-configuration error, got %v", err)
	}
}

func TestValidateConfiguration_TrueOrError(t *testing.T) {
	ok, err := ValidateConfiguration(fridayConfig(15))
	if err != nil || !ok {
		t.Fatalf("expected (true, nil), got (%v, %v)", ok, err)
	}
	ok, err = ValidateConfiguration(schedule.Configuration{})
	if err == nil || ok {
		t.Fatalf("expected error, got (%v, %v)", ok, err)
	}
}

func TestFindAvailableSlots_DaysWithoutAvailabilityAreSkipped(t *testing.T) {
	cfg := fridayConfig(30)
	now := friday.AddDate(0, 0, -7)

	slots, err := FindAvailableSlots(cfg, friday.AddDate(0, 0, -2), friday.AddDate(0, 0, 2), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range slots {
		if s.StartAt.Weekday() != time.Friday {
			t.Fatalf("slot %s on a day without availability", s.StartAt)
		}
	}
	if len(slots) != 20 {
		t.Fatalf("expected 20 slots on the single Friday, got %d", len(slots))
	}
}

func TestFindAvailableSlots_TimezoneConversion(t *testing.T) {
	cfg := fridayConfig(60)
	cfg.Timezone = "America/New_York"
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	// The shift runs 10:00-20:00 Eastern; pass the window in UTC.
	from := time.Date(2026, 3, 6, 0, 0, 0, 0, loc).UTC()
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, loc).UTC()
	now := from.Add(-24 * time.Hour)

	slots, err := FindAvailableSlots(cfg, from, to, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 10 {
		t.Fatalf("expected 10 slots, got %d", len(slots))
	}
	want := time.Date(2026, 3, 6, 10, 0, 0, 0, loc)
	if !slots[0].StartAt.Equal(want) {
		t.Fatalf("expected first slot 10:00 Eastern, got %s", slots[0].StartAt)
	}
}
