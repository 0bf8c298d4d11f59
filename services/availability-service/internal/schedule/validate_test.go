package schedule

import (
	"strings"
	"testing"
)

func intp(v int) *int { return &v }

func validConfig() Configuration {
	return Configuration{
		SlotDurationMinutes: 15,
		Timezone:            "Europe/Berlin",
		Availability: []WeekdayAvailability{
			{ISOWeekday: 5, Shifts: []DailyShift{{StartTime: "10:00", EndTime: "20:00"}}},
		},
	}
}

func TestValidate_AcceptsValidConfiguration(t *testing.T) {
	cfg := validConfig()
	cfg.SlotStartStepMinutes = 10
	cfg.MinFreeBeforeSlotMinutes = 5
	cfg.MinFreeAfterSlotMinutes = 5
	cfg.LeadTimeMinutes = 60
	cfg.HorizonDays = 14
	cfg.BlockedPeriods = []BlockedPeriod{
		{
			StartAt: CalendarMoment{Year: intp(2026), Month: 11, Day: 24},
			EndAt:   CalendarMoment{Year: intp(2026), Month: 11, Day: 26},
		},
		{
			StartAt: CalendarMoment{Month: 6, Day: 1, Hour: intp(8)},
			EndAt:   CalendarMoment{Month: 6, Day: 15, Hour: intp(18), Minute: intp(30)},
		},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("expected valid configuration, got %v", err)
	}
}

func TestValidate_RejectsBadScalars(t *testing.T) {
	cases := map[string]func(*Configuration){
		"zero duration":       func(c *Configuration) { c.SlotDurationMinutes = 0 },
		"step too large":      func(c *Configuration) { c.SlotStartStepMinutes = 31 },
		"negative step":       func(c *Configuration) { c.SlotStartStepMinutes = -1 },
		"negative before":     func(c *Configuration) { c.MinFreeBeforeSlotMinutes = -1 },
		"negative after":      func(c *Configuration) { c.MinFreeAfterSlotMinutes = -1 },
		"negative lead time":  func(c *Configuration) { c.LeadTimeMinutes = -1 },
		"negative horizon":    func(c *Configuration) { c.HorizonDays = -1 },
		"empty timezone":      func(c *Configuration) { c.Timezone = "  " },
		"unresolvable tz":     func(c *Configuration) { c.Timezone = "Mars/Olympus_Mons" },
		"weekday out of band": func(c *Configuration) { c.Availability[0].ISOWeekday = 8 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		err := Validate(cfg)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !IsInvalidConfiguration(err) {
			t.Fatalf("%s: expected invalid-configuration error, got %v", name, err)
		}
	}
}

func TestValidate_RejectsMalformedShiftTimes(t *testing.T) {
	for _, shift := range []DailyShift{
		{StartTime: "9:00", EndTime: "10:00"},
		{StartTime: "09:00", EndTime: "24:00"},
		{StartTime: "09:60", EndTime: "10:00"},
		{StartTime: "12:00", EndTime: "12:00"},
		{StartTime: "14:00", EndTime: "13:00"},
	} {
		cfg := validConfig()
		cfg.Availability[0].Shifts = []DailyShift{shift}
		if err := Validate(cfg); !IsInvalidConfiguration(err) {
			t.Fatalf("shift %v: expected invalid-configuration error, got %v", shift, err)
		}
	}
}

func TestValidate_RejectsOverlappingShifts(t *testing.T) {
	cfg := validConfig()
	cfg.Availability[0].Shifts = []DailyShift{
		{StartTime: "10:00", EndTime: "12:00"},
		{StartTime: "11:00", EndTime: "13:00"},
	}
	err := Validate(cfg)
	if !IsInvalidConfiguration(err) {
		t.Fatalf("expected invalid-configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "availability[0]") {
		t.Fatalf("error should name the entry: %v", err)
	}
}

func TestValidate_BlockedPeriodRules(t *testing.T) {
	cases := map[string]BlockedPeriod{
		"month out of range": {
			StartAt: CalendarMoment{Month: 12, Day: 1},
			EndAt:   CalendarMoment{Month: 0, Day: 2},
		},
		"day beyond month": {
			StartAt: CalendarMoment{Year: intp(2026), Month: 3, Day: 31},
			EndAt:   CalendarMoment{Year: intp(2026), Month: 4, Day: 1},
		},
		"feb 29 in non-leap year": {
			StartAt: CalendarMoment{Year: intp(2026), Month: 1, Day: 29},
			EndAt:   CalendarMoment{Year: intp(2026), Month: 2, Day: 1},
		},
		"minute without hour": {
			StartAt: CalendarMoment{Month: 5, Day: 1, Minute: intp(30)},
			EndAt:   CalendarMoment{Month: 5, Day: 2},
		},
		"mixed year presence": {
			StartAt: CalendarMoment{Year: intp(2026), Month: 5, Day: 1},
			EndAt:   CalendarMoment{Month: 5, Day: 2},
		},
		"absolute end before start": {
			StartAt: CalendarMoment{Year: intp(2026), Month: 5, Day: 10, Hour: intp(12)},
			EndAt:   CalendarMoment{Year: intp(2026), Month: 5, Day: 10, Hour: intp(9)},
		},
	}
	for name, period := range cases {
		cfg := validConfig()
		cfg.BlockedPeriods = []BlockedPeriod{period}
		if err := Validate(cfg); !IsInvalidConfiguration(err) {
			t.Fatalf("%s: expected invalid-configuration error, got %v", name, err)
		}
	}
}

func TestValidate_AllowsRecurringFeb29(t *testing.T) {
	cfg := validConfig()
	cfg.BlockedPeriods = []BlockedPeriod{
		{
			StartAt: CalendarMoment{Month: 1, Day: 29},
			EndAt:   CalendarMoment{Month: 2, Day: 1},
		},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("recurring Feb 29 should validate, got %v", err)
	}
}

func TestValidate_LeadTimeBeyondHorizon(t *testing.T) {
	cfg := validConfig()
	cfg.LeadTimeMinutes = 3 * 24 * 60
	cfg.HorizonDays = 2
	if err := Validate(cfg); !IsInvalidConfiguration(err) {
		t.Fatalf("expected invalid-configuration error, got %v", err)
	}

	cfg.HorizonDays = 3
	if err := Validate(cfg); err != nil {
		t.Fatalf("lead time within horizon should validate, got %v", err)
	}
}
