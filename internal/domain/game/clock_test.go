package game

import (
	"testing"
	"time"
)

func TestClockPhaseCycle(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewClock(ClockConfig{
		StartAt:       start,
		DayDuration:   10 * time.Minute,
		NightDuration: 5 * time.Minute,
	})

	phase, remain := clock.PhaseAt(start)
	if phase != DayPhaseDay {
		t.Fatalf("expected day at start, got %s", phase)
	}
	if remain != 10*time.Minute {
		t.Fatalf("expected 10m remain, got %s", remain)
	}

	phase, remain = clock.PhaseAt(start.Add(11 * time.Minute))
	if phase != DayPhaseNight {
		t.Fatalf("expected night at +11m, got %s", phase)
	}
	if remain != 4*time.Minute {
		t.Fatalf("expected 4m remain, got %s", remain)
	}

	phase, _ = clock.PhaseAt(start.Add(16 * time.Minute))
	if phase != DayPhaseDay {
		t.Fatalf("expected cycle back to day, got %s", phase)
	}
}

func TestClockForSettingsUsesNightLength(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := ClockForSettings(start, LobbySettings{NightLengthMinutes: 2})

	phase, remain := clock.PhaseAt(start.Add(10 * time.Minute))
	if phase != DayPhaseNight {
		t.Fatalf("expected night right after day end, got %s", phase)
	}
	if remain != 2*time.Minute {
		t.Fatalf("expected 2m of night, got %s", remain)
	}
}

func TestClockDayCounter(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewClock(ClockConfig{
		StartAt:       start,
		DayDuration:   10 * time.Minute,
		NightDuration: 5 * time.Minute,
	})

	if d := clock.DayAt(start); d != 1 {
		t.Fatalf("expected day 1 at start, got %d", d)
	}
	if d := clock.DayAt(start.Add(14 * time.Minute)); d != 1 {
		t.Fatalf("expected day 1 during first night, got %d", d)
	}
	if d := clock.DayAt(start.Add(31 * time.Minute)); d != 3 {
		t.Fatalf("expected day 3 after two cycles, got %d", d)
	}
}
