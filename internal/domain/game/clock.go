package game

import "time"

// DayPhase is the time-of-day component of play, orthogonal to the view
// Phase. Night blocks city movement; day length is fixed, night length
// comes from the lobby settings.
type DayPhase string

const (
	DayPhaseDay   DayPhase = "day"
	DayPhaseNight DayPhase = "night"
)

type ClockConfig struct {
	StartAt       time.Time
	DayDuration   time.Duration
	NightDuration time.Duration
}

type Clock struct {
	cfg ClockConfig
}

func NewClock(cfg ClockConfig) Clock {
	if cfg.DayDuration <= 0 {
		cfg.DayDuration = 10 * time.Minute
	}
	if cfg.NightDuration <= 0 {
		cfg.NightDuration = 5 * time.Minute
	}
	if cfg.StartAt.IsZero() {
		cfg.StartAt = time.Unix(0, 0)
	}
	return Clock{cfg: cfg}
}

// ClockForSettings anchors a session clock at startAt with the night
// length the lobby configured.
func ClockForSettings(startAt time.Time, settings LobbySettings) Clock {
	night := time.Duration(settings.NightLengthMinutes) * time.Minute
	return NewClock(ClockConfig{StartAt: startAt, NightDuration: night})
}

func (c Clock) PhaseAt(now time.Time) (DayPhase, time.Duration) {
	total := c.cfg.DayDuration + c.cfg.NightDuration
	if total <= 0 {
		return DayPhaseDay, 0
	}
	elapsed := now.Sub(c.cfg.StartAt)
	if elapsed < 0 {
		elapsed = 0
	}
	offset := elapsed % total
	if offset < c.cfg.DayDuration {
		return DayPhaseDay, c.cfg.DayDuration - offset
	}
	nightOffset := offset - c.cfg.DayDuration
	return DayPhaseNight, c.cfg.NightDuration - nightOffset
}

// DayAt reports the 1-based day counter: a full day+night cycle advances it.
func (c Clock) DayAt(now time.Time) int {
	total := c.cfg.DayDuration + c.cfg.NightDuration
	if total <= 0 {
		return 1
	}
	elapsed := now.Sub(c.cfg.StartAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return int(elapsed/total) + 1
}
