package progress

import "time"

const (
	progressCeiling = 92.0
	progressRate    = 0.0004
	wobbleAmplitude = 0.3
	wobblePeriodMs  = 400.0

	stepJitter       = 0.25
	compressedFactor = 0.35
)

// Timings holds the simulator's clock constants. Zero fields take the defaults from [DefaultTimings].
type Timings struct {
	Tick           time.Duration // progress ticker interval
	StepFloor      time.Duration // shortest jittered step
	CompressedMin  time.Duration // catch-up delay bounds once the API is done
	CompressedMax  time.Duration
	RapidInterval  time.Duration // step interval in rapid completion mode
	ParkedRelease  time.Duration // delay before leaving the parked final step
	SlowThreshold  time.Duration // elapsed time before the slow status message
	MatchStart     time.Duration // delay before the playlist match counter starts
	MatchPeriodMin time.Duration
	MatchPeriodMax time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		Tick:           150 * time.Millisecond,
		StepFloor:      320 * time.Millisecond,
		CompressedMin:  120 * time.Millisecond,
		CompressedMax:  240 * time.Millisecond,
		RapidInterval:  100 * time.Millisecond,
		ParkedRelease:  100 * time.Millisecond,
		SlowThreshold:  5 * time.Second,
		MatchStart:     2 * time.Second,
		MatchPeriodMin: 200 * time.Millisecond,
		MatchPeriodMax: 500 * time.Millisecond,
	}
}

func (t Timings) normalized() Timings {
	d := DefaultTimings()
	orDefault := func(v, def time.Duration) time.Duration {
		if v <= 0 {
			return def
		}
		return v
	}

	n := Timings{
		Tick:           orDefault(t.Tick, d.Tick),
		StepFloor:      orDefault(t.StepFloor, d.StepFloor),
		CompressedMin:  orDefault(t.CompressedMin, d.CompressedMin),
		CompressedMax:  orDefault(t.CompressedMax, d.CompressedMax),
		RapidInterval:  orDefault(t.RapidInterval, d.RapidInterval),
		ParkedRelease:  orDefault(t.ParkedRelease, d.ParkedRelease),
		SlowThreshold:  orDefault(t.SlowThreshold, d.SlowThreshold),
		MatchStart:     orDefault(t.MatchStart, d.MatchStart),
		MatchPeriodMin: orDefault(t.MatchPeriodMin, d.MatchPeriodMin),
		MatchPeriodMax: orDefault(t.MatchPeriodMax, d.MatchPeriodMax),
	}
	n.CompressedMax = max(n.CompressedMax, n.CompressedMin)
	n.MatchPeriodMax = max(n.MatchPeriodMax, n.MatchPeriodMin)
	return n
}
