package progress

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/shared"
)

const (
	SlowMessage     = "This is taking longer than usual..."
	CompleteMessage = "Conversion complete"

	updateBuffer = 32
)

// SimulationConfig is fixed for the lifetime of a [Simulator].
type SimulationConfig struct {
	ContentType    ContentType
	EstimatedCount int           // playlist track count for the match counter
	BaseDelay      time.Duration // when set, replaces every step duration
	OnComplete     func()        // runs once per run on the simulator goroutine; must not call Stop
	Timings        Timings
	Rand           *rand.Rand
	Logger         *log.Logger
}

// Simulator drives one [ProgressState] through the scripted steps of a conversion.
type Simulator struct {
	cfg     SimulationConfig
	steps   []Step
	timings Timings
	rng     *rand.Rand
	logger  *log.Logger

	apiComplete atomic.Bool
	signal      chan struct{}
	updates     chan ProgressState

	mu      sync.Mutex
	state   ProgressState
	running bool
	runs    int
	done    chan struct{}
	cancel  context.CancelFunc
	exited  chan struct{}
}

func NewSimulator(cfg SimulationConfig) *Simulator {
	if _, err := ParseContentType(string(cfg.ContentType)); err != nil {
		cfg.ContentType = Track
	}
	cfg.EstimatedCount = max(cfg.EstimatedCount, 0)

	steps := Steps(cfg.ContentType)
	if cfg.BaseDelay > 0 {
		for i := range steps {
			steps[i].Duration = cfg.BaseDelay
		}
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	s := &Simulator{
		cfg:     cfg,
		steps:   steps,
		timings: cfg.Timings.normalized(),
		rng:     rng,
		logger:  logger,
		signal:  make(chan struct{}, 1),
		updates: make(chan ProgressState, updateBuffer),
		done:    make(chan struct{}),
	}
	s.state = s.initialState()
	return s
}

func (s *Simulator) initialState() ProgressState {
	first := s.steps[0]
	return ProgressState{
		TotalSteps:       len(s.steps),
		EstimatedCount:   s.matchTarget(),
		CurrentStepName:  first.Name,
		StatusMessage:    first.Name + "...",
		EstimatedTotalMs: TotalDuration(s.steps).Milliseconds(),
	}
}

func (s *Simulator) matchTarget() int {
	if s.cfg.ContentType != Playlist {
		return 0
	}
	return s.cfg.EstimatedCount
}

// Steps returns the steps this simulator walks through.
func (s *Simulator) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Start begins a run. It is a no-op while a run is active. A run is inactive once it completes or
// after [Simulator.Stop]; starting again then begins a fresh run that waits for a new [Simulator.Complete].
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	if s.runs > 0 {
		s.done = make(chan struct{})
		s.apiComplete.Store(false)
		select {
		case <-s.signal:
		default:
		}
	}
	s.runs++

	s.state = s.initialState()
	s.state.RunID = shared.GenerateID()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.exited = make(chan struct{})

	go s.run(ctx, s.done, s.exited)
}

// Stop cancels every pending timer and waits for the run goroutine to exit.
func (s *Simulator) Stop() {
	s.mu.Lock()
	running, cancel, exited := s.running, s.cancel, s.exited
	s.mu.Unlock()

	if exited == nil {
		return
	}
	if running {
		cancel()
	}
	<-exited
	s.release(exited)
}

// release clears the start guard when exited still belongs to the current run.
func (s *Simulator) release(exited chan struct{}) {
	s.mu.Lock()
	if s.exited != exited || !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	cancel()
}

// Complete signals that the real API call has finished. Calling it more than once has no further effect.
func (s *Simulator) Complete() {
	if s.apiComplete.CompareAndSwap(false, true) {
		select {
		case s.signal <- struct{}{}:
		default:
		}
	}
}

// APIComplete reports whether [Simulator.Complete] has been called.
func (s *Simulator) APIComplete() bool {
	return s.apiComplete.Load()
}

// State returns a snapshot of the current run.
func (s *Simulator) State() ProgressState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Updates delivers a snapshot on every state change. Sends never block, so slow readers miss intermediate states.
func (s *Simulator) Updates() <-chan ProgressState {
	return s.updates
}

// Done is closed when the current run completes.
func (s *Simulator) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

func (s *Simulator) update(fn func(*ProgressState)) {
	s.mu.Lock()
	fn(&s.state)
	snapshot := s.state
	s.mu.Unlock()

	select {
	case s.updates <- snapshot:
	default:
	}
}

func (s *Simulator) run(ctx context.Context, done, exited chan struct{}) {
	defer close(exited)

	t := s.timings
	total := len(s.steps)
	start := time.Now()

	ticker := time.NewTicker(t.Tick)
	defer ticker.Stop()

	var (
		step, match timerSlot
		current     int
		observed    bool
		rapid       bool
		parked      bool
		slowShown   bool
	)
	defer step.stop()
	defer match.stop()

	enter := func(i int) {
		name := s.steps[i].Name
		s.update(func(st *ProgressState) {
			st.CurrentStep = i
			st.CurrentStepName = name
			st.StatusMessage = name + "..."
			st.IsWaitingForAPI = false
		})
		s.logger.Debug("simulated step", "step", i+1, "total", total, "name", name)
	}

	schedule := func() {
		switch {
		case rapid:
			step.arm(t.RapidInterval)
		case s.apiComplete.Load():
			step.arm(s.compressedDelay(s.steps[current].Duration))
		case current == total-1:
			parked = true
			s.update(func(st *ProgressState) { st.IsWaitingForAPI = true })
		default:
			step.arm(s.jitteredDelay(s.steps[current].Duration))
		}
	}

	observe := func() {
		if observed || !s.apiComplete.Load() {
			return
		}
		observed = true
		s.update(func(st *ProgressState) { st.Progress = 100 })

		if parked {
			step.arm(t.ParkedRelease)
			return
		}
		if !rapid {
			rapid = true
			step.arm(t.RapidInterval)
		}
	}

	finish := func() {
		step.stop()
		match.stop()
		elapsed := time.Since(start)
		s.update(func(st *ProgressState) {
			st.CurrentStep = total
			st.IsComplete = true
			st.IsWaitingForAPI = false
			st.Progress = 100
			st.StatusMessage = CompleteMessage
			st.ElapsedMs = elapsed.Milliseconds()
			st.MatchedCount = st.EstimatedCount
		})
		s.release(exited)
		close(done)
		s.logger.Info("simulation complete", "type", s.cfg.ContentType, "elapsed", elapsed.Round(time.Millisecond))

		if s.cfg.OnComplete != nil {
			s.cfg.OnComplete()
		}
	}

	matchPeriod := t.MatchPeriodMin
	if spread := t.MatchPeriodMax - t.MatchPeriodMin; spread > 0 {
		matchPeriod += time.Duration(s.rng.Int64N(int64(spread) + 1))
	}
	if s.matchTarget() > 0 {
		match.arm(t.MatchStart)
	}

	enter(0)
	schedule()
	observe()

	for {
		select {
		case <-ctx.Done():
			return

		case now := <-ticker.C:
			elapsed := now.Sub(start)
			s.update(func(st *ProgressState) {
				st.ElapsedMs = elapsed.Milliseconds()
				if !observed {
					st.Progress = max(st.Progress, progressAt(st.ElapsedMs))
				}
				if !observed && !slowShown && elapsed > t.SlowThreshold && st.MatchedCount >= st.EstimatedCount {
					slowShown = true
					st.StatusMessage = SlowMessage
				}
			})

		case <-s.signal:
			observe()

		case <-step.C():
			step.fired()
			current++
			if current >= total {
				finish()
				return
			}
			enter(current)
			schedule()

		case <-match.C():
			match.fired()
			var reached bool
			s.update(func(st *ProgressState) {
				st.MatchedCount = min(st.MatchedCount+s.rng.IntN(3), st.EstimatedCount)
				reached = st.MatchedCount >= st.EstimatedCount
			})
			if !reached {
				match.arm(matchPeriod)
			}
		}
	}
}

// jitteredDelay varies d by up to ±25% and floors it at [Timings.StepFloor].
func (s *Simulator) jitteredDelay(d time.Duration) time.Duration {
	factor := 1 + (s.rng.Float64()*2-1)*stepJitter
	return max(time.Duration(float64(d)*factor), s.timings.StepFloor)
}

// compressedDelay is the catch-up delay used once the API has already finished.
func (s *Simulator) compressedDelay(d time.Duration) time.Duration {
	scaled := time.Duration(math.Round(float64(d) * compressedFactor))
	return max(s.timings.CompressedMin, min(scaled, s.timings.CompressedMax))
}

// progressAt is the decaying curve toward the 92% ceiling with a small wobble, clamped to [0,100].
func progressAt(elapsedMs int64) float64 {
	ms := float64(elapsedMs)
	p := progressCeiling*(1-math.Exp(-progressRate*ms)) + wobbleAmplitude*math.Sin(ms/wobblePeriodMs)
	return min(max(p, 0), 100)
}

// timerSlot holds at most one pending timer.
type timerSlot struct {
	t *time.Timer
}

func (ts *timerSlot) arm(d time.Duration) {
	ts.stop()
	ts.t = time.NewTimer(d)
}

func (ts *timerSlot) stop() {
	if ts.t != nil {
		ts.t.Stop()
		ts.t = nil
	}
}

func (ts *timerSlot) fired() {
	ts.t = nil
}

// C returns the pending timer's channel, or nil so a select case never fires.
func (ts *timerSlot) C() <-chan time.Time {
	if ts.t == nil {
		return nil
	}
	return ts.t.C
}
