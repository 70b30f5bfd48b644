// Package difficulty observes player activity over sliding time windows and
// retunes the opponent AI through a single continuous scalar. The scaler
// never touches AI state directly: Tuning() is its only output channel.
package difficulty

import (
	"math"

	"github.com/ahale/housebound/types"
)

// Config bounds and paces the adaptation. Zero values are replaced by
// defaults in New.
type Config struct {
	Initial           float64
	Min               float64
	Max               float64
	EvalInterval      float64 // seconds of tracked time between evaluations
	ExpectedGoalTime  float64 // seconds a goal "should" take
	ExpectedIdleRatio float64
	AdaptationRate    float64
	MetricWindow      int // bounded queue of goal completion times
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Initial:           0.3,
		Min:               0.1,
		Max:               0.95,
		EvalInterval:      10.0,
		ExpectedGoalTime:  30.0,
		ExpectedIdleRatio: 0.3,
		AdaptationRate:    0.15,
		MetricWindow:      5,
	}
}

// Scaler holds the difficulty level and its activity metrics. One instance
// per session; all methods are called from the single frame writer.
type Scaler struct {
	cfg   Config
	level float64

	// Lifetime counters (survive window resets).
	totalTime       float64
	totalIdle       float64
	roomTransitions int

	// Current-window counters (reset at each evaluation).
	windowTime        float64
	windowIdle        float64
	windowTransitions int
	sinceEval         float64

	// Bounded queue of recent goal completion durations, oldest first.
	completionTimes []float64

	// Activation timestamps (in tracked time) keyed by goal id.
	activeGoals map[string]float64
}

// New creates a scaler with the given config, filling zero fields from
// defaults.
func New(cfg Config) *Scaler {
	def := DefaultConfig()
	if cfg.Initial == 0 {
		cfg.Initial = def.Initial
	}
	if cfg.Min == 0 {
		cfg.Min = def.Min
	}
	if cfg.Max == 0 {
		cfg.Max = def.Max
	}
	if cfg.EvalInterval == 0 {
		cfg.EvalInterval = def.EvalInterval
	}
	if cfg.ExpectedGoalTime == 0 {
		cfg.ExpectedGoalTime = def.ExpectedGoalTime
	}
	if cfg.ExpectedIdleRatio == 0 {
		cfg.ExpectedIdleRatio = def.ExpectedIdleRatio
	}
	if cfg.AdaptationRate == 0 {
		cfg.AdaptationRate = def.AdaptationRate
	}
	if cfg.MetricWindow == 0 {
		cfg.MetricWindow = def.MetricWindow
	}
	return &Scaler{
		cfg:         cfg,
		level:       clamp(cfg.Initial, cfg.Min, cfg.Max),
		activeGoals: make(map[string]float64),
	}
}

// TrackFrame accumulates one frame of tracked time. playerMoving is whether
// the player-controlled agent moved this frame.
func (s *Scaler) TrackFrame(dt float64, playerMoving bool) {
	if dt <= 0 {
		return
	}
	s.totalTime += dt
	s.windowTime += dt
	s.sinceEval += dt
	if !playerMoving {
		s.totalIdle += dt
		s.windowIdle += dt
	}

	if s.sinceEval >= s.cfg.EvalInterval {
		s.evaluate()
		s.sinceEval = 0
		s.windowTime = 0
		s.windowIdle = 0
		s.windowTransitions = 0
	}
}

// OnGoalActivated records the activation timestamp. A goal activated twice
// without completing keeps its original timestamp.
func (s *Scaler) OnGoalActivated(id string) {
	if _, exists := s.activeGoals[id]; exists {
		return
	}
	s.activeGoals[id] = s.totalTime
}

// OnGoalCompleted pushes the elapsed activation→completion duration into the
// bounded metric window. Completion of a goal that was never activated is
// ignored.
func (s *Scaler) OnGoalCompleted(id string) {
	start, ok := s.activeGoals[id]
	if !ok {
		return
	}
	delete(s.activeGoals, id)

	elapsed := s.totalTime - start
	s.completionTimes = append(s.completionTimes, elapsed)
	if len(s.completionTimes) > s.cfg.MetricWindow {
		s.completionTimes = s.completionTimes[1:]
	}
}

// OnGoalAbandoned drops the activation record without contributing a metric;
// every activation must eventually complete, fail, or be abandoned.
func (s *Scaler) OnGoalAbandoned(id string) {
	delete(s.activeGoals, id)
}

// OnRoomTransition counts one room change in the current window.
func (s *Scaler) OnRoomTransition() {
	s.roomTransitions++
	s.windowTransitions++
}

// evaluate recomputes the difficulty level from three independent pressure
// signals summed with fixed weights.
func (s *Scaler) evaluate() {
	var up, down float64

	// 1. Goal-speed pressure.
	if len(s.completionTimes) > 0 {
		sum := 0.0
		for _, t := range s.completionTimes {
			sum += t
		}
		avg := sum / float64(len(s.completionTimes))
		switch {
		case avg < 0.6*s.cfg.ExpectedGoalTime:
			up += 0.3
		case avg > 1.5*s.cfg.ExpectedGoalTime:
			down += 0.3
		}
	}

	// 2. Idle-ratio pressure. A very idle player may be stuck: ease off.
	if s.windowTime > 0 {
		ratio := s.windowIdle / s.windowTime
		switch {
		case ratio > 1.5*s.cfg.ExpectedIdleRatio:
			down += 0.2
		case ratio < 0.5*s.cfg.ExpectedIdleRatio:
			up += 0.1
		}
	}

	// 3. Room-transition-rate pressure.
	if s.windowTime > 0 {
		perMinute := float64(s.windowTransitions) / s.windowTime * 60
		switch {
		case perMinute > 4:
			up += 0.1
		case perMinute < 1 && s.totalTime > 30:
			down += 0.1
		}
	}

	s.level = clamp(s.level+(up-down)*s.cfg.AdaptationRate, s.cfg.Min, s.cfg.Max)
}

// Level returns the current difficulty level.
func (s *Scaler) Level() float64 { return s.level }

// SetLevel overrides the current level, clamped to bounds. Used when
// restoring a saved session.
func (s *Scaler) SetLevel(v float64) {
	s.level = clamp(v, s.cfg.Min, s.cfg.Max)
}

// Tuning derives the AI parameters from the current level. Pure function of
// the level.
func (s *Scaler) Tuning() types.Tuning {
	d := s.level
	return types.Tuning{
		SpeedMultiplier:     0.5 + d,
		PlanningDelay:       2.0 - 1.8*d,
		PathfindingAccuracy: math.Min(1.0, 0.5+0.7*d),
	}
}

// Reset restores the initial difficulty and clears all counters. Called on
// new game / menu return.
func (s *Scaler) Reset() {
	s.level = clamp(s.cfg.Initial, s.cfg.Min, s.cfg.Max)
	s.totalTime = 0
	s.totalIdle = 0
	s.roomTransitions = 0
	s.windowTime = 0
	s.windowIdle = 0
	s.windowTransitions = 0
	s.sinceEval = 0
	s.completionTimes = nil
	clear(s.activeGoals)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
