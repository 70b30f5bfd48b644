package difficulty

import (
	"math"
	"testing"
)

// advance feeds whole evaluation windows of tracked time.
func advance(s *Scaler, seconds float64, moving bool) {
	steps := int(seconds / 0.1)
	for i := 0; i < steps; i++ {
		s.TrackFrame(0.1, moving)
	}
}

func TestLevel_StaysWithinBounds(t *testing.T) {
	s := New(Config{})
	cfg := DefaultConfig()

	// Hammer the scaler upward: instant goal completions, frantic movement.
	for round := 0; round < 50; round++ {
		id := "g"
		s.OnGoalActivated(id)
		s.TrackFrame(0.5, true)
		s.OnGoalCompleted(id)
		s.OnRoomTransition()
		advance(s, cfg.EvalInterval, true)
		if l := s.Level(); l < cfg.Min || l > cfg.Max {
			t.Fatalf("round %d: level %v outside [%v,%v]", round, l, cfg.Min, cfg.Max)
		}
	}
	if s.Level() != cfg.Max {
		t.Fatalf("sustained pressure should hit ceiling, got %v", s.Level())
	}

	// Now hammer it downward: total idleness. Reset first so stale fast
	// completions in the sliding window don't keep pushing up.
	s.Reset()
	for round := 0; round < 50; round++ {
		advance(s, cfg.EvalInterval, false)
		if l := s.Level(); l < cfg.Min || l > cfg.Max {
			t.Fatalf("round %d: level %v outside bounds", round, l)
		}
	}
	if s.Level() != cfg.Min {
		t.Fatalf("sustained idleness should hit floor, got %v", s.Level())
	}
}

func TestLevel_MonotonicUnderFastCompletions(t *testing.T) {
	s := New(Config{})
	cfg := DefaultConfig()

	prev := s.Level()
	for round := 0; round < 4; round++ {
		// Complete goals in well under 40% of the expected time.
		for i := 0; i < 3; i++ {
			id := "fast"
			s.OnGoalActivated(id)
			advance(s, cfg.ExpectedGoalTime*0.2, true)
			s.OnGoalCompleted(id)
		}
		// Run out the rest of the window so an evaluation lands.
		advance(s, cfg.EvalInterval, true)
		cur := s.Level()
		if cur <= prev && cur < cfg.Max {
			t.Fatalf("round %d: level did not increase (%v -> %v)", round, prev, cur)
		}
		prev = cur
	}
}

func TestIdlePlayer_NeverRaisesDifficulty(t *testing.T) {
	s := New(Config{})
	cfg := DefaultConfig()
	start := s.Level()

	// One full interval of pure idleness, zero goal completions.
	advance(s, cfg.EvalInterval+0.2, false)

	if s.Level() > start {
		t.Fatalf("idle window raised difficulty: %v -> %v", start, s.Level())
	}
}

func TestMetricWindow_BoundedQueueEvictsOldest(t *testing.T) {
	s := New(Config{MetricWindow: 3})

	// Three slow completions, then three instant ones; the slow entries
	// must be fully evicted.
	for i := 0; i < 3; i++ {
		s.OnGoalActivated("slow")
		advance(s, 60, true)
		s.OnGoalCompleted("slow")
	}
	for i := 0; i < 3; i++ {
		s.OnGoalActivated("fast")
		s.TrackFrame(0.5, true)
		s.OnGoalCompleted("fast")
	}

	if len(s.completionTimes) != 3 {
		t.Fatalf("expected window of 3, got %d", len(s.completionTimes))
	}
	for _, d := range s.completionTimes {
		if d > 1 {
			t.Fatalf("slow entry %v survived eviction", d)
		}
	}
}

func TestDoubleActivation_KeepsOriginalTimestamp(t *testing.T) {
	s := New(Config{})
	s.OnGoalActivated("g")
	advance(s, 5, true)
	s.OnGoalActivated("g") // ignored
	advance(s, 5, true)
	s.OnGoalCompleted("g")

	if len(s.completionTimes) != 1 {
		t.Fatalf("expected 1 completion metric, got %d", len(s.completionTimes))
	}
	if d := s.completionTimes[0]; math.Abs(d-10) > 0.5 {
		t.Fatalf("expected ~10s elapsed, got %v", d)
	}
}

func TestAbandonedGoal_LeavesNoMetric(t *testing.T) {
	s := New(Config{})
	s.OnGoalActivated("g")
	advance(s, 3, true)
	s.OnGoalAbandoned("g")
	s.OnGoalCompleted("g") // after abandonment: ignored

	if len(s.completionTimes) != 0 {
		t.Fatalf("abandoned goal produced a metric: %v", s.completionTimes)
	}
}

func TestTuning_DerivedFromLevel(t *testing.T) {
	s := New(Config{Initial: 0.5})
	tn := s.Tuning()

	if math.Abs(tn.SpeedMultiplier-1.0) > 1e-9 {
		t.Errorf("speed: expected 1.0, got %v", tn.SpeedMultiplier)
	}
	if math.Abs(tn.PlanningDelay-1.1) > 1e-9 {
		t.Errorf("planning delay: expected 1.1, got %v", tn.PlanningDelay)
	}
	if math.Abs(tn.PathfindingAccuracy-0.85) > 1e-9 {
		t.Errorf("accuracy: expected 0.85, got %v", tn.PathfindingAccuracy)
	}

	// Accuracy caps at 1.0.
	hi := New(Config{Initial: 0.95})
	if acc := hi.Tuning().PathfindingAccuracy; acc > 1.0 {
		t.Errorf("accuracy exceeded cap: %v", acc)
	}
}

func TestReset_RestoresInitialState(t *testing.T) {
	s := New(Config{})
	cfg := DefaultConfig()

	s.OnGoalActivated("g")
	advance(s, 25, true)
	s.OnGoalCompleted("g")
	s.OnRoomTransition()
	s.Reset()

	if s.Level() != cfg.Initial {
		t.Fatalf("expected level %v after reset, got %v", cfg.Initial, s.Level())
	}
	if s.totalTime != 0 || len(s.completionTimes) != 0 || len(s.activeGoals) != 0 {
		t.Fatal("reset left residual counters")
	}
}
