package audio

import (
	"math"
	"testing"
	"time"
)

func drain(t *testing.T, s interface {
	Stream([][2]float64) (int, bool)
}, frames int) []float64 {
	t.Helper()
	var out []float64
	buf := make([][2]float64, 512)
	for len(out) < frames {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			out = append(out, buf[i][0])
		}
		if !ok {
			break
		}
	}
	return out
}

func TestSoundCues_BoundedAmplitude(t *testing.T) {
	for _, id := range []string{"click", "creak", "thud", "whisper", "sting", "unknown_cue"} {
		s := soundCue(id, defaultSampleRate)
		for _, v := range drain(t, s, 48000) {
			if math.Abs(v) > 1 {
				t.Fatalf("cue %s clips: %v", id, v)
			}
		}
	}
}

func TestSoundCues_OneShotEnds(t *testing.T) {
	s := soundCue("click", defaultSampleRate)
	samples := drain(t, s, int(defaultSampleRate)*2)
	// A click must end well before a full second.
	if len(samples) > int(defaultSampleRate)/2 {
		t.Fatalf("click ran for %d samples", len(samples))
	}
}

func TestMusicCues_Seekable(t *testing.T) {
	for _, id := range []string{"muzak", "dread", "unknown"} {
		m := musicCue(id, defaultSampleRate)
		if m.Len() <= 0 {
			t.Fatalf("cue %s has no length", id)
		}
		drain(t, m, m.Len()+10)
		if err := m.Seek(0); err != nil {
			t.Fatalf("cue %s seek: %v", id, err)
		}
		if m.Position() != 0 {
			t.Fatalf("cue %s did not rewind", id)
		}
	}
}

func TestFade_RampsIn(t *testing.T) {
	ramp := defaultSampleRate.N(time.Millisecond * 100)
	f := newFade(newDrone(defaultSampleRate, 110, 0.5), ramp, true)
	samples := drain(t, f, ramp*2)

	early, late := 0.0, 0.0
	for _, v := range samples[:ramp/10] {
		early = math.Max(early, math.Abs(v))
	}
	for _, v := range samples[ramp:] {
		late = math.Max(late, math.Abs(v))
	}
	if early >= late {
		t.Fatalf("fade-in did not ramp: early %v, late %v", early, late)
	}
}

func TestManager_SilentWithoutSpeaker(t *testing.T) {
	m := NewManager(false, 0)
	if err := m.Initialize(); err != nil {
		t.Fatalf("disabled manager must not error: %v", err)
	}
	// All cues are no-ops; none may panic.
	m.PlaySound("click")
	m.PlayMusic("dread")
	m.CrossfadeMusic("muzak")
	m.Cleanup()
}
