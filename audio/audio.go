// Package audio synthesizes the game's sound and music cues. Cues are
// fire-and-forget: a disabled or failed speaker degrades to silent no-ops
// and can never fail the core loop.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const defaultSampleRate = beep.SampleRate(44100)

// Manager owns the speaker and the active music stream. It satisfies the
// engine's AudioSink interface.
type Manager struct {
	mu      sync.Mutex
	enabled bool
	ready   bool
	sr      beep.SampleRate
	mixer   *beep.Mixer
	music   *beep.Ctrl
	musicID string
}

// NewManager creates a manager. Initialize must be called before any cue is
// audible; until then every call is a silent no-op.
func NewManager(enabled bool, sampleRate int) *Manager {
	sr := defaultSampleRate
	if sampleRate > 0 {
		sr = beep.SampleRate(sampleRate)
	}
	return &Manager{
		enabled: enabled,
		sr:      sr,
		mixer:   &beep.Mixer{},
	}
}

// Initialize opens the speaker. A failure leaves the manager silent and is
// reported once; callers keep running without audio.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.ready {
		return nil
	}
	if err := speaker.Init(m.sr, m.sr.N(time.Millisecond*100)); err != nil {
		m.enabled = false
		return fmt.Errorf("audio init: %w", err)
	}
	speaker.Play(m.mixer)
	m.ready = true
	return nil
}

// Cleanup stops all playback.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return
	}
	speaker.Clear()
	m.ready = false
}

// PlaySound plays a one-shot cue by id. Unknown ids get the fallback blip
// so content typos are audible rather than fatal.
func (m *Manager) PlaySound(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return
	}
	streamer := soundCue(id, m.sr)
	speaker.Lock()
	m.mixer.Add(streamer)
	speaker.Unlock()
}

// PlayMusic replaces the current music loop immediately.
func (m *Manager) PlayMusic(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready || m.musicID == id {
		return
	}
	m.startMusic(id, 0)
}

// CrossfadeMusic fades the current loop out while the next fades in.
func (m *Manager) CrossfadeMusic(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready || m.musicID == id {
		return
	}
	m.startMusic(id, time.Second*2)
}

// startMusic swaps the music ctrl under the speaker lock. fade > 0 ramps
// the new loop in and detaches the old one behind a fade-out.
func (m *Manager) startMusic(id string, fade time.Duration) {
	var next beep.Streamer = beep.Loop(-1, musicCue(id, m.sr))
	if fade > 0 {
		next = newFade(next, m.sr.N(fade), true)
	}
	ctrl := &beep.Ctrl{Streamer: next}

	speaker.Lock()
	if m.music != nil {
		if fade > 0 {
			old := m.music
			m.mixer.Add(beep.Take(m.sr.N(fade), newFade(old.Streamer, m.sr.N(fade), false)))
			old.Streamer = nil
		}
		m.music.Paused = true
	}
	m.music = ctrl
	m.mixer.Add(ctrl)
	speaker.Unlock()

	m.musicID = id
}

// fade scales a streamer's gain linearly over rampSamples, in or out.
type fade struct {
	s    beep.Streamer
	ramp int
	pos  int
	in   bool
}

func newFade(s beep.Streamer, rampSamples int, in bool) *fade {
	if rampSamples < 1 {
		rampSamples = 1
	}
	return &fade{s: s, ramp: rampSamples, in: in}
}

func (f *fade) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = f.s.Stream(samples)
	for i := 0; i < n; i++ {
		gain := float64(f.pos) / float64(f.ramp)
		if gain > 1 {
			gain = 1
		}
		if !f.in {
			gain = 1 - gain
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error { return f.s.Err() }
