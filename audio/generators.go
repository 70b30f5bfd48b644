package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

// soundCue maps a cue id to a bounded one-shot streamer.
func soundCue(id string, sr beep.SampleRate) beep.Streamer {
	switch id {
	case "click":
		return beep.Take(sr.N(time.Millisecond*60), newTone(sr, 2200, 0.2))
	case "creak":
		return beep.Take(sr.N(time.Millisecond*700), newSweep(sr, 180, 90, 0.12))
	case "thud":
		return beep.Take(sr.N(time.Millisecond*250), newTone(sr, 65, 0.3))
	case "whisper":
		return beep.Take(sr.N(time.Millisecond*900), newNoise(0.05))
	case "sting":
		return beep.Take(sr.N(time.Millisecond*500), newSweep(sr, 880, 220, 0.18))
	default:
		return beep.Take(sr.N(time.Millisecond*120), newTone(sr, 440, 0.15))
	}
}

// musicCue maps a music id to one loopable phrase.
func musicCue(id string, sr beep.SampleRate) beep.StreamSeeker {
	switch id {
	case "muzak":
		return newArpeggio(sr, []float64{262, 330, 392, 330}, 0.1)
	case "dread":
		return newDrone(sr, 55, 0.12)
	default:
		return newDrone(sr, 110, 0.08)
	}
}

// tone is a fixed-frequency sine with a decay envelope.
type tone struct {
	sr   beep.SampleRate
	freq float64
	amp  float64
	pos  int
}

func newTone(sr beep.SampleRate, freq, amp float64) *tone {
	return &tone{sr: sr, freq: freq, amp: amp}
}

func (g *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		env := math.Exp(-6 * t)
		s := g.amp * env * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *tone) Err() error { return nil }

// sweep glides between two frequencies over one second.
type sweep struct {
	sr       beep.SampleRate
	from, to float64
	amp      float64
	pos      int
	phase    float64
}

func newSweep(sr beep.SampleRate, from, to, amp float64) *sweep {
	return &sweep{sr: sr, from: from, to: to, amp: amp}
}

func (g *sweep) Stream(samples [][2]float64) (n int, ok bool) {
	span := float64(g.sr.N(time.Second))
	for i := range samples {
		frac := float64(g.pos) / span
		if frac > 1 {
			frac = 1
		}
		freq := g.from + (g.to-g.from)*frac
		g.phase += 2 * math.Pi * freq / float64(g.sr)
		s := g.amp * math.Sin(g.phase)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *sweep) Err() error { return nil }

// noise is quiet white noise for whisper-like cues. A cheap xorshift keeps
// it allocation-free and deterministic.
type noise struct {
	amp   float64
	state uint64
}

func newNoise(amp float64) *noise {
	return &noise{amp: amp, state: 0x9E3779B97F4A7C15}
}

func (g *noise) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		g.state ^= g.state << 13
		g.state ^= g.state >> 7
		g.state ^= g.state << 17
		s := g.amp * (float64(g.state%20001)/10000 - 1)
		samples[i][0] = s
		samples[i][1] = s
	}
	return len(samples), true
}

func (g *noise) Err() error { return nil }

// drone layers two detuned sines into an unsettling hum. Implements
// StreamSeeker so beep.Loop can restart it.
type drone struct {
	sr   beep.SampleRate
	freq float64
	amp  float64
	pos  int
	span int
}

func newDrone(sr beep.SampleRate, freq, amp float64) *drone {
	return &drone{sr: sr, freq: freq, amp: amp, span: sr.N(time.Second * 4)}
}

func (g *drone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if g.pos >= g.span {
			return i, i > 0
		}
		t := float64(g.pos) / float64(g.sr)
		s := g.amp * (math.Sin(2*math.Pi*g.freq*t) + 0.6*math.Sin(2*math.Pi*(g.freq*1.02)*t))
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *drone) Err() error { return nil }

func (g *drone) Len() int { return g.span }

func (g *drone) Position() int { return g.pos }

func (g *drone) Seek(p int) error {
	g.pos = p
	return nil
}

// arpeggio cycles through a note sequence, one note per beat. Implements
// StreamSeeker so beep.Loop can restart it.
type arpeggio struct {
	sr    beep.SampleRate
	notes []float64
	amp   float64
	beat  int
	pos   int
}

func newArpeggio(sr beep.SampleRate, notes []float64, amp float64) *arpeggio {
	return &arpeggio{sr: sr, notes: notes, amp: amp, beat: sr.N(time.Millisecond * 400)}
}

func (g *arpeggio) Stream(samples [][2]float64) (n int, ok bool) {
	span := g.Len()
	for i := range samples {
		if g.pos >= span {
			return i, i > 0
		}
		note := g.notes[(g.pos/g.beat)%len(g.notes)]
		within := float64(g.pos%g.beat) / float64(g.sr)
		env := math.Exp(-3 * within)
		s := g.amp * env * math.Sin(2*math.Pi*note*within)
		samples[i][0] = s
		samples[i][1] = s
		g.pos++
	}
	return len(samples), true
}

func (g *arpeggio) Err() error { return nil }

func (g *arpeggio) Len() int { return g.beat * len(g.notes) }

func (g *arpeggio) Position() int { return g.pos }

func (g *arpeggio) Seek(p int) error {
	g.pos = p
	return nil
}
