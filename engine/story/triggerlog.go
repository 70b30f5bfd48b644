package story

import (
	"github.com/google/uuid"
)

// TriggerEntry records one beat firing for the dev overlay.
type TriggerEntry struct {
	ID        string `json:"id"`
	BeatID    string `json:"beat_id"`
	Character string `json:"character,omitempty"`
	Sequence  int    `json:"sequence"`
}

// TriggerLog is a bounded ring of recent beat firings. Oldest entries are
// dropped when the capacity is exceeded.
type TriggerLog struct {
	entries []TriggerEntry
	cap     int
	seq     int
}

// NewTriggerLog creates a log holding at most capacity entries.
func NewTriggerLog(capacity int) *TriggerLog {
	if capacity < 1 {
		capacity = 1
	}
	return &TriggerLog{cap: capacity}
}

// Record appends a firing, evicting the oldest entry if full.
func (l *TriggerLog) Record(beatID, character string) {
	l.seq++
	l.entries = append(l.entries, TriggerEntry{
		ID:        uuid.NewString(),
		BeatID:    beatID,
		Character: character,
		Sequence:  l.seq,
	})
	if len(l.entries) > l.cap {
		l.entries = l.entries[1:]
	}
}

// Entries returns the retained firings, oldest first.
func (l *TriggerLog) Entries() []TriggerEntry {
	out := make([]TriggerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of retained entries.
func (l *TriggerLog) Len() int { return len(l.entries) }

// Clear drops all entries and resets the sequence counter.
func (l *TriggerLog) Clear() {
	l.entries = nil
	l.seq = 0
}
