package tui

// History keeps recently entered commands for up/down recall in command
// mode.
type History struct {
	entries []string
	max     int
	cursor  int
}

// NewHistory creates a history holding at most max entries.
func NewHistory(max int) *History {
	return &History{max: max, cursor: -1}
}

// Push appends a command, evicting the oldest past capacity. Consecutive
// duplicates are collapsed.
func (h *History) Push(cmd string) {
	if n := len(h.entries); n > 0 && h.entries[n-1] == cmd {
		return
	}
	h.entries = append(h.entries, cmd)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev moves the cursor back and returns that entry.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = len(h.entries) - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves the cursor forward; past the newest entry it reports false.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 || h.cursor >= len(h.entries)-1 {
		h.cursor = -1
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// ResetCursor drops the recall position.
func (h *History) ResetCursor() {
	h.cursor = -1
}
