package urlstate

import "sync"

// History receives address changes made by a Location.
type History interface {
	PushState(u string)
	ReplaceState(u string)
}

// MemoryHistory is a session history kept in memory with a cursor, enough to
// model back and forward navigation outside a browser.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
	index   int
}

// NewMemoryHistory starts a history at initial.
func NewMemoryHistory(initial string) *MemoryHistory {
	return &MemoryHistory{entries: []string{initial}}
}

// PushState drops any forward entries and appends u.
func (h *MemoryHistory) PushState(u string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], u)
	h.index = len(h.entries) - 1
}

// ReplaceState overwrites the current entry.
func (h *MemoryHistory) ReplaceState(u string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.index] = u
}

// Current returns the entry under the cursor.
func (h *MemoryHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Back moves the cursor one entry back and returns that entry.
// It reports false when already at the oldest entry.
func (h *MemoryHistory) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == 0 {
		return "", false
	}
	h.index--
	return h.entries[h.index], true
}

// Forward moves the cursor one entry forward and returns that entry.
func (h *MemoryHistory) Forward() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == len(h.entries)-1 {
		return "", false
	}
	h.index++
	return h.entries[h.index], true
}

// Len returns the number of entries.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
