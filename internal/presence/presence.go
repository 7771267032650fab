package presence

import (
	"sort"
	"sync"
)

// Tracker maintains the set of online identities as a name -> connection
// count map, so a user logged in from two devices stays on the roster until
// the last connection goes away.
type Tracker struct {
	mu    sync.Mutex
	conns map[string]int
}

func NewTracker() *Tracker {
	return &Tracker{conns: make(map[string]int)}
}

// Register records one connection for name. Returns true when the name just
// joined the roster (first connection).
func (t *Tracker) Register(name string) bool {
	if name == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[name]++
	return t.conns[name] == 1
}

// Disconnect records the end of one connection for name. Returns true when
// the name just left the roster (last connection). Unknown names are ignored.
func (t *Tracker) Disconnect(name string) bool {
	if name == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	n, ok := t.conns[name]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(t.conns, name)
		return true
	}
	t.conns[name] = n - 1
	return false
}

// Roster returns the currently-online names, sorted for stable output.
func (t *Tracker) Roster() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.conns))
	for name := range t.conns {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
