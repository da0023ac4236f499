package media

import "sort"

// Ledger records the final size of every processed media file, in the order
// the files were discovered.
type Ledger struct {
	order   []string
	entries map[string]Result
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]Result)}
}

// Add records r under r.Key. Re-adding a key replaces the result but keeps
// its original position.
func (l *Ledger) Add(r Result) {
	if _, ok := l.entries[r.Key]; !ok {
		l.order = append(l.order, r.Key)
	}
	l.entries[r.Key] = r
}

func (l *Ledger) Len() int { return len(l.order) }

// Keys returns ledger keys in discovery order.
func (l *Ledger) Keys() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Get returns the result recorded for key.
func (l *Ledger) Get(key string) (Result, bool) {
	r, ok := l.entries[key]
	return r, ok
}

// Results returns all results in discovery order.
func (l *Ledger) Results() []Result {
	out := make([]Result, 0, len(l.order))
	for _, k := range l.order {
		out = append(out, l.entries[k])
	}
	return out
}

// Largest returns at most n results ordered by final size, largest first.
// Ties keep discovery order.
func (l *Ledger) Largest(n int) []Result {
	out := l.Results()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalSize > out[j].FinalSize
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Totals returns the summed original and final sizes.
func (l *Ledger) Totals() (original, final int64) {
	for _, r := range l.entries {
		original += r.OriginalSize
		final += r.FinalSize
	}
	return original, final
}
