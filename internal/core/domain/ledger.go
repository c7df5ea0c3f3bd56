package domain

import "math"

// LedgerEntry is the cumulative accepted contribution of one contributor.
type LedgerEntry struct {
	Contributor string `json:"contributor"`
	NetFunded   int64  `json:"net_funded"`
	FeesPaid    int64  `json:"fees_paid"`
}

// Ledger maps contributors to their entries for a single item. Entries are
// kept in first-contribution order so share snapshots are deterministic.
// A Ledger is owned by exactly one Crowdfund and never shared.
type Ledger struct {
	order   []string
	entries map[string]LedgerEntry
	dirty   map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[string]LedgerEntry),
		dirty:   make(map[string]struct{}),
	}
}

// Load restores a persisted entry without marking it as modified.
func (l *Ledger) Load(e LedgerEntry) {
	if _, ok := l.entries[e.Contributor]; !ok {
		l.order = append(l.order, e.Contributor)
	}
	l.entries[e.Contributor] = e
}

// Entry returns the entry of contributor, or a zero entry when absent.
func (l *Ledger) Entry(contributor string) LedgerEntry {
	if e, ok := l.entries[contributor]; ok {
		return e
	}
	return LedgerEntry{Contributor: contributor}
}

func (l *Ledger) put(e LedgerEntry) {
	if _, ok := l.entries[e.Contributor]; !ok {
		l.order = append(l.order, e.Contributor)
	}
	l.entries[e.Contributor] = e
	l.dirty[e.Contributor] = struct{}{}
}

// Entries returns all entries in first-contribution order.
func (l *Ledger) Entries() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.order))
	for _, c := range l.order {
		out = append(out, l.entries[c])
	}
	return out
}

// Dirty returns the entries changed since the ledger was loaded.
func (l *Ledger) Dirty() []LedgerEntry {
	out := make([]LedgerEntry, 0, len(l.dirty))
	for _, c := range l.order {
		if _, ok := l.dirty[c]; ok {
			out = append(out, l.entries[c])
		}
	}
	return out
}

// ClearDirty forgets pending modifications after they were persisted.
func (l *Ledger) ClearDirty() {
	clear(l.dirty)
}

// Len returns the number of contributors.
func (l *Ledger) Len() int {
	return len(l.order)
}

// TotalNet sums the net funded amount of every entry.
func (l *Ledger) TotalNet() int64 {
	var total int64
	for _, e := range l.entries {
		total += e.NetFunded
	}
	return total
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		order:   append([]string(nil), l.order...),
		entries: make(map[string]LedgerEntry, len(l.entries)),
		dirty:   make(map[string]struct{}, len(l.dirty)),
	}
	for k, v := range l.entries {
		c.entries[k] = v
	}
	for k := range l.dirty {
		c.dirty[k] = struct{}{}
	}
	return c
}

// addChecked returns a+b for non-negative operands or ErrOverflow.
func addChecked(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}
