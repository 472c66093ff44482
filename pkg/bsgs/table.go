package bsgs

// Table maps fingerprints to baby indices. It is a multimap: on a fingerprint
// collision every colliding index is retained, so the true baby index can
// never be shadowed by a later writer. Lookups during the search return all
// candidates and the caller verifies each one.
//
// A Table is built single-threaded by the loader and immutable afterwards;
// concurrent readers need no locking.
type Table struct {
	buckets map[Fingerprint][]uint64
	entries int
}

// NewTable returns an empty table sized for about sizeHint entries.
func NewTable(sizeHint int) *Table {
	if sizeHint < 0 {
		sizeHint = 0
	}
	return &Table{buckets: make(map[Fingerprint][]uint64, sizeHint)}
}

// Add records idx as a baby index for fp.
func (t *Table) Add(fp Fingerprint, idx uint64) {
	t.buckets[fp] = append(t.buckets[fp], idx)
	t.entries++
}

// Lookup returns every baby index recorded for fp, or nil.
func (t *Table) Lookup(fp Fingerprint) []uint64 {
	return t.buckets[fp]
}

// Len returns the total number of entries, counting collisions.
func (t *Table) Len() int {
	return t.entries
}
