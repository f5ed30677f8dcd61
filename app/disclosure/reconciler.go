package disclosure

import (
	"sort"
	"strings"
)

// Reconciler merges candidate records from all sources into the ordered
// sequence persisted to the feed artifact: incomplete candidates are dropped,
// duplicates collapse by identity key, and the survivors are sorted by date.
type Reconciler struct{}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) Run(candidates []Record) []Record {
	index := make(map[string]int, len(candidates))
	reconciled := make([]Record, 0, len(candidates))

	for _, candidate := range candidates {
		if !r.isComplete(candidate) {
			continue
		}

		key := candidate.IdentityKey()
		if pos, seen := index[key]; seen {
			// Later candidates with the same identity win outright; fields
			// are not merged across sources.
			reconciled[pos] = candidate
			continue
		}

		index[key] = len(reconciled)
		reconciled = append(reconciled, candidate)
	}

	// The canonical date format is fixed-width, so lexicographic comparison
	// orders by calendar date. Equal dates keep insertion order.
	sort.SliceStable(reconciled, func(i, j int) bool {
		return reconciled[i].Date > reconciled[j].Date
	})

	return reconciled
}

func (r *Reconciler) isComplete(record Record) bool {
	return strings.TrimSpace(record.Title) != "" &&
		record.Link != "" &&
		record.Date != ""
}
