// internal/reconcile/reconcile.go
package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/resolve"
	"cagecleaner/internal/summary"
)

// ErrMismatch reports an internal consistency failure between pipeline
// stages: a representative assembly the resolver never produced, or a
// recovered scaffold with no hit row behind it.
var ErrMismatch = errors.New("reconciliation mismatch")

// Entry is one surviving hit with everything the output stage needs.
type Entry struct {
	Hit      hits.Hit
	Scaffold hits.ScaffoldID
	Assembly resolve.AssemblyID
	Label    string
}

// Reconcile couples each representative assembly back to its originating
// scaffold, hit row and cluster label. Entries come back ordered by the
// hit's original row index, not by the order the dereplication service
// returned representatives, so output is reproducible for identical inputs.
func Reconcile(representatives []resolve.AssemblyID, m *resolve.Map, table *hits.Table, labels *summary.Labels) ([]Entry, error) {
	inv := m.Inverse()

	entries := make([]Entry, 0, len(representatives))
	for _, rep := range representatives {
		scaffold, ok := inv[rep]
		if !ok {
			return nil, fmt.Errorf("%w: representative assembly %s was never resolved from any scaffold", ErrMismatch, rep)
		}
		hit, ok := table.HitFor(scaffold)
		if !ok {
			return nil, fmt.Errorf("%w: scaffold %s has no row in the hit table", ErrMismatch, scaffold)
		}
		label, err := labels.LabelFor(scaffold)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Hit: hit, Scaffold: scaffold, Assembly: rep, Label: label})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Hit.Row < entries[j].Hit.Row })
	return entries, nil
}
