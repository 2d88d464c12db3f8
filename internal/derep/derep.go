// internal/derep/derep.go
package derep

import (
	"context"
	"errors"
	"fmt"

	"cagecleaner/internal/resolve"
)

// ErrEmptyInput reports a dereplication request with no assemblies.
var ErrEmptyInput = errors.New("no assemblies to dereplicate")

// ErrDereplicationFailed reports that the external dereplication service
// failed or returned an unusable result. There is no local fallback.
var ErrDereplicationFailed = errors.New("dereplication failed")

// Dereplicator picks representative assemblies out of a set of
// near-duplicate genomes. Implementations wrap external tools; the returned
// accessions must be a subset of the input.
type Dereplicator interface {
	Dereplicate(ctx context.Context, assemblies []resolve.AssemblyID) ([]resolve.AssemblyID, error)
}

// Run applies the gateway contract around d: empty input fails before the
// service is contacted, and a failed call or empty result is fatal.
func Run(ctx context.Context, d Dereplicator, assemblies []resolve.AssemblyID) ([]resolve.AssemblyID, error) {
	if len(assemblies) == 0 {
		return nil, ErrEmptyInput
	}
	reps, err := d.Dereplicate(ctx, assemblies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDereplicationFailed, err)
	}
	if len(reps) == 0 {
		return nil, fmt.Errorf("%w: service returned no representatives for %d assemblies", ErrDereplicationFailed, len(assemblies))
	}
	return reps, nil
}

// uniqueAccessions trims and de-duplicates accessions, preserving order and
// dropping anything that does not look like an assembly accession.
func uniqueAccessions(in []resolve.AssemblyID) []resolve.AssemblyID {
	seen := make(map[resolve.AssemblyID]struct{}, len(in))
	out := make([]resolve.AssemblyID, 0, len(in))
	for _, a := range in {
		if !resolve.ValidAccession(a) {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
