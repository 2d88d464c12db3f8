// internal/resolve/resolver.go
package resolve

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"cagecleaner/internal/hits"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AssemblyID is a genome assembly accession (GCA_/GCF_ prefixed).
type AssemblyID string

// Resolver maps one scaffold accession to its assembly accession.
// Implementations are external lookups (NCBI E-utilities over HTTP, the
// edirect command-line chain) and may be slow or unreliable; they must
// honor ctx.
type Resolver interface {
	ResolveScaffold(ctx context.Context, scaffold hits.ScaffoldID) (AssemblyID, error)
}

// ErrNotFound is returned by a Resolver when the service knows no assembly
// for a scaffold. It is a per-item condition, never fatal on its own.
var ErrNotFound = errors.New("no assembly for scaffold")

// ErrNoneResolved reports that not a single scaffold resolved to a valid
// assembly accession.
var ErrNoneResolved = errors.New("no assembly accessions resolved")

var accessionRe = regexp.MustCompile(`^GC[AF]_\d{9}\.\d+$`)

// ValidAccession reports whether a looks like a versioned RefSeq/GenBank
// assembly accession.
func ValidAccession(a AssemblyID) bool { return accessionRe.MatchString(string(a)) }

// Report summarizes one resolution pass.
type Report struct {
	Resolved   int // scaffolds that produced a novel assembly
	Duplicates int // scaffolds dropped because their assembly was already mapped
	Unresolved int // lookup failures and malformed accessions, skipped
}

type outcome struct {
	assembly AssemblyID
	err      error
}

// ResolveAll resolves every scaffold through r with at most workers
// concurrent calls and folds the outcomes into a Map.
//
// Outcomes are buffered per input index and folded strictly in input order,
// so the first-seen-wins duplicate policy is identical to the sequential
// algorithm no matter how many workers run or which call finishes first.
func ResolveAll(ctx context.Context, r Resolver, workers int, scaffolds []hits.ScaffoldID, log *zap.Logger) (*Map, Report, error) {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	outcomes := make([]outcome, len(scaffolds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range scaffolds {
		i, s := i, s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := r.ResolveScaffold(gctx, s)
			outcomes[i] = outcome{assembly: a, err: err}
			// Per-item failures are folded below; only cancellation
			// stops the group.
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Report{}, err
	}

	m := NewMap()
	var rep Report
	for i, s := range scaffolds {
		o := outcomes[i]
		switch {
		case o.err != nil:
			rep.Unresolved++
			log.Warn("scaffold did not resolve", zap.String("scaffold", string(s)), zap.Error(o.err))
		case !ValidAccession(o.assembly):
			rep.Unresolved++
			log.Warn("resolver returned a malformed assembly accession",
				zap.String("scaffold", string(s)), zap.String("assembly", string(o.assembly)))
		case !m.Add(s, o.assembly):
			rep.Duplicates++
		default:
			rep.Resolved++
		}
	}
	if m.Len() == 0 {
		return nil, rep, fmt.Errorf("%w: %d scaffolds, %d unresolved", ErrNoneResolved, len(scaffolds), rep.Unresolved)
	}
	return m, rep, nil
}
