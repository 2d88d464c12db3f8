// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"time"

	"cagecleaner/internal/derep"
	"cagecleaner/internal/hits"
	"cagecleaner/internal/output"
	"cagecleaner/internal/reconcile"
	"cagecleaner/internal/resolve"
	"cagecleaner/internal/summary"

	"go.uber.org/zap"
)

// Config controls one cleaning run.
type Config struct {
	BinaryPath  string // cblaster binary output (CSV)
	SummaryPath string // cblaster summary output
	OutDir      string
	Workers     int // concurrent resolution calls
}

// Pipeline wires the stages around the two external ports. Everything else
// is filesystem work.
type Pipeline struct {
	Resolver     resolve.Resolver
	Dereplicator derep.Dereplicator
	Log          *zap.Logger
}

// Result summarizes a successful run.
type Result struct {
	Scaffolds       int
	Report          resolve.Report
	Representatives int
	HitsKept        int
}

// Run executes the full pipeline. Any returned error means no output files
// were produced.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	table, err := hits.ReadTable(cfg.BinaryPath)
	if err != nil {
		return nil, err
	}
	labels, err := summary.Read(cfg.SummaryPath)
	if err != nil {
		return nil, err
	}
	scaffolds := table.Scaffolds()
	log.Info("extracted scaffold accessions",
		zap.Int("scaffolds", len(scaffolds)),
		zap.Int("labelled", labels.Len()))

	start := time.Now()
	log.Info("resolving assembly accessions", zap.Int("workers", cfg.Workers))
	m, report, err := resolve.ResolveAll(ctx, p.Resolver, cfg.Workers, scaffolds, log)
	if err != nil {
		return nil, err
	}
	log.Info("resolved assembly accessions",
		zap.Int("resolved", report.Resolved),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("unresolved", report.Unresolved),
		zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	reps, err := derep.Run(ctx, p.Dereplicator, m.Assemblies())
	if err != nil {
		return nil, err
	}
	log.Info("dereplicated genomes",
		zap.Int("assemblies", m.Len()),
		zap.Int("representatives", len(reps)),
		zap.Duration("elapsed", time.Since(start)))

	entries, err := reconcile.Reconcile(reps, m, table, labels)
	if err != nil {
		return nil, err
	}
	if err := output.Write(cfg.OutDir, table.Header, entries); err != nil {
		return nil, err
	}
	log.Info("wrote cleaned outputs",
		zap.String("dir", cfg.OutDir),
		zap.Int("hits_kept", len(entries)))

	return &Result{
		Scaffolds:       len(scaffolds),
		Report:          report,
		Representatives: len(reps),
		HitsKept:        len(entries),
	}, nil
}
