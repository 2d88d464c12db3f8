// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cagecleaner/internal/cache"
	"cagecleaner/internal/cli"
	"cagecleaner/internal/config"
	"cagecleaner/internal/derep"
	"cagecleaner/internal/pipeline"
	"cagecleaner/internal/resolve"
	"cagecleaner/internal/resolve/edirect"
	"cagecleaner/internal/resolve/entrez"
	"cagecleaner/internal/version"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RunContext parses argv, assembles the pipeline and runs it. Exit codes:
// 0 success, 1 pipeline failure, 2 usage error.
func RunContext(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	// Credentials may live in a .env next to the invocation; absence is fine.
	_ = godotenv.Load()

	cmd := cli.NewRootCommand(func(cmd *cobra.Command, opts *cli.Options) error {
		if opts.Version {
			_, _ = fmt.Fprintf(stdout, "cagecleaner version %s\n", version.Version)
			return nil
		}
		return run(cmd.Context(), opts, cmd.Flags().Changed("pi-cutoff"), stdout, stderr)
	})
	cmd.SetArgs(argv)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &cli.UsageError{Err: err}
	})

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "cagecleaner: %v\n", err)
	var usage *cli.UsageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func run(ctx context.Context, opts *cli.Options, piCutoffSet bool, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts, piCutoffSet)
	if err != nil {
		return err
	}

	log := newLogger(stderr, opts.Verbose)
	defer func() { _ = log.Sync() }()

	resolver, closeResolver := buildResolver(cfg, log)
	defer closeResolver()

	p := &pipeline.Pipeline{
		Resolver:     resolver,
		Dereplicator: buildDereplicator(cfg, opts, log),
		Log:          log,
	}
	res, err := p.Run(ctx, pipeline.Config{
		BinaryPath:  opts.BinaryPath,
		SummaryPath: opts.SummaryPath,
		OutDir:      opts.OutDir,
		Workers:     cfg.Resolver.Workers,
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout,
		"%d hits kept of %d (%d assemblies resolved, %d duplicates, %d unresolved, %d representatives)\n",
		res.HitsKept, res.Scaffolds,
		res.Report.Resolved, res.Report.Duplicates, res.Report.Unresolved,
		res.Representatives)
	return nil
}

func loadConfig(opts *cli.Options, piCutoffSet bool) (config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return cfg, err
		}
	}
	cfg.ApplyEnv()

	// Flags win over file values.
	if opts.Provider != "" {
		cfg.Resolver.Provider = opts.Provider
	}
	if opts.Workers > 0 {
		cfg.Resolver.Workers = opts.Workers
	}
	if piCutoffSet || cfg.Skder.PercentIdentity == 0 {
		cfg.Skder.PercentIdentity = opts.PercentIdentity
	}
	if opts.NoCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

func newLogger(stderr io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(stderr), level)
	return zap.New(core)
}

func buildResolver(cfg config.Config, log *zap.Logger) (resolve.Resolver, func()) {
	var r resolve.Resolver
	switch cfg.Resolver.Provider {
	case config.ProviderEdirect:
		r = &edirect.Client{}
	default:
		r = entrez.New(entrez.Config{
			BaseURL: cfg.Entrez.BaseURL,
			APIKey:  cfg.Entrez.APIKey,
			Email:   cfg.Entrez.Email,
			Timeout: time.Duration(cfg.Entrez.TimeoutSeconds) * time.Second,
		})
	}

	if !cfg.Cache.Enabled {
		return r, func() {}
	}
	store, err := cache.Open(cfg.Cache.Path, r)
	if err != nil {
		// A broken cache should not block a run; fall back to the bare
		// resolver and say so.
		log.Warn("accession cache unavailable", zap.String("path", cfg.Cache.Path), zap.Error(err))
		return r, func() {}
	}
	return store, func() { _ = store.Close() }
}

func buildDereplicator(cfg config.Config, opts *cli.Options, log *zap.Logger) derep.Dereplicator {
	if opts.ReuseDerep != "" {
		return derep.FileList{Path: opts.ReuseDerep}
	}
	return derep.NewSkder(derep.SkderConfig{
		Command:         cfg.Skder.Command,
		PercentIdentity: cfg.Skder.PercentIdentity,
		WorkDir:         cfg.Skder.WorkDir,
		BatchSize:       cfg.Skder.BatchSize,
	}, log)
}
