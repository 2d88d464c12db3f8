// internal/cli/options.go
package cli

import (
	"errors"
	"fmt"

	"cagecleaner/internal/config"

	"github.com/spf13/cobra"
)

// Options holds all CLI flags.
type Options struct {
	// Inputs
	BinaryPath  string
	SummaryPath string

	// Output
	OutDir string

	// Behavior
	ConfigPath      string
	Provider        string // entrez | edirect; empty = config value
	Workers         int    // 0 = config value
	PercentIdentity float64
	NoCache         bool
	ReuseDerep      string // replay an earlier dereplicated_assemblies.txt

	Verbose bool
	Version bool
}

// NewRootCommand builds the cagecleaner command. The run callback receives
// validated options.
func NewRootCommand(run func(cmd *cobra.Command, opts *Options) error) *cobra.Command {
	opts := &Options{}
	cmd := &cobra.Command{
		Use:   "cagecleaner",
		Short: "remove redundant cblaster hits by genome dereplication",
		Long: `cagecleaner reduces a cblaster binary output file to a non-redundant hit
set. Each scaffold accession is resolved to its genome assembly through
NCBI, the assemblies are dereplicated with skDER, and the surviving
representatives are coupled back to their original hits and cluster
numbers. Results are a cleaned binary file and a matching cluster list.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Version {
				return run(cmd, opts)
			}
			if err := opts.Validate(); err != nil {
				return &UsageError{Err: err}
			}
			return run(cmd, opts)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&opts.BinaryPath, "binary", "b", "", "cblaster binary output file (CSV) [*]")
	fs.StringVarP(&opts.SummaryPath, "summary", "s", "", "cblaster summary output file [*]")
	fs.StringVarP(&opts.OutDir, "out-dir", "o", "output", "directory for cleaned_binary.csv and clusters.txt")
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "TOML config file")
	fs.StringVar(&opts.Provider, "resolver", "", "accession resolver: entrez | edirect (default from config)")
	fs.IntVar(&opts.Workers, "workers", 0, "concurrent resolution calls (0 = config value)")
	fs.Float64Var(&opts.PercentIdentity, "pi-cutoff", 99.0, "skDER percent identity cutoff (0 < x <= 100)")
	fs.BoolVar(&opts.NoCache, "no-cache", false, "disable the local scaffold/assembly cache")
	fs.StringVar(&opts.ReuseDerep, "reuse-derep", "", "reuse a dereplicated_assemblies.txt from an earlier run")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")
	fs.BoolVar(&opts.Version, "version", false, "print version and exit")

	return cmd
}

// Validate applies the flag-level contract checks.
func (o *Options) Validate() error {
	switch {
	case o.BinaryPath == "":
		return errors.New("--binary is required")
	case o.SummaryPath == "":
		return errors.New("--summary is required")
	}
	if o.PercentIdentity <= 0 || o.PercentIdentity > 100 {
		return fmt.Errorf("--pi-cutoff must be in (0, 100], got %g", o.PercentIdentity)
	}
	if o.Workers < 0 {
		return errors.New("--workers must be >= 0")
	}
	switch o.Provider {
	case "", config.ProviderEntrez, config.ProviderEdirect:
	default:
		return fmt.Errorf("invalid --resolver %q", o.Provider)
	}
	return nil
}

// UsageError marks a validation failure so the caller can exit with the
// usage exit code instead of the pipeline one.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }
