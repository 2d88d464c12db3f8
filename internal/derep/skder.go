// internal/derep/skder.go
package derep

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"cagecleaner/internal/resolve"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Batch size for the assembly list file: accessions are written
// space-separated, 300 per line, the chunking the download tooling expects.
const defaultBatchSize = 300

// SkderConfig configures the skDER wrapper invocation.
type SkderConfig struct {
	// Command is invoked as: Command <assembly list> <pi cutoff> <out dir>.
	// It must download the listed genomes, dereplicate them, and leave the
	// representative genome filenames in <out dir>/dereplicated_assemblies.txt.
	Command         string
	PercentIdentity float64 // skDER percent identity cutoff, (0, 100]
	WorkDir         string  // parent for per-run scratch directories
	BatchSize       int     // accessions per list-file line; 0 = 300
}

// Skder downloads and dereplicates genomes through an skDER wrapper script.
type Skder struct {
	cfg SkderConfig
	log *zap.Logger
}

func NewSkder(cfg SkderConfig, log *zap.Logger) *Skder {
	if cfg.Command == "" {
		cfg.Command = "skder-derep"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Skder{cfg: cfg, log: log}
}

// Dereplicate implements Dereplicator.
func (s *Skder) Dereplicate(ctx context.Context, assemblies []resolve.AssemblyID) ([]resolve.AssemblyID, error) {
	runDir := filepath.Join(s.cfg.WorkDir, "cagecleaner-"+uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	listPath := filepath.Join(runDir, "assemblies.txt")
	if err := WriteAssemblyList(listPath, assemblies, s.cfg.BatchSize); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.cfg.Command,
		listPath, fmt.Sprintf("%g", s.cfg.PercentIdentity), runDir)
	cmd.Dir = runDir
	cmd.Stderr = &stderr
	s.log.Info("dereplicating genomes",
		zap.Int("assemblies", len(assemblies)),
		zap.String("command", s.cfg.Command),
		zap.Float64("percent_identity", s.cfg.PercentIdentity),
		zap.String("scratch", runDir))
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w (%s)", s.cfg.Command, err, strings.TrimSpace(stderr.String()))
	}

	outPath := filepath.Join(runDir, "dereplicated_assemblies.txt")
	reps, err := ReadRepresentatives(outPath)
	if err != nil {
		return nil, err
	}
	return reps, nil
}

// WriteAssemblyList writes accessions space-separated, batchSize per line.
func WriteAssemblyList(path string, assemblies []resolve.AssemblyID, batchSize int) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write assembly list: %w", err)
	}
	w := bufio.NewWriter(fh)
	for i := 0; i < len(assemblies); i += batchSize {
		end := i + batchSize
		if end > len(assemblies) {
			end = len(assemblies)
		}
		for j := i; j < end; j++ {
			if j > i {
				_, _ = w.WriteString(" ")
			}
			_, _ = w.WriteString(string(assemblies[j]))
		}
		_, _ = w.WriteString("\n")
	}
	if err := w.Flush(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write assembly list: %w", err)
	}
	return fh.Close()
}

// ReadRepresentatives parses a dereplicated_assemblies.txt file: one genome
// filename (or bare accession) per line, e.g. GCF_000123456.1_ASM123v1.fna.
func ReadRepresentatives(path string) ([]resolve.AssemblyID, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read representatives: %w", err)
	}
	defer func() { _ = fh.Close() }()

	var reps []resolve.AssemblyID
	sc := bufio.NewScanner(fh)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		acc, ok := AccessionFromFilename(line)
		if !ok {
			return nil, fmt.Errorf("%s:%d: %q does not contain an assembly accession", path, ln, line)
		}
		reps = append(reps, acc)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read representatives: %w", err)
	}
	return uniqueAccessions(reps), nil
}

// AccessionFromFilename recovers the assembly accession from a genome file
// name shaped GC[AF]_<nine digits>.<version>_<assembly name>[.fna]; the
// accession is everything before the second underscore.
func AccessionFromFilename(name string) (resolve.AssemblyID, bool) {
	base := filepath.Base(strings.TrimSpace(name))
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 2 {
		return "", false
	}
	acc := resolve.AssemblyID(parts[0] + "_" + parts[1])
	if !resolve.ValidAccession(acc) {
		return "", false
	}
	return acc, true
}
