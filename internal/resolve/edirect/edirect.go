// internal/resolve/edirect/edirect.go
package edirect

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/resolve"
)

// DefaultPipeline is the edirect chain that recovers an assembly accession
// for one nucleotide accession, with %s substituted by the scaffold.
const DefaultPipeline = "esummary -db nucleotide -id %s | " +
	"xtract -pattern DocumentSummary -element BioSample | " +
	"elink -db biosample -target assembly | " +
	"efetch -format docsum | " +
	"xtract -pattern DocumentSummary -element AssemblyAccession"

// Scaffold accessions are interpolated into a shell command line, so only
// plain accession characters are allowed through.
var scaffoldRe = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// Client resolves scaffolds by shelling out to the NCBI edirect utilities,
// which must be on PATH.
type Client struct {
	Shell    string // defaults to /bin/sh
	Pipeline string // defaults to DefaultPipeline
}

// ResolveScaffold implements resolve.Resolver.
func (c *Client) ResolveScaffold(ctx context.Context, scaffold hits.ScaffoldID) (resolve.AssemblyID, error) {
	if !scaffoldRe.MatchString(string(scaffold)) {
		return "", fmt.Errorf("scaffold %q is not a plain accession", scaffold)
	}
	shell := c.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	pipeline := c.Pipeline
	if pipeline == "" {
		pipeline = DefaultPipeline
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, shell, "-c", fmt.Sprintf(pipeline, scaffold))
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("edirect chain for %s: %w (%s)", scaffold, err, strings.TrimSpace(stderr.String()))
	}
	accession := strings.TrimSpace(stdout.String())
	if accession == "" {
		return "", fmt.Errorf("%w: %s", resolve.ErrNotFound, scaffold)
	}
	// Multi-line output means several linked assemblies; keep the first,
	// matching the single-element xtract behavior.
	if i := strings.IndexByte(accession, '\n'); i >= 0 {
		accession = strings.TrimSpace(accession[:i])
	}
	return resolve.AssemblyID(accession), nil
}
