// internal/summary/summary.go
package summary

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"cagecleaner/internal/hits"
)

// ErrLabelNotFound reports a scaffold with no cluster block in the summary.
var ErrLabelNotFound = errors.New("cluster label not found")

// Labels maps scaffold accessions to their cluster label ("Cluster <n>"),
// parsed once from a cblaster summary file. Each block looks like:
//
//	NZ_CP048008.1
//	-----------
//	Cluster 12
//
// The file is scanned line by line; a scaffold that is a substring of
// another scaffold can never match the wrong block.
type Labels struct {
	byScaffold map[hits.ScaffoldID]string
}

// Read parses a cblaster summary file.
func Read(path string) (*Labels, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()

	l := &Labels{byScaffold: make(map[hits.ScaffoldID]string)}
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var prev, prevPrev string
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if isClusterLine(line) && isSeparator(prev) && prevPrev != "" {
			scaffold := hits.ScaffoldID(strings.TrimSpace(prevPrev))
			if _, seen := l.byScaffold[scaffold]; !seen {
				l.byScaffold[scaffold] = line
			}
		}
		prevPrev, prev = prev, line
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return l, nil
}

// LabelFor returns the cluster label for a scaffold.
func (l *Labels) LabelFor(s hits.ScaffoldID) (string, error) {
	label, ok := l.byScaffold[s]
	if !ok {
		return "", fmt.Errorf("%w: scaffold %s", ErrLabelNotFound, s)
	}
	return label, nil
}

// Len returns the number of scaffolds with a known label.
func (l *Labels) Len() int { return len(l.byScaffold) }

func isSeparator(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r != '-' {
			return false
		}
	}
	return true
}

func isClusterLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "Cluster ")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
