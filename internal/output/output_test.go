package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []reconcile.Entry {
	return []reconcile.Entry{
		{
			Hit:      hits.Hit{Row: 0, Fields: []string{"org1", "S1", "1", "10", "1.0", "g"}},
			Scaffold: "S1", Assembly: "GCF_000000001.1", Label: "Cluster 1",
		},
		{
			Hit:      hits.Hit{Row: 3, Fields: []string{"org4", "S4", "4", "40", "0.7", "g"}},
			Scaffold: "S4", Assembly: "GCF_000000003.1", Label: "Cluster 4",
		},
	}
}

var header = []string{"Organism", "Scaffold", "Start", "End", "Score", "Genes"}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, header, sampleEntries()))

	cleaned, err := os.ReadFile(filepath.Join(dir, CleanedName))
	require.NoError(t, err)
	clusters, err := os.ReadFile(filepath.Join(dir, ClustersName))
	require.NoError(t, err)

	cleanedLines := strings.Split(strings.TrimRight(string(cleaned), "\n"), "\n")
	clusterLines := strings.Split(strings.TrimRight(string(clusters), "\n"), "\n")

	require.Len(t, cleanedLines, 3) // header + 2 hits
	assert.Equal(t, "Organism,Scaffold,Start,End,Score,Genes", cleanedLines[0])
	assert.Equal(t, "org1,S1,1,10,1.0,g", cleanedLines[1])
	assert.Equal(t, "org4,S4,4,40,0.7,g", cleanedLines[2])

	// Cluster list stays in lock-step with the cleaned table.
	require.Len(t, clusterLines, len(cleanedLines)-1)
	assert.Equal(t, []string{"Cluster 1", "Cluster 4"}, clusterLines)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, header, sampleEntries()))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name())
	}
	assert.ElementsMatch(t, []string{CleanedName, ClustersName}, names)
}

func TestWriteEmptyEntries(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Write(dir, header, nil))

	cleaned, err := os.ReadFile(filepath.Join(dir, CleanedName))
	require.NoError(t, err)
	assert.Equal(t, "Organism,Scaffold,Start,End,Score,Genes\n", string(cleaned))

	clusters, err := os.ReadFile(filepath.Join(dir, ClustersName))
	require.NoError(t, err)
	assert.Empty(t, string(clusters))
}
