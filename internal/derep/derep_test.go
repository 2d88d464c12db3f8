package derep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cagecleaner/internal/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticDerep struct {
	reps []resolve.AssemblyID
	err  error
}

func (s staticDerep) Dereplicate(context.Context, []resolve.AssemblyID) ([]resolve.AssemblyID, error) {
	return s.reps, s.err
}

func TestRunEmptyInput(t *testing.T) {
	called := staticDerep{reps: []resolve.AssemblyID{"GCF_000000001.1"}}
	_, err := Run(context.Background(), called, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRunEmptyResult(t *testing.T) {
	_, err := Run(context.Background(), staticDerep{}, []resolve.AssemblyID{"GCF_000000001.1"})
	assert.ErrorIs(t, err, ErrDereplicationFailed)
}

func TestRunServiceError(t *testing.T) {
	_, err := Run(context.Background(), staticDerep{err: os.ErrPermission}, []resolve.AssemblyID{"GCF_000000001.1"})
	assert.ErrorIs(t, err, ErrDereplicationFailed)
}

func TestAccessionFromFilename(t *testing.T) {
	cases := []struct {
		in   string
		want resolve.AssemblyID
		ok   bool
	}{
		{"GCF_000123456.1_ASM123v1.fna", "GCF_000123456.1", true},
		{"GCA_000123456.2_ASM_with_underscores.fna", "GCA_000123456.2", true},
		{"/data/genomes/GCF_000123456.1_ASM123v1.fna", "GCF_000123456.1", true},
		{"GCF_000123456.1", "GCF_000123456.1", true},
		{"README.txt", "", false},
		{"GCX_000123456.1_bad.fna", "", false},
	}
	for _, tc := range cases {
		got, ok := AccessionFromFilename(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestWriteAssemblyListBatches(t *testing.T) {
	var assemblies []resolve.AssemblyID
	for i := 0; i < 7; i++ {
		assemblies = append(assemblies, resolve.AssemblyID(fmt.Sprintf("GCF_%09d.1", i)))
	}
	path := filepath.Join(t.TempDir(), "assemblies.txt")
	require.NoError(t, WriteAssemblyList(path, assemblies, 3))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Len(t, strings.Fields(lines[0]), 3)
	assert.Len(t, strings.Fields(lines[1]), 3)
	assert.Len(t, strings.Fields(lines[2]), 1)
}

func TestReadRepresentatives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dereplicated_assemblies.txt")
	content := "GCF_000000001.1_ASM1v1.fna\n\nGCF_000000002.1_ASM2v1.fna\nGCF_000000001.1_ASM1v1.fna\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reps, err := ReadRepresentatives(path)
	require.NoError(t, err)
	assert.Equal(t, []resolve.AssemblyID{"GCF_000000001.1", "GCF_000000002.1"}, reps)
}

func TestReadRepresentativesRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dereplicated_assemblies.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a genome file\n"), 0o644))
	_, err := ReadRepresentatives(path)
	assert.Error(t, err)
}

func TestFileListDereplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dereplicated_assemblies.txt")
	require.NoError(t, os.WriteFile(path, []byte("GCF_000000001.1_ASM1v1.fna\n"), 0o644))

	reps, err := Run(context.Background(), FileList{Path: path}, []resolve.AssemblyID{"GCF_000000001.1", "GCF_000000002.1"})
	require.NoError(t, err)
	assert.Equal(t, []resolve.AssemblyID{"GCF_000000001.1"}, reps)
}

// Drives the exec adapter with a stub wrapper that echoes a fixed
// representative list into the expected output file.
func TestSkderDereplicate(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-skder.sh")
	stub := "#!/bin/sh\n" +
		"# $1 = assembly list, $2 = pi cutoff, $3 = out dir\n" +
		"test -s \"$1\" || exit 1\n" +
		"printf 'GCF_000000002.1_ASM2v1.fna\\n' > \"$3/dereplicated_assemblies.txt\"\n"
	require.NoError(t, os.WriteFile(script, []byte(stub), 0o755))

	s := NewSkder(SkderConfig{Command: script, PercentIdentity: 99.0, WorkDir: dir}, nil)
	reps, err := Run(context.Background(), s,
		[]resolve.AssemblyID{"GCF_000000001.1", "GCF_000000002.1"})
	require.NoError(t, err)
	assert.Equal(t, []resolve.AssemblyID{"GCF_000000002.1"}, reps)
}

func TestSkderCommandFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-skder.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nexit 3\n"), 0o755))

	s := NewSkder(SkderConfig{Command: script, PercentIdentity: 99.0, WorkDir: dir}, nil)
	_, err := Run(context.Background(), s, []resolve.AssemblyID{"GCF_000000001.1"})
	assert.ErrorIs(t, err, ErrDereplicationFailed)
}
