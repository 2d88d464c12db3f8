package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"cagecleaner/internal/hits"
	"cagecleaner/internal/resolve"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResolver struct {
	calls int
	table map[hits.ScaffoldID]resolve.AssemblyID
}

func (c *countingResolver) ResolveScaffold(_ context.Context, s hits.ScaffoldID) (resolve.AssemblyID, error) {
	c.calls++
	a, ok := c.table[s]
	if !ok {
		return "", fmt.Errorf("%w: %s", resolve.ErrNotFound, s)
	}
	return a, nil
}

func openStore(t *testing.T, next resolve.Resolver) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "accessions.db"), next)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestResolveScaffoldMemoizes(t *testing.T) {
	next := &countingResolver{table: map[hits.ScaffoldID]resolve.AssemblyID{"S1": "GCF_000000001.1"}}
	s := openStore(t, next)
	ctx := context.Background()

	a, err := s.ResolveScaffold(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, resolve.AssemblyID("GCF_000000001.1"), a)
	assert.Equal(t, 1, next.calls)

	a, err = s.ResolveScaffold(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, resolve.AssemblyID("GCF_000000001.1"), a)
	assert.Equal(t, 1, next.calls, "second lookup must hit the cache")
}

func TestResolveScaffoldDoesNotCacheFailures(t *testing.T) {
	next := &countingResolver{}
	s := openStore(t, next)
	ctx := context.Background()

	_, err := s.ResolveScaffold(ctx, "SX")
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	_, err = s.ResolveScaffold(ctx, "SX")
	assert.ErrorIs(t, err, resolve.ErrNotFound)
	assert.Equal(t, 2, next.calls, "failures must be retried, not cached")
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accessions.db")
	next := &countingResolver{table: map[hits.ScaffoldID]resolve.AssemblyID{"S1": "GCF_000000001.1"}}

	s, err := Open(path, next)
	require.NoError(t, err)
	_, err = s.ResolveScaffold(context.Background(), "S1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, next)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	a, err := s.ResolveScaffold(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, resolve.AssemblyID("GCF_000000001.1"), a)
	assert.Equal(t, 1, next.calls)
}
