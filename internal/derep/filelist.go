// internal/derep/filelist.go
package derep

import (
	"context"

	"cagecleaner/internal/resolve"
)

// FileList is a Dereplicator that replays a dereplicated_assemblies.txt
// produced by an earlier run, so reconciliation can be re-done without
// downloading or clustering anything again.
type FileList struct {
	Path string
}

// Dereplicate implements Dereplicator.
func (f FileList) Dereplicate(_ context.Context, _ []resolve.AssemblyID) ([]resolve.AssemblyID, error) {
	return ReadRepresentatives(f.Path)
}
