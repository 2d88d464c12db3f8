// Package pipeline chains the cleaning stages: hit-table parse, scaffold →
// assembly resolution, genome dereplication, reconciliation, output.
//
// The only contracts to implement are resolve.Resolver and
// derep.Dereplicator. This keeps the pipeline swappable and testable.
package pipeline
