// Package arbor implements the spike-exchange communicator for a
// distributed neural-network simulator.
//
// Cells ("neurons") are partitioned across domains of a parallel job. Each
// domain owns a Communicator, built once from a Recipe and a
// DomainDecomposition, that sorts and all-gathers locally generated spikes
// once per communication epoch and turns every received spike into
// per-cell-group delivery events by merge-joining it against a
// precomputed, per-source-domain connection table.
//
// The package does not implement cell biophysics, the concrete collective
// transport (see the DistributedContext interface and the simnet
// sub-package for an in-process stand-in), or the domain-decomposition
// algorithm; those are external collaborators.
package arbor
