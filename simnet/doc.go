// Package simnet is an in-process stand-in for a distributed job: it
// implements arbor.DistributedContext by running every domain in its own
// goroutine and carrying each collective as an all-to-all exchange over
// shared mailboxes.
//
// It is not a production transport (MPI and shared memory live outside
// this repository); it exists so tests and the benchmark command have a
// concrete, deterministic DistributedContext to drive.
package simnet
