package arbor

import (
	"github.com/pkg/errors"
)

// Construction is all-or-nothing: errInvalidConnection and
// errInconsistentDomain abort the whole communicator build. The remaining
// errors are returned by runtime operations. None of them are recoverable
// locally.

// errInvalidConnection reports a connection that violates a hard
// invariant: non-positive delay, or a source gid outside [0, numCells).
func errInvalidConnection(c Connection, reason string) error {
	return errors.Errorf(
		"invalid connection %v -> %v (domain cell %d): %s",
		c.Source, c.Dest, c.IndexOnDomain, reason,
	)
}

// errInconsistentDomain reports a DomainDecomposition.GidDomain result
// outside [0, numDomains).
func errInconsistentDomain(gid GlobalCellId, domain, numDomains int) error {
	return errors.Errorf(
		"gid %d: GidDomain returned %d, want a value in [0, %d)",
		gid, domain, numDomains,
	)
}

// errQueueSizeMismatch reports that MakeEventQueues was called with the
// wrong number of queues.
func errQueueSizeMismatch(got, want int) error {
	return errors.Errorf("queues has length %d, want %d (num_local_cells)", got, want)
}

// errInvalidGroupIndex reports an out-of-range GroupQueueRange argument.
func errInvalidGroupIndex(i, numGroups int) error {
	return errors.Errorf("group index %d out of range [0, %d)", i, numGroups)
}

// wrapTransport attaches context to a failure reported by a
// DistributedContext. The error is propagated, not retried; the epoch is
// undefined after a failed collective.
func wrapTransport(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, op)
}
