package arbor

// Recipe describes, per global cell id, the set of incoming connections.
// It is an external collaborator: the core never constructs one, only
// queries it.
//
// ConnectionsOn must be a pure function: side-effect-free and safe to call
// concurrently from many goroutines, since the construction pipeline
// calls it once per local cell from inside a parallel-for.
type Recipe interface {
	// NumCells returns the total number of cells in the whole simulation,
	// across all domains.
	NumCells() int

	// ConnectionsOn returns every connection terminating on gid. gid must
	// be a cell owned by the querying domain.
	ConnectionsOn(gid GlobalCellId) []Connection
}

// Group names a contiguous run of gids that share a cell group (e.g. the
// unit of integration on a domain).
type Group struct {
	Gids []GlobalCellId
}

// DomainDecomposition describes how cells are partitioned across domains.
// It, too, is an external collaborator; the core only consumes its output.
type DomainDecomposition interface {
	// Groups returns the local cell groups, in the order whose
	// concatenation fixes the local-index <-> gid mapping used throughout
	// construction.
	Groups() []Group

	// NumLocalCells returns the number of cells owned by this domain; it
	// must equal the sum of len(g.Gids) over Groups().
	NumLocalCells() int

	// GidDomain returns which domain, in [0, distributed.Size()), owns
	// gid.
	GidDomain(gid GlobalCellId) int
}

// Pool runs bounded, independent parallel-for loops over local memory. It
// is the "thread_pool" half of an ExecutionContext.
type Pool interface {
	// ParallelFor calls fn(i) for every i in [0, n), possibly from
	// multiple goroutines at once. It returns once every call has
	// returned. Iterations must be independent: ParallelFor makes no
	// ordering guarantee between them.
	ParallelFor(n int, fn func(i int))
}

// ExecutionContext bundles the two capabilities a Communicator needs from
// its environment: a distributed collective handle and a local worker
// pool.
type ExecutionContext struct {
	Distributed DistributedContext
	Pool        Pool
}
