package arbor

import (
	"math"
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/unixpickle/essentials"
)

// Communicator builds the connection table once from a Recipe and a
// DomainDecomposition and then drives the per-epoch spike exchange: sort
// and all-gather local spikes, then merge-join the gathered spikes
// against the connection table to produce per-cell delivery events.
//
// The connection table, the group partition, and every count derived from
// them are immutable after construction; NumSpikes and the per-epoch
// queues passed to MakeEventQueues are the only mutable state.
type Communicator struct {
	instanceID uuid.UUID

	numDomains     int
	numLocalGroups int
	numLocalCells  int

	connections    []Connection
	connectionPart []int
	indexPart      []queueRange

	distributed DistributedContext
	pool        Pool

	numSpikes uint64
}

type queueRange struct {
	lo, hi int
}

// stagingCell is the per-local-cell record produced by the parallel
// connection query (construction step 2) and consumed by the
// single-threaded counting pass (step 3).
type stagingCell struct {
	gid           GlobalCellId
	indexOnDomain LocalCellIndex
	conns         []Connection
}

// NewCommunicator builds a Communicator. It fails only with a
// configuration error (a connection with a non-positive delay or an
// out-of-range source gid, or a DomainDecomposition that reports a
// domain outside [0, numDomains)); such an error is fatal and indicates
// corrupt input data rather than something the core can recover from.
func NewCommunicator(rec Recipe, dom DomainDecomposition, ctx ExecutionContext) (*Communicator, error) {
	pool := ctx.Pool
	if pool == nil {
		pool = SequentialPool{}
	}

	c := &Communicator{
		instanceID:     uuid.New(),
		numDomains:     ctx.Distributed.Size(),
		numLocalGroups: len(dom.Groups()),
		numLocalCells:  dom.NumLocalCells(),
		distributed:    ctx.Distributed,
		pool:           pool,
	}

	// Step 1: flatten local gids. This fixes the local-index <-> gid
	// mapping used by every later step.
	groups := dom.Groups()
	gids := make([]GlobalCellId, 0, c.numLocalCells)
	for _, g := range groups {
		gids = append(gids, g.Gids...)
	}

	// Step 2: parallel per-cell connection query. Recipe.ConnectionsOn is
	// contractually pure and reentrant, so this is safe to run unordered
	// across the pool.
	staging := make([]stagingCell, len(gids))
	pool.ParallelFor(len(gids), func(i int) {
		gid := gids[i]
		staging[i] = stagingCell{
			gid:           gid,
			indexOnDomain: LocalCellIndex(i),
			conns:         rec.ConnectionsOn(gid),
		}
	})

	// Step 3: single-threaded count by source domain, validating every
	// connection and every domain assignment as we go.
	numCells := rec.NumCells()
	srcCounts := make([]int, c.numDomains)
	nCons := 0
	for _, cell := range staging {
		nCons += len(cell.conns)
	}
	srcDomains := make([]int, 0, nCons)
	for _, cell := range staging {
		for _, conn := range cell.conns {
			conn.IndexOnDomain = cell.indexOnDomain
			if conn.Delay <= 0 {
				return nil, errInvalidConnection(conn, "delay must be > 0")
			}
			if int(conn.Source.Gid) >= numCells {
				return nil, errInvalidConnection(conn, "source gid is out of range")
			}
			d := dom.GidDomain(conn.Source.Gid)
			if d < 0 || d >= c.numDomains {
				return nil, errInconsistentDomain(conn.Source.Gid, d, c.numDomains)
			}
			srcDomains = append(srcDomains, d)
			srcCounts[d]++
		}
	}

	// Step 4: prefix-sum index over source domain.
	c.connectionPart = make([]int, c.numDomains+1)
	for d := 0; d < c.numDomains; d++ {
		c.connectionPart[d+1] = c.connectionPart[d] + srcCounts[d]
	}

	// Step 5: place connections into their source-domain slice, grouped
	// but not yet sorted within the slice.
	c.connections = make([]Connection, nCons)
	offsets := append([]int(nil), c.connectionPart...)
	pos := 0
	for _, cell := range staging {
		for _, conn := range cell.conns {
			d := srcDomains[pos]
			idx := offsets[d]
			offsets[d]++
			c.connections[idx] = Connection{
				Source:        conn.Source,
				Dest:          conn.Dest,
				Weight:        conn.Weight,
				Delay:         conn.Delay,
				IndexOnDomain: cell.indexOnDomain,
			}
			pos++
		}
	}

	// Step 6: sort each domain's slice independently and in parallel.
	pool.ParallelFor(c.numDomains, func(d int) {
		slice := c.connections[c.connectionPart[d]:c.connectionPart[d+1]]
		essentials.VoodooSort(slice, func(i, j int) bool {
			return slice[i].Less(slice[j])
		})
	})

	// Step 7: group partition.
	c.indexPart = make([]queueRange, len(groups))
	lo := 0
	for i, g := range groups {
		hi := lo + len(g.Gids)
		c.indexPart[i] = queueRange{lo: lo, hi: hi}
		lo = hi
	}

	return c, nil
}

// GroupQueueRange returns the [lo, hi) range of the per-local-cell event
// queue array that belongs to local cell group i.
func (c *Communicator) GroupQueueRange(i int) (lo, hi int, err error) {
	if i < 0 || i >= len(c.indexPart) {
		return 0, 0, errInvalidGroupIndex(i, len(c.indexPart))
	}
	r := c.indexPart[i]
	return r.lo, r.hi, nil
}

// MinDelay returns the minimum delay across the entire global connection
// table: a local minimum over this domain's connections, reduced with the
// distributed context's Min. It is well-defined even when the local table
// is empty, since the local contribution is +Inf in that case.
func (c *Communicator) MinDelay() (Time, error) {
	localMin := math.Inf(1)
	for _, conn := range c.connections {
		if float64(conn.Delay) < localMin {
			localMin = float64(conn.Delay)
		}
	}
	global, err := c.distributed.Min(localMin)
	if err != nil {
		return 0, wrapTransport(err, "min_delay")
	}
	return Time(global), nil
}

// Exchange sorts local in place by source, all-gathers it across domains,
// and accumulates the gathered spike count into NumSpikes. The caller's
// slice is mutated and ownership passes to the gather call; the returned
// GatheredVector is the precondition MakeEventQueues relies on.
func (c *Communicator) Exchange(local []Spike) (GatheredVector[Spike], error) {
	essentials.VoodooSort(local, func(i, j int) bool {
		return local[i].Source.Less(local[j].Source)
	})

	global, err := c.distributed.GatherSpikes(local)
	if err != nil {
		return GatheredVector[Spike]{}, wrapTransport(err, "gather_spikes")
	}

	atomic.AddUint64(&c.numSpikes, uint64(len(global.Values)))
	return global, nil
}

// MakeEventQueues appends, to each local cell's queue, one event for
// every (connection, spike) pair whose sources match. It never clears,
// sorts, or deduplicates a queue.
func (c *Communicator) MakeEventQueues(global GatheredVector[Spike], queues []Queue) error {
	if len(queues) != c.numLocalCells {
		return errQueueSizeMismatch(len(queues), c.numLocalCells)
	}

	for d := 0; d < c.numDomains; d++ {
		cons := c.connections[c.connectionPart[d]:c.connectionPart[d+1]]
		var spks []Spike
		if d < global.NumContributors() {
			spks = global.Slice(d)
		}
		mergeJoinDomain(cons, spks, queues)
	}
	return nil
}

// mergeJoinDomain performs the two-pointer merge-join for a single source
// domain's connection slice against its matching spike slice, choosing
// whichever side is smaller as the outer loop. Each pointer advances to
// the start (not the end) of a matched equal-range, since a fan-out or
// fan-in source shares its equal-range with the next connection or
// spike.
func mergeJoinDomain(cons []Connection, spks []Spike, queues []Queue) {
	if len(cons) < len(spks) {
		sp := 0
		for cn := 0; cn < len(cons) && sp < len(spks); cn++ {
			src := cons[cn].Source
			lo := sp + lowerBoundSpikes(spks[sp:], src)
			hi := sp + upperBoundSpikes(spks[sp:], src)
			for _, s := range spks[lo:hi] {
				q := cons[cn].IndexOnDomain
				queues[q] = append(queues[q], makeEvent(cons[cn], s))
			}
			sp = lo
		}
	} else {
		cn := 0
		for sp := 0; cn < len(cons) && sp < len(spks); sp++ {
			src := spks[sp].Source
			lo := cn + lowerBoundConns(cons[cn:], src)
			hi := cn + upperBoundConns(cons[cn:], src)
			for _, c := range cons[lo:hi] {
				q := c.IndexOnDomain
				queues[q] = append(queues[q], makeEvent(c, spks[sp]))
			}
			cn = lo
		}
	}
}

func lowerBoundSpikes(spks []Spike, src CellMember) int {
	return sort.Search(len(spks), func(i int) bool { return !spks[i].Source.Less(src) })
}

func upperBoundSpikes(spks []Spike, src CellMember) int {
	return sort.Search(len(spks), func(i int) bool { return src.Less(spks[i].Source) })
}

func lowerBoundConns(cons []Connection, src CellMember) int {
	return sort.Search(len(cons), func(i int) bool { return !cons[i].Source.Less(src) })
}

func upperBoundConns(cons []Connection, src CellMember) int {
	return sort.Search(len(cons), func(i int) bool { return src.Less(cons[i].Source) })
}

// NumSpikes returns the total number of global spikes observed across
// every Exchange call since the last Reset.
func (c *Communicator) NumSpikes() uint64 {
	return atomic.LoadUint64(&c.numSpikes)
}

// Reset zeros the spike counter. It does not rebuild the connection
// table.
func (c *Communicator) Reset() {
	atomic.StoreUint64(&c.numSpikes, 0)
}

// InstanceID distinguishes this Communicator across process restarts and
// domains, for correlating diagnostics.
func (c *Communicator) InstanceID() uuid.UUID {
	return c.instanceID
}

// NumLocalCells returns the number of cells owned by this domain.
func (c *Communicator) NumLocalCells() int {
	return c.numLocalCells
}

// Connections returns the full, immutable connection table, for testing
// and diagnostics. The returned slice is borrowed; callers must not
// mutate it.
func (c *Communicator) Connections() []Connection {
	return c.connections
}

// ConnectionPart returns the prefix-sum partition index delimiting each
// source domain's slice of Connections.
func (c *Communicator) ConnectionPart() []int {
	return c.connectionPart
}

// Fingerprint computes a stable digest of the current connection table,
// for checking that construction was deterministic across domains that
// were handed equivalent inputs.
func (c *Communicator) Fingerprint() Fingerprint {
	return FingerprintConnections(c.connections, c.connectionPart)
}
