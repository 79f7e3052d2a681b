package arbor

// GlobalCellId identifies a cell uniquely across the whole simulation,
// independent of which domain owns it.
type GlobalCellId uint32

// LocalIndex distinguishes multiple spike-producing sites on the same
// cell (a cell with multi-site membership may fire from more than one
// site in a single epoch).
type LocalIndex uint32

// LocalCellIndex is the position of a cell inside the flat, per-domain
// list of locally-owned cells. It is what selects which per-cell event
// queue a connection feeds.
type LocalCellIndex int

// LocalTarget identifies a target (e.g. a synapse) inside a locally-owned
// cell. The core treats it as an opaque value to carry through to the
// generated Event.
type LocalTarget uint32

// Time is simulated time, in whatever units the caller's cell models use.
type Time float64

// Weight is a connection's synaptic weight.
type Weight float64

// CellMember is a globally unique identifier for a spike-producing site:
// a specific index on a specific global cell.
type CellMember struct {
	Gid   GlobalCellId
	Index LocalIndex
}

// Less orders CellMembers lexicographically on (Gid, Index).
func (m CellMember) Less(o CellMember) bool {
	if m.Gid != o.Gid {
		return m.Gid < o.Gid
	}
	return m.Index < o.Index
}

// Equal reports whether two CellMembers name the same site.
func (m CellMember) Equal(o CellMember) bool {
	return m.Gid == o.Gid && m.Index == o.Index
}

// Spike announces that the CellMember named by Source fired at Time.
type Spike struct {
	Source CellMember
	Time   Time
}

// Connection is a directed, delayed link from a (possibly remote)
// CellMember to a target inside a locally-owned cell.
type Connection struct {
	// Source identifies the presynaptic site. It may name a cell owned by
	// any domain, including the one that owns Dest.
	Source CellMember

	// Dest identifies the postsynaptic target inside the owning cell.
	Dest LocalTarget

	// Weight is the synaptic weight carried by events generated from this
	// connection.
	Weight Weight

	// Delay is added to a matching spike's time to produce the delivery
	// time of the generated event. Must be strictly positive.
	Delay Time

	// IndexOnDomain is the position of the postsynaptic cell in the flat
	// per-domain cell list; it selects the event queue that receives
	// events generated from this connection.
	IndexOnDomain LocalCellIndex
}

// Less orders Connections lexicographically on (Source, Dest), with
// Source dominant. This is the ordering the event-queue builder's
// merge-join relies on.
func (c Connection) Less(o Connection) bool {
	if !c.Source.Equal(o.Source) {
		return c.Source.Less(o.Source)
	}
	return c.Dest < o.Dest
}

// Event is a time-stamped, weighted delivery to a local target, generated
// by matching a Connection against a Spike that shares its Source.
type Event struct {
	Target LocalTarget
	Weight Weight
	Time   Time
}

// Queue is a per-local-cell buffer of pending events. MakeEventQueues only
// ever appends to a Queue; it is the caller's job to sort, deduplicate, or
// clear queues between epochs.
type Queue []Event

// makeEvent builds the delivery event generated by a connection matching
// a spike that shares its source.
func makeEvent(c Connection, s Spike) Event {
	return Event{Target: c.Dest, Weight: c.Weight, Time: s.Time + c.Delay}
}
