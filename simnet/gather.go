package simnet

import (
	"sync"

	"github.com/electronicvisions/arbor"
)

// SpikeContext implements arbor.DistributedContext for a group of
// domains living in one process. Every collective is an all-to-all
// exchange: each domain posts its contribution to every peer's mailbox
// slot, then collects one contribution from each peer, so all domains
// return with the same gathered result.
//
// A SpikeContext belongs to one domain's goroutine; Spawn hands each
// domain its own.
type SpikeContext struct {
	id   int
	size int

	// mail[dst][src] carries dst's incoming payload from src. Each slot
	// is buffered so a domain can post all of its sends before it starts
	// collecting; a second send into the same slot blocks until the
	// receiver drains the first, which keeps domains at most one
	// collective apart.
	mail [][]chan interface{}
}

// NewGroup creates one SpikeContext per domain for an in-process job of
// numDomains domains. The contexts share their mailboxes, so every one
// of them must be driven for a collective to complete.
func NewGroup(numDomains int) []*SpikeContext {
	mail := make([][]chan interface{}, numDomains)
	for dst := range mail {
		mail[dst] = make([]chan interface{}, numDomains)
		for src := range mail[dst] {
			mail[dst][src] = make(chan interface{}, 1)
		}
	}
	ctxs := make([]*SpikeContext, numDomains)
	for id := range ctxs {
		ctxs[id] = &SpikeContext{id: id, size: numDomains, mail: mail}
	}
	return ctxs
}

// Spawn runs f once per domain, each in its own goroutine with its own
// SpikeContext, and returns once every domain's f has returned.
func Spawn(numDomains int, f func(ctx *SpikeContext)) {
	var wg sync.WaitGroup
	for _, ctx := range NewGroup(numDomains) {
		wg.Add(1)
		go func(c *SpikeContext) {
			defer wg.Done()
			f(c)
		}(ctx)
	}
	wg.Wait()
}

// Size returns the number of domains in the job.
func (c *SpikeContext) Size() int {
	return c.size
}

// ID returns this domain's index, in [0, Size()).
func (c *SpikeContext) ID() int {
	return c.id
}

// GatherSpikes all-gathers local across every domain. Slice d of the
// result is exactly what domain d passed in.
func (c *SpikeContext) GatherSpikes(local []arbor.Spike) (arbor.GatheredVector[arbor.Spike], error) {
	raw := c.allGather(local)

	partition := make([]int, len(raw)+1)
	total := 0
	for i, r := range raw {
		total += len(r.([]arbor.Spike))
		partition[i+1] = total
	}
	values := make([]arbor.Spike, 0, total)
	for _, r := range raw {
		values = append(values, r.([]arbor.Spike)...)
	}
	return arbor.GatheredVector[arbor.Spike]{Values: values, Partition: partition}, nil
}

// Min returns the minimum of val across every domain.
func (c *SpikeContext) Min(val float64) (float64, error) {
	raw := c.allGather(val)
	min := raw[0].(float64)
	for _, r := range raw[1:] {
		if v := r.(float64); v < min {
			min = v
		}
	}
	return min, nil
}

// allGather posts payload to every other domain and returns every
// domain's contribution, this domain's own included, indexed by domain.
func (c *SpikeContext) allGather(payload interface{}) []interface{} {
	gathered := make([]interface{}, c.size)
	gathered[c.id] = payload
	for dst := 0; dst < c.size; dst++ {
		if dst != c.id {
			c.mail[dst][c.id] <- payload
		}
	}
	for src := 0; src < c.size; src++ {
		if src != c.id {
			gathered[src] = <-c.mail[c.id][src]
		}
	}
	return gathered
}
