// Command benchexchange times Communicator.Exchange over a range of
// domain counts and spike loads, printing a markdown table. It takes no
// flags and reads no configuration file.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/electronicvisions/arbor"
	"github.com/electronicvisions/arbor/simnet"
	"github.com/unixpickle/essentials"
)

const epochsPerRun = 10

// run spawns one Communicator per domain and drives epochsPerRun
// exchanges of a synthetic spike load on each, returning the wall-clock
// time per epoch.
func run(numDomains, numSpikesPerDomain int) time.Duration {
	start := time.Now()
	simnet.Spawn(numDomains, func(sc *simnet.SpikeContext) {
		comm, err := arbor.NewCommunicator(
			benchRecipe{numDomains: numDomains},
			benchDecomposition{id: sc.ID(), numDomains: numDomains},
			arbor.ExecutionContext{Distributed: sc, Pool: arbor.NewWorkerPool(0)},
		)
		essentials.Must(err)

		for epoch := 0; epoch < epochsPerRun; epoch++ {
			local := make([]arbor.Spike, numSpikesPerDomain)
			for i := range local {
				local[i] = arbor.Spike{
					Source: arbor.CellMember{Gid: arbor.GlobalCellId(sc.ID())},
					Time:   arbor.Time(i),
				}
			}
			_, err = comm.Exchange(local)
			essentials.Must(err)
		}
	})
	return time.Since(start) / epochsPerRun
}

// benchRecipe is a trivial Recipe with no connections; the benchmark only
// exercises the Exchange collective, not MakeEventQueues.
type benchRecipe struct {
	numDomains int
}

func (b benchRecipe) NumCells() int { return b.numDomains }

func (b benchRecipe) ConnectionsOn(arbor.GlobalCellId) []arbor.Connection { return nil }

// benchDecomposition gives every domain a single local cell, named by its
// domain id.
type benchDecomposition struct {
	id, numDomains int
}

func (b benchDecomposition) Groups() []arbor.Group {
	return []arbor.Group{{Gids: []arbor.GlobalCellId{arbor.GlobalCellId(b.id)}}}
}

func (b benchDecomposition) NumLocalCells() int { return 1 }

func (b benchDecomposition) GidDomain(gid arbor.GlobalCellId) int { return int(gid) }

func main() {
	domainCounts := []int{2, 4, 16, 32}
	loads := []int{0, 1000, 100000}

	log.Printf("benchmarking Exchange over %d domain counts, %d epochs per run",
		len(domainCounts), epochsPerRun)

	fmt.Print("| Domains | Spikes/domain | Time/epoch |\n")
	fmt.Print("|:--|:--|:--|\n")
	for _, numDomains := range domainCounts {
		for _, load := range loads {
			elapsed := run(numDomains, load)
			fmt.Printf("| %d | %d | %s |\n", numDomains, load, elapsed)
		}
	}
}
