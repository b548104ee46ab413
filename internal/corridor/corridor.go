// Package corridor derives the bounded output set a completed run hands to
// certification: the m lowest-energy cells, ranked ascending by energy with
// ties broken by original input order.
package corridor

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/talgya/cellview/internal/engine"
)

// Entry is one selected candidate.
type Entry struct {
	Rank          int
	Value         *big.Int
	Type          string
	Energy        *big.Float
	Origin        int
	FinalPosition int

	// EpisodeShare is the fraction of backtracking episodes whose step span
	// included a swap at this cell's final position. Zero when the run had
	// no episodes.
	EpisodeShare float64
}

// Select ranks the final lattice and returns at most m entries. It never
// invents values: every entry is a cell from the run's lattice.
func Select(rep *engine.Report, m int) ([]Entry, error) {
	if m <= 0 {
		return nil, fmt.Errorf("corridor: output size must be positive, got %d", m)
	}

	ranked := make([]engine.Snapshot, len(rep.Final))
	copy(ranked, rep.Final)
	sort.SliceStable(ranked, func(i, j int) bool {
		if c := ranked[i].Energy.Cmp(ranked[j].Energy); c != 0 {
			return c < 0
		}
		return ranked[i].Origin < ranked[j].Origin
	})
	if m > len(ranked) {
		m = len(ranked)
	}

	spans := episodeSwapSets(rep)
	out := make([]Entry, m)
	for i, snap := range ranked[:m] {
		share := 0.0
		if len(spans) > 0 {
			hit := 0
			for _, span := range spans {
				if span[snap.Position] {
					hit++
				}
			}
			share = float64(hit) / float64(len(spans))
		}
		out[i] = Entry{
			Rank:          i + 1,
			Value:         snap.Value,
			Type:          snap.Type,
			Energy:        snap.Energy,
			Origin:        snap.Origin,
			FinalPosition: snap.Position,
			EpisodeShare:  share,
		}
	}
	return out, nil
}

// episodeSwapSets maps each backtracking episode to the set of positions
// swapped during its step span.
func episodeSwapSets(rep *engine.Report) []map[int]bool {
	if len(rep.Episodes) == 0 {
		return nil
	}
	sets := make([]map[int]bool, len(rep.Episodes))
	for i, ep := range rep.Episodes {
		set := make(map[int]bool)
		for _, h := range rep.History {
			if h.Step < ep.Start || h.Step > ep.End {
				continue
			}
			for _, pos := range h.SwappedPositions {
				set[pos] = true
			}
		}
		sets[i] = set
	}
	return sets
}
