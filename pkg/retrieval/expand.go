package retrieval

import (
	"sort"

	"github.com/lexigraph/lexigraph/pkg/store"
	"github.com/lexigraph/lexigraph/pkg/types"
)

// DiscountPolicy controls how the neighbor discount scales with hop distance.
type DiscountPolicy string

const (
	// DiscountCompound multiplies the discount per hop: a neighbor at hop h
	// scores seed * discount^h, so farther nodes are worth less.
	DiscountCompound DiscountPolicy = "compound"

	// DiscountOnce applies the discount a single time regardless of hop
	// distance; every reachable neighbor scores seed * discount.
	DiscountOnce DiscountPolicy = "once"
)

// Valid reports whether the policy names a known discount rule.
func (p DiscountPolicy) Valid() bool {
	return p == DiscountCompound || p == DiscountOnce
}

// hopDiscount returns the multiplier applied to a seed score for a neighbor
// at the given hop distance.
func hopDiscount(policy DiscountPolicy, discount float64, hops int) float64 {
	if hops < 1 {
		hops = 1
	}
	if policy == DiscountOnce {
		return discount
	}
	mult := 1.0
	for i := 0; i < hops; i++ {
		mult *= discount
	}
	return mult
}

// NeighborCandidates turns raw expansion hits into scored neighbor
// candidates. Each seed keeps at most limit hits, nearest first; the cap is
// spent on raw hits, so a hit later dropped as a duplicate still consumed
// budget. A chunk reached from several seeds keeps its single best score,
// and chunks that are themselves seeds are dropped so the seed copy wins.
func NeighborCandidates(hits []store.NeighborHit, seeds []types.Candidate, limit int, discount float64, policy DiscountPolicy) []types.Candidate {
	if len(hits) == 0 || limit <= 0 {
		return nil
	}

	seedScore := make(map[string]float64, len(seeds))
	for i := range seeds {
		seedScore[seeds[i].ChunkID] = seeds[i].FinalScore()
	}

	perSeed := make(map[string][]store.NeighborHit, len(seeds))
	for _, hit := range hits {
		if _, known := seedScore[hit.FromID]; !known {
			continue
		}
		perSeed[hit.FromID] = append(perSeed[hit.FromID], hit)
	}

	type heldHit struct {
		cand   types.Candidate
		fromID string
	}
	best := make(map[string]heldHit)

	for _, seed := range seeds {
		group := perSeed[seed.ChunkID]
		sort.Slice(group, func(i, j int) bool {
			if group[i].Hops != group[j].Hops {
				return group[i].Hops < group[j].Hops
			}
			if group[i].Record.ID != group[j].Record.ID {
				return group[i].Record.ID < group[j].Record.ID
			}
			return group[i].Edge.RelationType < group[j].Edge.RelationType
		})
		if len(group) > limit {
			group = group[:limit]
		}

		for _, hit := range group {
			if _, isSeed := seedScore[hit.Record.ID]; isSeed {
				continue
			}
			cand := types.Candidate{
				ChunkID:      hit.Record.ID,
				Text:         hit.Record.Text,
				RelationType: hit.Edge.RelationType,
				Hops:         hit.Hops,
				Embedding:    hit.Record.Embedding,
			}
			cand.SetHybridScore(seedScore[hit.FromID] * hopDiscount(policy, discount, hit.Hops))

			prev, seen := best[cand.ChunkID]
			if !seen || neighborWins(cand, seed.ChunkID, prev.cand, prev.fromID) {
				best[cand.ChunkID] = heldHit{cand: cand, fromID: seed.ChunkID}
			}
		}
	}

	out := make([]types.Candidate, 0, len(best))
	for _, held := range best {
		out = append(out, held.cand)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := out[i].FinalScore(), out[j].FinalScore()
		if si != sj {
			return si > sj
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	return out
}

// neighborWins decides a collision between two sightings of the same chunk:
// higher score first, then the lexicographically smaller relation type, then
// the smaller seed ID.
func neighborWins(cand types.Candidate, fromID string, prev types.Candidate, prevFromID string) bool {
	cs, ps := cand.FinalScore(), prev.FinalScore()
	if cs != ps {
		return cs > ps
	}
	if cand.RelationType != prev.RelationType {
		return cand.RelationType < prev.RelationType
	}
	return fromID < prevFromID
}
