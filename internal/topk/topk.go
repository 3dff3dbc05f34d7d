// Package topk selects the final K ranked candidates per §4.10: a
// bounded max-heap keeps the top-scoring pool, then a greedy
// minimum-spacing pass thins it so the returned set is not a cluster
// of near-duplicate points around a single hotspot.
package topk

import (
	"container/heap"
	"sort"
	"time"

	"github.com/chrissnell/solarengine/internal/almanac"
	"github.com/chrissnell/solarengine/internal/geomath"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// Scored pairs a candidate's location with the score it was ranked
// by (RPS or energy-per-dollar, depending on the request).
type Scored struct {
	Candidate solarmodel.ScoredCandidate
	Score     float64
	Index     int // original candidate order, for deterministic tie-breaking
}

// scoredHeap is a min-heap on Score so the smallest-scoring element
// sits at the root and is the cheap one to evict when the pool grows
// past its bound.
type scoredHeap []Scored

func (h scoredHeap) Len() int { return len(h) }
func (h scoredHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	// Deterministic tie-break: higher original index sorts "smaller",
	// so among equal scores the later candidate is evicted first and
	// ties resolve by candidate order, never by heap iteration order.
	return h[i].Index > h[j].Index
}
func (h scoredHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *scoredHeap) Push(x any)   { *h = append(*h, x.(Scored)) }
func (h *scoredHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BoundedTop retains the pool highest-scoring entries out of items,
// using a bounded min-heap (lowest retained score at the root) so
// memory stays O(pool) regardless of the candidate count. The result
// is sorted score-descending, ties by ascending index.
func BoundedTop(items []Scored, pool int) []Scored {
	if pool <= 0 {
		return nil
	}
	h := &scoredHeap{}
	heap.Init(h)
	for _, it := range items {
		if h.Len() < pool {
			heap.Push(h, it)
			continue
		}
		if it.Score > (*h)[0].Score || (it.Score == (*h)[0].Score && it.Index < (*h)[0].Index) {
			heap.Pop(h)
			heap.Push(h, it)
		}
	}

	out := make([]Scored, h.Len())
	copy(out, *h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// MinSpacingKm is the greedy spacing pass's minimum separation
// between any two selected points, per §4.10 and property 6.
const MinSpacingKm = 0.5

// SelectSpaced walks ranked (already score-descending, tie-broken by
// index) and greedily accepts up to k points such that no accepted
// point is within MinSpacingKm of a previously accepted one. Ranked
// must already be sorted; SelectSpaced does not re-sort.
func SelectSpaced(ranked []Scored, k int) []Scored {
	if k <= 0 {
		return nil
	}
	selected := make([]Scored, 0, k)
	for _, cand := range ranked {
		if len(selected) == k {
			break
		}
		tooClose := false
		for _, s := range selected {
			d := geomath.HaversineKm(cand.Candidate.Loc.Lat, cand.Candidate.Loc.Lng, s.Candidate.Loc.Lat, s.Candidate.Loc.Lng)
			if d < MinSpacingKm {
				tooClose = true
				break
			}
		}
		if !tooClose {
			selected = append(selected, cand)
		}
	}
	return selected
}

// AssignRanks sets Rank = 1..len(selected) on a freshly built Result
// slice, preserving the order SelectSpaced produced (score-descending
// among spaced survivors). Each result is also stamped with today's
// sunrise/sunset in UTC clock time: a reviewer-facing supplemental
// fact about the site, computed independently of the POA chain and
// playing no part in ranking.
func AssignRanks(selected []Scored, rankByCost bool) []solarmodel.Result {
	dayOfYear := time.Now().UTC().YearDay()
	results := make([]solarmodel.Result, len(selected))
	for i, s := range selected {
		c := s.Candidate
		r := solarmodel.Result{
			Rank:      i + 1,
			Lat:       c.Loc.Lat,
			Lng:       c.Loc.Lng,
			Score:     s.Score,
			KwhPerDay: c.KwhPerDay,
		}
		if c.HasLandPrice {
			price := c.LandPriceUSDPerM2
			r.LandPriceUSDPerM2 = &price
			ppc := c.PowerPerCost
			r.PowerPerCost = &ppc
		}

		sun := almanac.Compute(dayOfYear, c.Loc.Lat, c.Loc.Lng)
		r.SunriseUTC = almanac.FormatLocal(sun.SunriseUTCMinutes, time.UTC)
		r.SunsetUTC = almanac.FormatLocal(sun.SunsetUTCMinutes, time.UTC)

		results[i] = r
	}
	return results
}
