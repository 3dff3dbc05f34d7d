package topk

import (
	"testing"

	"github.com/chrissnell/solarengine/internal/geomath"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

func scoredAt(score float64, idx int, lat, lng float64) Scored {
	return Scored{
		Candidate: solarmodel.ScoredCandidate{Candidate: solarmodel.Candidate{Loc: solarmodel.Coordinate{Lat: lat, Lng: lng}}},
		Score:     score,
		Index:     idx,
	}
}

func TestBoundedTopKeepsHighestScores(t *testing.T) {
	items := []Scored{
		scoredAt(1, 0, 0, 0),
		scoredAt(5, 1, 0, 1),
		scoredAt(3, 2, 0, 2),
		scoredAt(9, 3, 0, 3),
		scoredAt(2, 4, 0, 4),
	}
	top := BoundedTop(items, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	want := []float64{9, 5, 3}
	for i, w := range want {
		if top[i].Score != w {
			t.Fatalf("position %d: expected score %v, got %v", i, w, top[i].Score)
		}
	}
}

func TestBoundedTopTieBreaksByIndex(t *testing.T) {
	items := []Scored{
		scoredAt(5, 3, 0, 0),
		scoredAt(5, 1, 0, 1),
		scoredAt(5, 2, 0, 2),
	}
	top := BoundedTop(items, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Index != 1 || top[1].Index != 2 {
		t.Fatalf("expected lowest-index ties to win, got indices %d,%d", top[0].Index, top[1].Index)
	}
}

func TestSelectSpacedEnforcesMinimumDistance(t *testing.T) {
	ranked := []Scored{
		scoredAt(10, 0, 40.0, -97.0),
		scoredAt(9, 1, 40.0001, -97.0001), // ~15m away, too close
		scoredAt(8, 2, 40.01, -97.0),      // ~1.1km away, fine
	}
	selected := SelectSpaced(ranked, 3)
	if len(selected) != 2 {
		t.Fatalf("expected 2 spaced survivors, got %d", len(selected))
	}
	for i := 0; i < len(selected); i++ {
		for j := i + 1; j < len(selected); j++ {
			d := geomath.HaversineKm(selected[i].Candidate.Loc.Lat, selected[i].Candidate.Loc.Lng,
				selected[j].Candidate.Loc.Lat, selected[j].Candidate.Loc.Lng)
			if d < MinSpacingKm {
				t.Fatalf("selected points %d and %d are only %v km apart", i, j, d)
			}
		}
	}
}

func TestSelectSpacedStopsAtK(t *testing.T) {
	ranked := []Scored{
		scoredAt(10, 0, 0, 0),
		scoredAt(9, 1, 1, 1),
		scoredAt(8, 2, 2, 2),
	}
	selected := SelectSpaced(ranked, 1)
	if len(selected) != 1 {
		t.Fatalf("expected exactly 1 result, got %d", len(selected))
	}
	if selected[0].Index != 0 {
		t.Fatalf("expected the top-scoring candidate to be kept")
	}
}

func TestAssignRanksSequential(t *testing.T) {
	selected := []Scored{scoredAt(9, 0, 1, 1), scoredAt(8, 1, 2, 2)}
	results := AssignRanks(selected, false)
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Fatalf("expected ranks 1,2, got %d,%d", results[0].Rank, results[1].Rank)
	}
	if results[0].LandPriceUSDPerM2 != nil {
		t.Fatalf("expected nil land price when HasLandPrice is false")
	}
	if results[0].SunriseUTC == "" || results[0].SunsetUTC == "" {
		t.Fatalf("expected sunrise/sunset to be stamped on every result")
	}
}
