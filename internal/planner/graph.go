package planner

import (
	"math"
	"sort"

	"github.com/Isira-Kodikara/Kango-bus-app-sub000/internal/transit"
)

// Edge is a traffic-adjusted directed edge of the stop graph.
type Edge struct {
	To        int64
	Minutes   float64
	SegmentID int64
	RouteID   int64

	// malformed holds the reason the segment cannot be traversed, if any.
	malformed string
}

// Graph is the per-request adjacency structure keyed by from-stop.
// Parallel edges between the same ordered pair are all retained.
type Graph struct {
	adj        map[int64][]Edge
	nodes      map[int64]struct{}
	multiplier float64
	malformed  int
}

// BuildGraph builds the stop graph for the given traffic multiplier.
//
// Segments whose travel time is not finite and non-negative are kept as
// malformed edges: only searches whose target they cut off fail.
func BuildGraph(segments []transit.Segment, multiplier float64) *Graph {
	g := &Graph{
		adj:        make(map[int64][]Edge),
		nodes:      make(map[int64]struct{}),
		multiplier: multiplier,
	}

	for _, seg := range segments {
		g.nodes[seg.FromStopID] = struct{}{}
		g.nodes[seg.ToStopID] = struct{}{}

		minutes, reason := traversalMinutes(seg, multiplier)
		if reason != "" {
			g.malformed++
		}

		g.adj[seg.FromStopID] = append(g.adj[seg.FromStopID], Edge{
			To:        seg.ToStopID,
			Minutes:   minutes,
			SegmentID: seg.ID,
			RouteID:   seg.RouteID,
			malformed: reason,
		})
	}

	// Stable edge order keeps relaxation, and therefore tie-breaking, deterministic
	// regardless of the order the store returned segments in.
	for from, edges := range g.adj {
		sort.SliceStable(edges, func(i, j int) bool {
			if edges[i].To != edges[j].To {
				return edges[i].To < edges[j].To
			}
			return edges[i].SegmentID < edges[j].SegmentID
		})
		g.adj[from] = edges
	}

	return g
}

// traversalMinutes returns the traffic-adjusted time of a segment, or a reason
// it is malformed.
func traversalMinutes(seg transit.Segment, multiplier float64) (float64, string) {
	if seg.DefaultSpeedKmh <= 0 || math.IsNaN(seg.DefaultSpeedKmh) {
		return 0, "non-positive default speed"
	}
	if seg.DistanceKm < 0 || math.IsNaN(seg.DistanceKm) {
		return 0, "negative distance"
	}

	minutes := seg.DistanceKm / seg.DefaultSpeedKmh * 60 * multiplier
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes < 0 {
		return 0, "travel time is not a finite non-negative number"
	}
	return minutes, ""
}

// SegmentMinutes returns the traffic-adjusted travel time of a single segment.
func SegmentMinutes(seg transit.Segment, multiplier float64) (float64, error) {
	minutes, reason := traversalMinutes(seg, multiplier)
	if reason != "" {
		return 0, &SegmentError{
			SegmentID:  seg.ID,
			RouteID:    seg.RouteID,
			FromStopID: seg.FromStopID,
			ToStopID:   seg.ToStopID,
			Reason:     reason,
		}
	}
	return minutes, nil
}

// HasNode reports whether the stop is the source or destination of any segment.
func (g *Graph) HasNode(stopID int64) bool {
	_, ok := g.nodes[stopID]
	return ok
}

// Edges returns the outgoing edges of a stop.
func (g *Graph) Edges(stopID int64) []Edge {
	return g.adj[stopID]
}

// NodeCount returns the number of distinct stops in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// MalformedCount returns the number of segments that cannot be traversed.
func (g *Graph) MalformedCount() int {
	return g.malformed
}

// Multiplier returns the traffic multiplier the edge weights were built with.
func (g *Graph) Multiplier() float64 {
	return g.multiplier
}
