package planner

import (
	"container/heap"
	"context"
	"math"
)

// Path is the result of a shortest-path search.
type Path struct {
	// Reachable is false when the target cannot be reached; Stops is then empty.
	Reachable bool

	// Stops is the ordered list of stop IDs from start to target inclusive.
	Stops []int64

	// Edges are the edges taken, len(Edges) == len(Stops)-1.
	Edges []Edge

	TotalMinutes float64
}

// Boardable reports whether the path involves an actual bus ride.
// A single-stop path (start == target) is not boardable.
func (p Path) Boardable() bool {
	return p.Reachable && len(p.Stops) >= 2
}

// ShortestPath runs Dijkstra from start to target.
//
// An unreachable target, or a start that is not part of any segment, yields an
// unreachable Path and a nil error. Malformed edges are never relaxed; if the
// target is unreachable and the search met one, the first such edge is returned
// as a *SegmentError. A cancelled context is returned as is.
func (g *Graph) ShortestPath(ctx context.Context, start, target int64) (Path, error) {
	if !g.HasNode(start) || !g.HasNode(target) {
		return Path{}, nil
	}

	dist := make(map[int64]float64, len(g.nodes))
	for id := range g.nodes {
		dist[id] = math.Inf(1)
	}
	dist[start] = 0

	prev := make(map[int64]Edge)
	prevStop := make(map[int64]int64)
	visited := make(map[int64]bool, len(g.nodes))
	var malformed *SegmentError

	pq := &stopQueue{}
	heap.Push(pq, &queueItem{stopID: start, minutes: 0})

	for pq.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Path{}, err
		}

		current := heap.Pop(pq).(*queueItem)
		if visited[current.stopID] {
			continue
		}
		visited[current.stopID] = true

		if current.stopID == target {
			break
		}

		for _, edge := range g.adj[current.stopID] {
			if visited[edge.To] {
				continue
			}
			if edge.malformed != "" {
				if malformed == nil {
					malformed = &SegmentError{
						SegmentID:  edge.SegmentID,
						RouteID:    edge.RouteID,
						FromStopID: current.stopID,
						ToStopID:   edge.To,
						Reason:     edge.malformed,
					}
				}
				continue
			}

			candidate := current.minutes + edge.Minutes
			if candidate < dist[edge.To] {
				dist[edge.To] = candidate
				prev[edge.To] = edge
				prevStop[edge.To] = current.stopID
				heap.Push(pq, &queueItem{stopID: edge.To, minutes: candidate})
			}
		}
	}

	if math.IsInf(dist[target], 1) {
		if malformed != nil {
			return Path{}, malformed
		}
		return Path{}, nil
	}

	return reconstruct(start, target, dist[target], prev, prevStop), nil
}

func reconstruct(start, target int64, total float64, prev map[int64]Edge, prevStop map[int64]int64) Path {
	var stops []int64
	var edges []Edge

	for current := target; current != start; current = prevStop[current] {
		stops = append(stops, current)
		edges = append(edges, prev[current])
	}
	stops = append(stops, start)

	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	return Path{
		Reachable:    true,
		Stops:        stops,
		Edges:        edges,
		TotalMinutes: total,
	}
}

type queueItem struct {
	stopID  int64
	minutes float64
}

// stopQueue is a min-heap on tentative minutes; equal distances pop the lower stop ID first.
type stopQueue []*queueItem

func (q stopQueue) Len() int { return len(q) }

func (q stopQueue) Less(i, j int) bool {
	if q[i].minutes != q[j].minutes {
		return q[i].minutes < q[j].minutes
	}
	return q[i].stopID < q[j].stopID
}

func (q stopQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *stopQueue) Push(x interface{}) {
	*q = append(*q, x.(*queueItem))
}

func (q *stopQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}
