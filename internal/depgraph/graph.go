package depgraph

import "shipboard/internal/model"

// Adjacency maps a release id to the ids of the releases it depends on
// (dependent -> blocking direction).
type Adjacency map[int][]int

// BuildAdjacency builds the depends-on adjacency from a set of edges. All
// edge types are included: a cycle through informational edges is just as
// confusing to operators as one through blocks edges.
func BuildAdjacency(edges []model.ReleaseDependency) Adjacency {
	adj := make(Adjacency, len(edges))
	for _, e := range edges {
		adj[e.DependentReleaseID] = append(adj[e.DependentReleaseID], e.BlockingReleaseID)
	}
	return adj
}

// WouldCreateCycle reports whether adding the edge dependent -> blocking
// would close a cycle: true iff dependent is already reachable from blocking
// along depends-on edges. The visited set guarantees termination even on an
// already-malformed graph; cost is O(V+E) of the reachable subgraph.
func WouldCreateCycle(adj Adjacency, dependentID, blockingID int) bool {
	if dependentID == blockingID {
		return true
	}

	visited := make(map[int]bool)
	stack := []int{blockingID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == dependentID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		stack = append(stack, adj[current]...)
	}

	return false
}
