package graph

// validateAcyclic runs Kahn's algorithm over the task dependency edges.
// On cycle detection it falls back to DFS to reconstruct and report the
// cycle path. nodeIDs defines the deterministic visit order; edges maps a
// node to the nodes it depends on.
func validateAcyclic(nodeIDs []string, edges map[string][]string) []string {
	if len(nodeIDs) == 0 {
		return nil
	}

	nodeSet := make(map[string]bool, len(nodeIDs))
	for _, n := range nodeIDs {
		nodeSet[n] = true
	}

	// Build in-degree map and forward adjacency (dependency -> dependent).
	inDegree := make(map[string]int, len(nodeIDs))
	forward := make(map[string][]string)
	for _, n := range nodeIDs {
		inDegree[n] = 0
	}
	for node, deps := range edges {
		for _, dep := range deps {
			if !nodeSet[dep] {
				continue // unknown refs are caught by other validation
			}
			inDegree[node]++
			forward[dep] = append(forward[dep], node)
		}
	}

	var queue []string
	for _, n := range nodeIDs {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		visited++

		for _, dependent := range forward[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if visited == len(nodeIDs) {
		return nil
	}
	return findCyclePath(nodeIDs, edges, inDegree)
}

// findCyclePath finds a cycle path among nodes with non-zero in-degree.
func findCyclePath(nodeIDs []string, edges map[string][]string, inDegree map[string]int) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // in current path
		black = 2 // finished
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var cyclePath []string

	var dfs func(node string) bool
	dfs = func(node string) bool {
		color[node] = gray
		for _, dep := range edges[node] {
			if color[dep] == gray {
				// Found cycle: reconstruct path back to the entry node.
				cyclePath = []string{dep}
				current := node
				for current != dep {
					cyclePath = append(cyclePath, current)
					current = parent[current]
				}
				cyclePath = append(cyclePath, dep)
				// Reverse to get forward order.
				for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
					cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
				}
				return true
			}
			if color[dep] == white {
				parent[dep] = node
				if dfs(dep) {
					return true
				}
			}
		}
		color[node] = black
		return false
	}

	for _, n := range nodeIDs {
		if inDegree[n] > 0 && color[n] == white {
			if dfs(n) {
				return cyclePath
			}
		}
	}

	return []string{"(cycle detected)"}
}
