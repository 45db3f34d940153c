package domain

import "go.trai.ch/zerr"

// DependencyGraph is the provenance relation across the artifacts of a run:
// each node is an artifact, each edge points at an artifact it was computed
// from. The validator builds it from registry metadata.
type DependencyGraph struct {
	deps map[ArtifactID][]ArtifactID
}

// NewDependencyGraph creates an empty DependencyGraph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps: make(map[ArtifactID][]ArtifactID),
	}
}

// Add records an artifact and its provenance dependencies.
func (g *DependencyGraph) Add(id ArtifactID, deps []ArtifactID) {
	g.deps[id] = deps
}

// MissingRef names a dependent artifact and the dependency it lists that is
// not present in the graph.
type MissingRef struct {
	Dependent ArtifactID
	Missing   ArtifactID
}

// Missing returns every listed dependency that does not resolve to a node.
func (g *DependencyGraph) Missing() []MissingRef {
	var missing []MissingRef
	for id, deps := range g.deps {
		for _, dep := range deps {
			if _, ok := g.deps[dep]; !ok {
				missing = append(missing, MissingRef{Dependent: id, Missing: dep})
			}
		}
	}
	return missing
}

// Validate checks that the dependency relation is acyclic using a three-color
// depth-first search. Missing dependencies are skipped here; Missing reports
// them separately so one malformed record does not mask a cycle elsewhere.
func (g *DependencyGraph) Validate() error {
	visited := make(map[ArtifactID]int, len(g.deps)) // 0: unvisited, 1: visiting, 2: visited
	var path []ArtifactID

	var visit func(u ArtifactID) error
	visit = func(u ArtifactID) error {
		visited[u] = 1
		path = append(path, u)

		for _, dep := range g.deps[u] {
			if _, ok := g.deps[dep]; !ok {
				continue
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		return nil
	}

	for id := range g.deps {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error carrying the cycle path as metadata.
func (g *DependencyGraph) buildCycleError(path []ArtifactID, dep ArtifactID) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].Short() + " -> "
	}
	cyclePath += dep.Short()
	return zerr.With(zerr.Wrap(ErrCycleDetected, "dependency relation is cyclic"), "cycle", cyclePath)
}
