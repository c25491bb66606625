package attribute

import (
	"fmt"
	"strings"
)

// prerequisitePath returns the chain of definitions leading from "from" to
// "to" along prerequisite edges, or nil when "to" is unreachable
func prerequisitePath(from, to *Definition) []*Definition {
	visited := make(map[*Definition]bool)

	var dfs func(node *Definition, path []*Definition) []*Definition
	dfs = func(node *Definition, path []*Definition) []*Definition {
		visited[node] = true
		path = append(path, node)
		if node == to {
			return path
		}
		for _, next := range node.prerequisites {
			if visited[next] {
				continue
			}
			if found := dfs(next, path); found != nil {
				return found
			}
		}
		return nil
	}

	return dfs(from, nil)
}

// PrerequisiteCycles reports every prerequisite cycle among the resource's
// definitions. AddPrerequisite refuses to create one, so this is empty
// unless edges were spliced in by other means.
func (r *Resource) PrerequisiteCycles() [][]string {
	var cycles [][]string
	visited := make(map[*Definition]bool)
	onStack := make(map[*Definition]bool)

	var dfs func(node *Definition, path []*Definition)
	dfs = func(node *Definition, path []*Definition) {
		visited[node] = true
		onStack[node] = true
		path = append(path, node)

		for _, next := range node.prerequisites {
			if !visited[next] {
				dfs(next, path)
			} else if onStack[next] {
				for i, n := range path {
					if n == next {
						cycle := make([]string, 0, len(path)-i)
						for _, d := range path[i:] {
							cycle = append(cycle, d.typeName)
						}
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}

		onStack[node] = false
	}

	for _, d := range r.defOrder {
		if !visited[d] {
			dfs(d, nil)
		}
	}
	return cycles
}

// PrerequisiteOrder returns every definition type with prerequisites
// before the definitions requiring them
func (r *Resource) PrerequisiteOrder() ([]string, error) {
	outDegree := make(map[*Definition]int)
	dependents := make(map[*Definition][]*Definition)
	for _, d := range r.defOrder {
		outDegree[d] = len(d.prerequisites)
		for _, p := range d.prerequisites {
			dependents[p] = append(dependents[p], d)
		}
	}

	var queue []*Definition
	for _, d := range r.defOrder {
		if outDegree[d] == 0 {
			queue = append(queue, d)
		}
	}

	result := make([]string, 0, len(r.defOrder))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node.typeName)

		for _, dependent := range dependents[node] {
			outDegree[dependent]--
			if outDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(r.defOrder) {
		return nil, enrich(ErrPrerequisiteCycle, "%s", formatCycles(r.PrerequisiteCycles()))
	}
	return result, nil
}

func formatCycle(path []*Definition) string {
	names := make([]string, len(path))
	for i, d := range path {
		names[i] = d.typeName
	}
	return strings.Join(names, " -> ")
}

func formatCycles(cycles [][]string) string {
	parts := make([]string, 0, len(cycles))
	for _, cycle := range cycles {
		if len(cycle) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s -> %s", strings.Join(cycle, " -> "), cycle[0]))
	}
	return strings.Join(parts, "; ")
}
