// Package schedule compiles a workflow graph into a linear execution order.
//
// The compiler runs once per run invocation: submitted graphs are
// structurally validated upstream but are never assumed acyclic.
package schedule

import (
	"errors"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/workflow"
)

// ErrUnschedulable is reported when the graph cannot be linearised because
// it contains cycles or dependencies that no root can ever satisfy.
var ErrUnschedulable = errors.New("workflow graph contains cycles or unresolved dependencies")

// Compile produces a topological ordering of the definition's node ids plus
// the incoming map (node id -> upstream node ids in edge declaration order).
//
// Kahn's algorithm, with ties broken by node declaration order so repeated
// compilations of an unchanged graph yield an identical schedule.
func Compile(def *workflow.Definition) ([]string, map[string][]string, error) {
	inDegree := make(map[string]int, len(def.Nodes))
	incoming := make(map[string][]string, len(def.Nodes))
	dependents := make(map[string][]string)

	for _, node := range def.Nodes {
		inDegree[node.ID] = 0
		incoming[node.ID] = nil
	}
	for _, edge := range def.Edges {
		incoming[edge.Target.NodeID] = append(incoming[edge.Target.NodeID], edge.Source.NodeID)
		dependents[edge.Source.NodeID] = append(dependents[edge.Source.NodeID], edge.Target.NodeID)
		inDegree[edge.Target.NodeID]++
	}

	// Seed the queue in node declaration order.
	queue := make([]string, 0, len(def.Nodes))
	for _, node := range def.Nodes {
		if inDegree[node.ID] == 0 {
			queue = append(queue, node.ID)
		}
	}

	order := make([]string, 0, len(def.Nodes))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) != len(def.Nodes) {
		return nil, nil, ErrUnschedulable
	}
	return order, incoming, nil
}
