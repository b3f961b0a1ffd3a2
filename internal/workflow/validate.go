package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the structural integrity of the document and returns the
// list of issues found. An empty slice means the definition is valid. The
// engine assumes any graph it executes has passed this check.
func (d *Definition) Validate() []string {
	var issues []string

	if d.Version != "" && d.Version != FormatVersion {
		issues = append(issues, fmt.Sprintf("version: unsupported workflow format '%s'", d.Version))
	}
	if strings.TrimSpace(d.Metadata.Name) == "" {
		issues = append(issues, "metadata.name: cannot be blank")
	}
	if len(d.Nodes) == 0 {
		issues = append(issues, "nodes: workflows must define at least one node")
	}

	nodeIDs := make(map[string]struct{}, len(d.Nodes))
	duplicated := make(map[string]struct{})
	for i, node := range d.Nodes {
		if strings.TrimSpace(node.ID) == "" {
			issues = append(issues, fmt.Sprintf("nodes[%d].id: cannot be blank", i))
			continue
		}
		if strings.TrimSpace(node.Label) == "" {
			issues = append(issues, fmt.Sprintf("nodes[%d].label: cannot be blank", i))
		}
		switch node.Kind {
		case KindInput, KindTask, KindOutput:
		default:
			issues = append(issues, fmt.Sprintf("nodes[%d].kind: unknown node kind '%s'", i, node.Kind))
		}
		if _, seen := nodeIDs[node.ID]; seen {
			duplicated[node.ID] = struct{}{}
		}
		nodeIDs[node.ID] = struct{}{}
	}
	if len(duplicated) > 0 {
		issues = append(issues, fmt.Sprintf("nodes: workflow contains duplicated node ids: %s", joinSorted(duplicated)))
	}

	edgeIDs := make(map[string]struct{}, len(d.Edges))
	duplicatedEdges := make(map[string]struct{})
	for i, edge := range d.Edges {
		if strings.TrimSpace(edge.ID) == "" {
			issues = append(issues, fmt.Sprintf("edges[%d].id: cannot be blank", i))
			continue
		}
		if _, seen := edgeIDs[edge.ID]; seen {
			duplicatedEdges[edge.ID] = struct{}{}
		}
		edgeIDs[edge.ID] = struct{}{}

		if _, ok := nodeIDs[edge.Source.NodeID]; !ok {
			issues = append(issues, fmt.Sprintf("edge '%s' references missing source node '%s'", edge.ID, edge.Source.NodeID))
		}
		if _, ok := nodeIDs[edge.Target.NodeID]; !ok {
			issues = append(issues, fmt.Sprintf("edge '%s' references missing target node '%s'", edge.ID, edge.Target.NodeID))
		}
	}
	if len(duplicatedEdges) > 0 {
		issues = append(issues, fmt.Sprintf("edges: workflow contains duplicated edge ids: %s", joinSorted(duplicatedEdges)))
	}

	return issues
}

func joinSorted(set map[string]struct{}) string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ", ")
}
