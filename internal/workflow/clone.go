package workflow

// Clone returns a deep copy of the definition. Each run takes its own
// snapshot so callers may keep mutating their copy after submission.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{
		Version:    d.Version,
		Metadata:   d.Metadata,
		Extensions: cloneAnyMap(d.Extensions),
	}
	if d.Metadata.Author != nil {
		author := *d.Metadata.Author
		out.Metadata.Author = &author
	}
	if d.Metadata.Tags != nil {
		out.Metadata.Tags = append([]string(nil), d.Metadata.Tags...)
	}
	if d.Nodes != nil {
		out.Nodes = make([]Node, len(d.Nodes))
		for i, node := range d.Nodes {
			node.Data = cloneAnyMap(node.Data)
			out.Nodes[i] = node
		}
	}
	if d.Edges != nil {
		out.Edges = make([]Edge, len(d.Edges))
		for i, edge := range d.Edges {
			edge.Metadata = cloneAnyMap(edge.Metadata)
			out.Edges[i] = edge
		}
	}
	return out
}

// Clone returns a deep copy of the options, or nil for nil options.
func (o *RuntimeOptions) Clone() *RuntimeOptions {
	if o == nil {
		return nil
	}
	out := &RuntimeOptions{Environment: o.Environment}
	if o.ComponentSearchPaths != nil {
		out.ComponentSearchPaths = append([]string(nil), o.ComponentSearchPaths...)
	}
	out.EnvironmentVariables = cloneStringMap(o.EnvironmentVariables)
	out.Credentials = cloneStringMap(o.Credentials)
	out.ConfigOverrides = cloneAnyMap(o.ConfigOverrides)
	return out
}

func cloneStringMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneAnyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		// Scalars arriving from JSON/YAML decoding are immutable.
		return v
	}
}
