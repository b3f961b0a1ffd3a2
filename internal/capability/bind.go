package capability

import "sort"

// Conventional slot names, bound in priority order before any named
// parameter matching happens.
const (
	slotContext    = "context"
	slotPayload    = "payload"
	slotInputs     = "inputs"
	slotUpstream   = "upstream"
	slotParameters = "parameters"
)

// NormalizeParameters coerces a node's raw parameters payload into a flat
// string-keyed map. Anything that is not a mapping is rejected.
func NormalizeParameters(raw any) (map[string]any, error) {
	switch v := raw.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = value
		}
		return out, nil
	default:
		return nil, ErrInvalidParameters
	}
}

// BindArguments produces the concrete call payload for an entry from the
// node's parameters and the results gathered from its upstream nodes.
//
// Binding is deterministic: identical (slots, parameters, inputs) always
// yield an identical payload.
func BindArguments(entry *Entry, parameters, inputs map[string]any) (map[string]any, error) {
	args := make(map[string]any)
	envelope := map[string]any{"parameters": parameters, "inputs": inputs}

	if entry.accepts(slotContext) {
		args[slotContext] = envelope
	}
	if entry.accepts(slotPayload) {
		if _, bound := args[slotPayload]; !bound {
			args[slotPayload] = envelope
		}
	}
	if entry.accepts(slotInputs) {
		args[slotInputs] = inputs
	}
	if entry.accepts(slotUpstream) {
		if _, bound := args[slotUpstream]; !bound {
			args[slotUpstream] = inputs
		}
	}
	if entry.accepts(slotParameters) {
		args[slotParameters] = parameters
	}

	names := make([]string, 0, len(parameters))
	for name := range parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, bound := args[name]; bound {
			continue
		}
		if entry.accepts(name) || entry.AcceptsExtra {
			args[name] = parameters[name]
		}
	}

	for name, value := range entry.Defaults {
		if !entry.accepts(name) {
			continue
		}
		if _, bound := args[name]; !bound {
			args[name] = value
		}
	}

	if len(args) == 0 && len(parameters) > 0 && len(entry.Slots) == 0 && !entry.AcceptsExtra {
		return nil, ErrUnexpectedParameters
	}
	return args, nil
}
