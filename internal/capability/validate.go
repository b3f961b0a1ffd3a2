package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
)

// ValidateManifests performs a strict parity check between the loaded HCL
// manifests and the Go registrations, then folds manifest metadata
// (descriptions, slot defaults) into the registered entries.
//
// Every manifest must name a registered capability and declare exactly the
// slots its Go entry accepts. Registered capabilities without a manifest
// are tolerated: built-in test fixtures register directly in code.
func (r *Registry) ValidateManifests(ctx context.Context, manifests map[string]*Manifest) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for ref, manifest := range manifests {
		entry, err := r.Resolve(ref)
		if err != nil {
			errs = append(errs, fmt.Sprintf("capability '%s': manifest declared but no handler registered (%v)", ref, err))
			continue
		}
		errsBefore := len(errs)

		declared := make(map[string]struct{}, len(manifest.Slots))
		for name := range manifest.Slots {
			declared[name] = struct{}{}
		}

		for _, slot := range entry.Slots {
			if _, ok := declared[slot]; !ok {
				errs = append(errs, fmt.Sprintf("capability '%s': Go handler accepts slot '%s' which is not declared in the manifest", ref, slot))
			}
		}
		for name := range declared {
			if !entry.accepts(name) {
				errs = append(errs, fmt.Sprintf("capability '%s': manifest declares slot '%s' which the Go handler does not accept", ref, name))
			}
		}
		if manifest.AcceptsExtra != entry.AcceptsExtra {
			errs = append(errs, fmt.Sprintf("capability '%s': manifest accepts_extra=%t disagrees with the Go handler (%t)", ref, manifest.AcceptsExtra, entry.AcceptsExtra))
		}
		if len(errs) > errsBefore {
			continue
		}

		if manifest.Description != "" {
			entry.Description = manifest.Description
		}
		for name, slot := range manifest.Slots {
			if !slot.HasDefault {
				continue
			}
			if entry.Defaults == nil {
				entry.Defaults = make(map[string]any)
			}
			entry.Defaults[name] = slot.Default
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("capability manifest validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Capability manifest validation passed.", "manifests", len(manifests))
	return nil
}
