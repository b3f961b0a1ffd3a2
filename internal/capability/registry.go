package capability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Namespace is the single reference prefix the resolver trusts. Everything
// outside it is rejected before any lookup happens.
const Namespace = "datapizza."

// Handler is the plain-function form of a capability. Args are the bound
// call payload produced by BindArguments.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Invocable is the object form of a capability.
type Invocable interface {
	Invoke(ctx context.Context, args map[string]any) (any, error)
}

// Entry holds the compiled Go parts of one capability: the handler and the
// manifest of argument slots it accepts. Defaults are populated from the
// HCL manifest during registry validation.
type Entry struct {
	// Slots enumerates the argument names the handler accepts.
	Slots []string
	// AcceptsExtra marks handlers that take arbitrary additional keys.
	AcceptsExtra bool
	// Fn is a Handler, an Invocable, or a func() Invocable factory.
	Fn          any
	Description string
	Defaults    map[string]any
}

func (e *Entry) accepts(name string) bool {
	return slices.Contains(e.Slots, name)
}

// Module is the interface capability packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps dotted capability references to their entries, keyed as
// module path plus attribute so resolution failures can name the missing
// part precisely.
type Registry struct {
	modules map[string]map[string]*Entry
}

// NewRegistry creates an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]map[string]*Entry)}
}

// Register adds an entry under the given fully-qualified reference. A
// malformed or duplicate reference is a programmer error and panics, so
// mistakes surface at startup rather than mid-run.
func (r *Registry) Register(ref string, entry *Entry) {
	modulePath, attribute, err := splitReference(ref)
	if err != nil {
		panic(fmt.Sprintf("capability registration for '%s': %v", ref, err))
	}
	attrs, ok := r.modules[modulePath]
	if !ok {
		attrs = make(map[string]*Entry)
		r.modules[modulePath] = attrs
	}
	if _, exists := attrs[attribute]; exists {
		panic(fmt.Sprintf("capability '%s' already registered", ref))
	}
	slog.Debug("Registering capability handler.", "ref", ref)
	attrs[attribute] = entry
}

// Resolve maps a dotted reference to its registered entry, failing closed
// on anything outside the allowed namespace.
func (r *Registry) Resolve(ref string) (*Entry, error) {
	modulePath, attribute, err := splitReference(ref)
	if err != nil {
		return nil, err
	}
	attrs, ok := r.modules[modulePath]
	if !ok {
		return nil, newLoadError("unable to locate module '%s'", modulePath)
	}
	entry, ok := attrs[attribute]
	if !ok {
		return nil, newLoadError("module '%s' does not expose attribute '%s'", modulePath, attribute)
	}
	return entry, nil
}

// References returns every registered reference. Used by manifest
// validation and the service info endpoint.
func (r *Registry) References() []string {
	refs := make([]string, 0, len(r.modules))
	for modulePath, attrs := range r.modules {
		for attribute := range attrs {
			refs = append(refs, modulePath+"."+attribute)
		}
	}
	slices.Sort(refs)
	return refs
}

func splitReference(ref string) (modulePath, attribute string, err error) {
	if ref == "" {
		return "", "", newLoadError("capability reference must be a non-empty string")
	}
	if !strings.HasPrefix(ref, Namespace) {
		return "", "", newLoadError("capability resolution is restricted to the '%s' namespace", strings.TrimSuffix(Namespace, "."))
	}
	idx := strings.LastIndex(ref, ".")
	modulePath, attribute = ref[:idx], ref[idx+1:]
	if modulePath == "" || attribute == "" {
		return "", "", newLoadError("'%s' is not a fully-qualified capability reference", ref)
	}
	return modulePath, attribute, nil
}
