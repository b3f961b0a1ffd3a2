package capability

import (
	"context"
	"fmt"
	"math/big"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/Pietro-Ricciardi/datapizza-ai/internal/ctxlog"
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/fsutil"
)

// Manifest is the public-facing declaration of one capability, decoded from
// a module's HCL file. It mirrors the accepted-slot contract the Go entry
// registers in code; parity between the two is enforced at startup.
type Manifest struct {
	Ref          string
	Description  string
	AcceptsExtra bool
	Slots        map[string]*SlotDefinition
}

// SlotDefinition declares one accepted argument slot.
type SlotDefinition struct {
	Name        string
	Description string
	Optional    bool
	Default     any
	HasDefault  bool
}

// fileRoot decodes all capability blocks from a single manifest file.
type fileRoot struct {
	Capabilities []*capabilityBlock `hcl:"capability,block"`
	Remain       hcl.Body           `hcl:",remain"`
}

type capabilityBlock struct {
	Ref          string       `hcl:"ref,label"`
	Description  string       `hcl:"description,optional"`
	AcceptsExtra bool         `hcl:"accepts_extra,optional"`
	Slots        []*slotBlock `hcl:"slot,block"`
}

type slotBlock struct {
	Name        string    `hcl:"name,label"`
	Description string    `hcl:"description,optional"`
	Optional    bool      `hcl:"optional,optional"`
	Default     cty.Value `hcl:"default,optional"`
}

// LoadManifests walks the given paths collecting .hcl files and decodes
// every capability block found, keyed by reference.
func LoadManifests(ctx context.Context, paths ...string) (map[string]*Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindHCLFiles(paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered capability manifest files.", "count", len(files))

	manifests := make(map[string]*Manifest)
	parser := hclparse.NewParser()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest file %s: %w", file, diags)
		}

		for _, block := range root.Capabilities {
			manifest, err := translateCapabilityBlock(block)
			if err != nil {
				return nil, fmt.Errorf("in manifest file %s: %w", file, err)
			}
			if _, exists := manifests[manifest.Ref]; exists {
				return nil, fmt.Errorf("capability '%s' declared by more than one manifest", manifest.Ref)
			}
			manifests[manifest.Ref] = manifest
		}
	}

	logger.Debug("Capability manifests loaded.", "count", len(manifests))
	return manifests, nil
}

func translateCapabilityBlock(block *capabilityBlock) (*Manifest, error) {
	manifest := &Manifest{
		Ref:          block.Ref,
		Description:  block.Description,
		AcceptsExtra: block.AcceptsExtra,
		Slots:        make(map[string]*SlotDefinition, len(block.Slots)),
	}
	for _, slot := range block.Slots {
		if _, exists := manifest.Slots[slot.Name]; exists {
			return nil, fmt.Errorf("capability '%s' declares slot '%s' twice", block.Ref, slot.Name)
		}
		def := &SlotDefinition{
			Name:        slot.Name,
			Description: slot.Description,
			Optional:    slot.Optional,
		}
		if slot.Default != cty.NilVal && !slot.Default.IsNull() {
			native, err := ctyToNative(slot.Default)
			if err != nil {
				return nil, fmt.Errorf("capability '%s', slot '%s': %w", block.Ref, slot.Name, err)
			}
			def.Default = native
			def.HasDefault = true
		}
		manifest.Slots[slot.Name] = def
	}
	return manifest, nil
}

// ctyToNative recursively converts a cty.Value into its most natural Go
// counterpart, used for decoding generic slot defaults.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		bf := v.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i, nil
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		slice := make([]any, 0, v.LengthInt())
		it := v.ElementIterator()
		for it.Next() {
			_, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			slice = append(slice, native)
		}
		return slice, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		it := v.ElementIterator()
		for it.Next() {
			key, elem := it.Element()
			native, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = native
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported manifest value type %s", ty.FriendlyName())
	}
}
