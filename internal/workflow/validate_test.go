package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *Definition {
	return &Definition{
		Version:  FormatVersion,
		Metadata: Metadata{Name: "demo"},
		Nodes: []Node{
			{ID: "a", Kind: KindInput, Label: "Input"},
			{ID: "b", Kind: KindTask, Label: "Task"},
		},
		Edges: []Edge{
			{ID: "e1", Source: Connector{NodeID: "a"}, Target: Connector{NodeID: "b"}},
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid definition has no issues", func(t *testing.T) {
		assert.Empty(t, validDefinition().Validate())
	})

	t.Run("empty version is tolerated", func(t *testing.T) {
		def := validDefinition()
		def.Version = ""
		assert.Empty(t, def.Validate())
	})

	t.Run("unsupported version", func(t *testing.T) {
		def := validDefinition()
		def.Version = "datapizza.workflow/v0"
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0], "unsupported workflow format")
	})

	t.Run("blank name", func(t *testing.T) {
		def := validDefinition()
		def.Metadata.Name = "   "
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "metadata.name: cannot be blank", issues[0])
	})

	t.Run("no nodes", func(t *testing.T) {
		def := validDefinition()
		def.Nodes = nil
		def.Edges = nil
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "nodes: workflows must define at least one node", issues[0])
	})

	t.Run("duplicated node ids reported once, sorted", func(t *testing.T) {
		def := validDefinition()
		def.Nodes = append(def.Nodes,
			Node{ID: "b", Kind: KindTask, Label: "Task again"},
			Node{ID: "a", Kind: KindInput, Label: "Input again"},
		)
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "nodes: workflow contains duplicated node ids: a, b", issues[0])
	})

	t.Run("unknown node kind", func(t *testing.T) {
		def := validDefinition()
		def.Nodes[1].Kind = "decision"
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0], "unknown node kind 'decision'")
	})

	t.Run("blank node id skips label check for that node", func(t *testing.T) {
		def := validDefinition()
		def.Nodes[0] = Node{ID: " ", Kind: KindInput, Label: ""}
		issues := def.Validate()
		assert.Contains(t, issues, "nodes[0].id: cannot be blank")
		assert.NotContains(t, issues, "nodes[0].label: cannot be blank")
	})

	t.Run("edge endpoints must exist", func(t *testing.T) {
		def := validDefinition()
		def.Edges = append(def.Edges, Edge{
			ID:     "e2",
			Source: Connector{NodeID: "ghost"},
			Target: Connector{NodeID: "b"},
		})
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "edge 'e2' references missing source node 'ghost'", issues[0])
	})

	t.Run("duplicated edge ids", func(t *testing.T) {
		def := validDefinition()
		def.Edges = append(def.Edges, Edge{
			ID:     "e1",
			Source: Connector{NodeID: "a"},
			Target: Connector{NodeID: "b"},
		})
		issues := def.Validate()
		require.Len(t, issues, 1)
		assert.Equal(t, "edges: workflow contains duplicated edge ids: e1", issues[0])
	})

	t.Run("issues accumulate", func(t *testing.T) {
		def := &Definition{Version: "nope"}
		issues := def.Validate()
		assert.Len(t, issues, 3)
	})
}

func TestClone(t *testing.T) {
	t.Run("mutating the clone leaves the original untouched", func(t *testing.T) {
		def := validDefinition()
		def.Nodes[1].Data = map[string]any{
			"capability": "datapizza.modules.echo.Echo",
			"parameters": map[string]any{"message": "hi"},
		}

		clone := def.Clone()
		clone.Metadata.Name = "changed"
		clone.Nodes[1].Data["parameters"].(map[string]any)["message"] = "bye"
		clone.Edges[0].Source.NodeID = "zzz"

		assert.Equal(t, "demo", def.Metadata.Name)
		assert.Equal(t, "hi", def.Nodes[1].Data["parameters"].(map[string]any)["message"])
		assert.Equal(t, "a", def.Edges[0].Source.NodeID)
	})

	t.Run("nil options clone to nil", func(t *testing.T) {
		var opts *RuntimeOptions
		assert.Nil(t, opts.Clone())
	})

	t.Run("options clone deeply", func(t *testing.T) {
		opts := &RuntimeOptions{
			Environment:     "staging",
			Credentials:     map[string]string{"api_token": "secret"},
			ConfigOverrides: map[string]any{"retries": 3},
		}
		clone := opts.Clone()
		clone.Credentials["api_token"] = "other"
		clone.ConfigOverrides["retries"] = 9

		assert.Equal(t, "secret", opts.Credentials["api_token"])
		assert.Equal(t, 3, opts.ConfigOverrides["retries"])
	})
}
