package testutil

import (
	"fmt"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

// FixtureNode is a minimal engine.Node implementation for tests and demos
// that don't have a real host dataflow engine to supply one.
type FixtureNode struct {
	NodeName string
	Code     string
	NodeTags map[string]any
	Desc     any
}

func (n FixtureNode) Name() string         { return n.NodeName }
func (n FixtureNode) Version() string      { return n.Code }
func (n FixtureNode) Tags() map[string]any { return n.NodeTags }
func (n FixtureNode) Descriptor() any      { return n.Desc }

// FixtureGraph is a minimal engine.Graph implementation wrapping a fixed
// node list.
type FixtureGraph struct {
	NodeList []engine.Node
}

func (g FixtureGraph) Nodes() []engine.Node { return g.NodeList }

// SampleTabularRow mirrors the row shape spec.md's tabular fingerprinting
// rule is meant to hash column-order-independently.
type SampleTabularRow struct {
	ID    int
	Label string
}

// SampleTabularData returns a small table fixture for fingerprint tests:
// two columns, three rows, deliberately unordered in construction.
func SampleTabularData() []SampleTabularRow {
	return []SampleTabularRow{
		{ID: 3, Label: "gamma"},
		{ID: 1, Label: "alpha"},
		{ID: 2, Label: "beta"},
	}
}

// SampleNestedStruct is a self-nesting struct; SampleNested(depth) returns
// one nested depth levels deep, for exercising the Fingerprinter's
// composite/struct-recursion dispatch rule.
type SampleNestedStruct struct {
	Name     string
	Children []SampleNestedStruct
}

func SampleNested(depth int) SampleNestedStruct {
	if depth <= 0 {
		return SampleNestedStruct{Name: "leaf"}
	}
	return SampleNestedStruct{
		Name:     fmt.Sprintf("node-%d", depth),
		Children: []SampleNestedStruct{SampleNested(depth - 1)},
	}
}

// TwoNodeChainGraph returns a fixture graph of two nodes, B depending on A,
// for the demo CLI command.
func TwoNodeChainGraph() FixtureGraph {
	return FixtureGraph{
		NodeList: []engine.Node{
			FixtureNode{NodeName: "A", Code: "A@v1", NodeTags: map[string]any{}},
			FixtureNode{NodeName: "B", Code: "B@v1", NodeTags: map[string]any{}},
		},
	}
}
