package engine

import (
	"fmt"

	"github.com/ferrous-networks/asicman/sdk"
)

// Node describes an attribute read request. A caller can describe a
// bundle of related attributes once and read them all in one call tree,
// which matters for bulk state reconciliation (reloading full object
// state after a restart) without per-attribute boilerplate.
//
// Three node kinds exist: Scalar (one attribute), Group (an ordered
// aggregate read element by element), and Optional (an attribute that
// may be absent on the caller's side).
type Node interface {
	isNode()
}

// Scalar reads one attribute.
type Scalar struct {
	Attr *sdk.Attribute
}

// Group reads an ordered aggregate of nodes, preserving order. The
// result is a GroupResult of the same shape.
type Group struct {
	Nodes []Node
}

// Optional reads an attribute the caller may not hold. When Attr is
// nil, a default-constructed attribute of the declared ID and kind is
// read in its place; the result is always wrapped back as present.
// There is no way to distinguish "attribute unset on hardware" from
// "attribute default value" through this path.
type Optional struct {
	ID   sdk.AttrID
	Kind sdk.Kind
	Attr *sdk.Attribute
}

func (Scalar) isNode()   {}
func (Group) isNode()    {}
func (Optional) isNode() {}

// Result is the value tree produced by Get, mirroring the request
// node's shape.
type Result interface {
	isResult()
}

// ScalarResult holds one attribute's semantic value.
type ScalarResult struct {
	Value sdk.Value
}

// GroupResult holds the per-element results of a Group, in request
// order.
type GroupResult struct {
	Elems []Result
}

// OptionalResult holds an Optional's value. It is always present.
type OptionalResult struct {
	Value sdk.Value
}

func (ScalarResult) isResult()   {}
func (GroupResult) isResult()    {}
func (OptionalResult) isResult() {}

// Get recursively reads an attribute tree. Each Scalar leaf is one
// GetAttribute call with its own critical section and overflow-retry
// protocol; aggregates recurse element by element in order.
func (e *Engine) Get(key sdk.Key, node Node) (Result, error) {
	switch n := node.(type) {
	case Scalar:
		v, err := e.GetAttribute(key, n.Attr)
		if err != nil {
			return nil, err
		}
		return ScalarResult{Value: v}, nil

	case Group:
		elems := make([]Result, 0, len(n.Nodes))
		for _, child := range n.Nodes {
			r, err := e.Get(key, child)
			if err != nil {
				return nil, err
			}
			elems = append(elems, r)
		}
		return GroupResult{Elems: elems}, nil

	case Optional:
		attr := n.Attr
		if attr == nil {
			attr = &sdk.Attribute{ID: n.ID, Value: sdk.DefaultValue(n.Kind)}
		}
		v, err := e.GetAttribute(key, attr)
		if err != nil {
			return nil, err
		}
		return OptionalResult{Value: v}, nil

	default:
		panic(fmt.Sprintf("engine: unknown node type %T", node))
	}
}
