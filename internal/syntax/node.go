// Package syntax models the immutable tree handed to the compiler by the
// external parser. Nodes carry a kind, a source span, an optional text
// payload (identifier spelling, literal value) and ordered children.
//
// The tree is produced once per file and never mutated; the declaration
// builder owns it during conversion and drops it afterwards, keeping only
// spans for diagnostics.
package syntax

import (
	"vela/internal/source"
)

// Node is one immutable syntax tree node.
type Node struct {
	kind     Kind
	span     source.Span
	text     string
	children []*Node
}

// New constructs a node. The children slice is captured as-is; callers
// hand over ownership and must not mutate it afterwards.
func New(kind Kind, span source.Span, text string, children ...*Node) *Node {
	return &Node{kind: kind, span: span, text: text, children: children}
}

func (n *Node) Kind() Kind {
	return n.kind
}

func (n *Node) Span() source.Span {
	return n.span
}

// Text returns the payload: identifier spelling for KindName/KindNameRef/
// KindModifier, raw value for KindLiteral, empty otherwise.
func (n *Node) Text() string {
	return n.text
}

func (n *Node) NumChildren() int {
	return len(n.children)
}

func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns the backing slice; callers must treat it as read-only.
func (n *Node) Children() []*Node {
	return n.children
}

// FirstChild returns the first child of the given kind, or nil.
func (n *Node) FirstChild(kind Kind) *Node {
	for _, c := range n.children {
		if c.kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all direct children of the given kind, in order.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == kind {
			out = append(out, c)
		}
	}
	return out
}
