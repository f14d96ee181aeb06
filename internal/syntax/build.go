package syntax

import (
	"vela/internal/source"
)

// Convenience constructors. The real parser mints spans from token
// positions; tests that assemble trees by hand use these with zero spans.

func File(span source.Span, decls ...*Node) *Node {
	return New(KindFile, span, "", decls...)
}

func Name(span source.Span, text string) *Node {
	return New(KindName, span, text)
}

func Modifiers(span source.Span, words ...string) *Node {
	children := make([]*Node, 0, len(words))
	for _, w := range words {
		children = append(children, New(KindModifier, span, w))
	}
	return New(KindModifierList, span, "", children...)
}

func TypeRef(span source.Span, name string, args ...*Node) *Node {
	children := []*Node{Name(span, name)}
	if len(args) > 0 {
		children = append(children, New(KindTypeArgList, span, "", args...))
	}
	return New(KindTypeRef, span, "", children...)
}

// NullableTypeRef marks the referenced type as nullable via the text
// payload, mirroring how the parser encodes the trailing '?'.
func NullableTypeRef(span source.Span, name string, args ...*Node) *Node {
	children := []*Node{Name(span, name)}
	if len(args) > 0 {
		children = append(children, New(KindTypeArgList, span, "", args...))
	}
	return New(KindTypeRef, span, "?", children...)
}

func Param(span source.Span, name string, typ *Node) *Node {
	return New(KindParam, span, "", Name(span, name), typ)
}
