package driver

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"vela/internal/source"
	"vela/internal/syntax"
)

// treeSchemaVersion is bumped whenever the serialized node layout changes.
// The parser and the compiler must agree on it exactly; a mismatch is a
// toolchain installation problem, not a user error.
const treeSchemaVersion = 1

type treeFile struct {
	Schema uint16   `msgpack:"schema"`
	Path   string   `msgpack:"path"`
	Root   nodeWire `msgpack:"root"`
}

// nodeWire mirrors syntax.Node on the wire. Offsets are file-relative;
// the decoder rebinds them to the FileID assigned by our FileSet.
type nodeWire struct {
	Kind     uint8      `msgpack:"k"`
	Start    uint32     `msgpack:"s"`
	End      uint32     `msgpack:"e"`
	Text     string     `msgpack:"t,omitempty"`
	Children []nodeWire `msgpack:"c,omitempty"`
}

// DecodeTree parses one serialized syntax tree and rebuilds the immutable
// node structure with spans bound to file.
func DecodeTree(data []byte, file source.FileID) (*syntax.Node, string, error) {
	var tf treeFile
	if err := msgpack.Unmarshal(data, &tf); err != nil {
		return nil, "", fmt.Errorf("decode syntax tree: %w", err)
	}
	if tf.Schema != treeSchemaVersion {
		return nil, "", fmt.Errorf("syntax tree schema %d, compiler expects %d", tf.Schema, treeSchemaVersion)
	}
	root, err := decodeNode(&tf.Root, file)
	if err != nil {
		return nil, "", err
	}
	if root.Kind() != syntax.KindFile {
		return nil, "", fmt.Errorf("syntax tree root is %s, want file", root.Kind())
	}
	return root, tf.Path, nil
}

func decodeNode(w *nodeWire, file source.FileID) (*syntax.Node, error) {
	kind := syntax.Kind(w.Kind)
	if kind == syntax.KindInvalid || kind.String() == "invalid" {
		return nil, fmt.Errorf("unknown syntax node kind %d", w.Kind)
	}
	if w.End < w.Start {
		return nil, fmt.Errorf("inverted span %d..%d on %s node", w.Start, w.End, kind)
	}
	var children []*syntax.Node
	if len(w.Children) > 0 {
		children = make([]*syntax.Node, len(w.Children))
		for i := range w.Children {
			c, err := decodeNode(&w.Children[i], file)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
	}
	span := source.Span{File: file, Start: w.Start, End: w.End}
	return syntax.New(kind, span, w.Text, children...), nil
}

// EncodeTree serializes a syntax tree in the parser's wire format. The
// compiler only decodes in production; encoding exists for fixtures and
// round-trip tests.
func EncodeTree(root *syntax.Node, path string) ([]byte, error) {
	tf := treeFile{
		Schema: treeSchemaVersion,
		Path:   path,
		Root:   encodeNode(root),
	}
	return msgpack.Marshal(&tf)
}

func encodeNode(n *syntax.Node) nodeWire {
	w := nodeWire{
		Kind:  uint8(n.Kind()),
		Start: n.Span().Start,
		End:   n.Span().End,
		Text:  n.Text(),
	}
	for _, c := range n.Children() {
		w.Children = append(w.Children, encodeNode(c))
	}
	return w
}
