package extract

import (
	"encoding/json"

	"github.com/yuin/goldmark/ast"
)

// snapshotNode is the serialized form of one AST node. Position metadata is
// deliberately absent: snapshots describe structure, not source layout.
type snapshotNode struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	Level    int            `json:"level,omitempty"`
	URL      string         `json:"url,omitempty"`
	Title    string         `json:"title,omitempty"`
	Children []snapshotNode `json:"children,omitempty"`
}

// snapshotJSON serializes a node's sub-tree so downstream renderers can
// reproduce inline formatting beyond the flattened plain text.
func snapshotJSON(n ast.Node, source []byte) string {
	data, err := json.Marshal(buildSnapshot(n, source))
	if err != nil {
		return ""
	}
	return string(data)
}

func buildSnapshot(n ast.Node, source []byte) snapshotNode {
	node := snapshotNode{Type: n.Kind().String()}

	switch t := n.(type) {
	case *ast.Text:
		node.Text = string(t.Segment.Value(source))
	case *ast.String:
		node.Text = string(t.Value)
	case *ast.CodeSpan:
		node.Text = codeSpanText(t, source)
		return node
	case *ast.Heading:
		node.Level = t.Level
	case *ast.Link:
		node.URL = string(t.Destination)
		node.Title = string(t.Title)
	case *ast.Image:
		node.URL = string(t.Destination)
		node.Title = string(t.Title)
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		node.Children = append(node.Children, buildSnapshot(child, source))
	}
	return node
}
