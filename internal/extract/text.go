package extract

import (
	"strings"

	"github.com/yuin/goldmark/ast"
)

// nodeText flattens the plain text of a node: text segments and inline code
// joined with spaces, matching the rendered reading order.
func nodeText(n ast.Node, source []byte) string {
	var parts []string
	collectText(n, source, &parts)
	return strings.Join(parts, " ")
}

func collectText(n ast.Node, source []byte, parts *[]string) {
	switch t := n.(type) {
	case *ast.Text:
		if v := strings.TrimSpace(string(t.Segment.Value(source))); v != "" {
			*parts = append(*parts, v)
		}
		return
	case *ast.CodeSpan:
		if v := strings.TrimSpace(codeSpanText(t, source)); v != "" {
			*parts = append(*parts, v)
		}
		return
	case *ast.String:
		if v := strings.TrimSpace(string(t.Value)); v != "" {
			*parts = append(*parts, v)
		}
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		collectText(child, source, parts)
	}
}

// nodeLiteral reconstructs the source text of a node's inline content,
// preserving spacing and punctuation. Bracket characters split text into
// separate segments during parsing; nodeText's space-joining would corrupt
// directive syntax, so directive parsing goes through this instead.
func nodeLiteral(n ast.Node, source []byte) string {
	var sb strings.Builder
	writeLiteral(n, source, &sb)
	return sb.String()
}

func writeLiteral(n ast.Node, source []byte, sb *strings.Builder) {
	if t, ok := n.(*ast.Text); ok {
		sb.Write(t.Segment.Value(source))
		if t.SoftLineBreak() || t.HardLineBreak() {
			sb.WriteByte('\n')
		}
		return
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		writeLiteral(child, source, sb)
	}
}

func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
		}
	}
	return sb.String()
}

// hasComplexInline reports whether a node's inline content carries
// formatting that plain text cannot represent: emphasis, inline code, or
// nested links and images.
func hasComplexInline(n ast.Node) bool {
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.Emphasis, *ast.CodeSpan, *ast.Link, *ast.Image:
			return true
		}
		if hasComplexInline(child) {
			return true
		}
	}
	return false
}
