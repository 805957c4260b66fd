package links

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Preview strips markdown markup from content and returns the first maxLen
// runes of the remaining plain text. Link anchor text and heading text are
// kept, code blocks are kept as-is, URLs and formatting characters are not.
func Preview(content string, maxLen int) string {
	source := []byte(content)
	doc := parser().Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			writeWord(&b, string(t.Segment.Value(source)))
		case *ast.String:
			writeWord(&b, string(t.Value))
		case *ast.CodeSpan:
			// children are Text nodes, handled above
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				writeWord(&b, strings.TrimRight(string(seg.Value(source)), "\n"))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return truncateRunes(strings.TrimSpace(b.String()), maxLen)
}

func writeWord(b *strings.Builder, word string) {
	word = strings.TrimSpace(word)
	if word == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(word)
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
