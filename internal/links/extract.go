package links

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// markdownInstance is initialized once and reused. The parser configuration
// never changes and the goldmark parser is safe to share; actual parsing
// creates per-call state via Parse(reader).
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

func parser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownInstance
}

// Extract returns the normalized slugs of all internal links in the markdown
// content, deduplicated in document order. External URLs, anchors and mailto
// targets are discarded.
func Extract(content string) []string {
	source := []byte(content)
	doc := parser().Parser().Parse(text.NewReader(source))

	slugs := []string{}
	seen := map[string]bool{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		if !isInternal(dest) {
			return ast.WalkContinue, nil
		}
		slug := Normalize(dest)
		if slug != "" && !seen[slug] {
			seen[slug] = true
			slugs = append(slugs, slug)
		}
		return ast.WalkContinue, nil
	})
	return slugs
}

// isInternal reports whether a link destination points to another document.
// External links (http://, https://), anchors (#heading) and mailto links
// are not internal.
func isInternal(url string) bool {
	return !strings.HasPrefix(url, "http://") &&
		!strings.HasPrefix(url, "https://") &&
		!strings.HasPrefix(url, "#") &&
		!strings.HasPrefix(url, "mailto:")
}

// Normalize converts a link destination to canonical slug form: the leading
// slash and `docs/` prefix are stripped, anchor fragments and trailing
// slashes removed. Case is preserved.
func Normalize(url string) string {
	stripped := strings.TrimPrefix(strings.TrimPrefix(url, "/"), "docs/")
	withoutAnchor, _, _ := strings.Cut(stripped, "#")
	return strings.TrimSuffix(withoutAnchor, "/")
}
