package links

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lekton/lekton/internal/document"
	"github.com/lekton/lekton/internal/document/repository"
)

func TestExtract(t *testing.T) {
	content := `# Guide

See [getting started](/docs/getting-started) and [the API](/api-reference).

External: [site](https://example.com), [plain](http://example.com).
Also [anchor](#section) and [mail](mailto:team@example.com).

Repeat: [again](/docs/getting-started).
`
	slugs := Extract(content)
	require.Equal(t, []string{"getting-started", "api-reference"}, slugs)
}

func TestExtractNested(t *testing.T) {
	slugs := Extract("[a](/docs/guides/auth/) and [b](guides/deploy#setup)")
	require.Equal(t, []string{"guides/auth", "guides/deploy"}, slugs)
}

func TestExtractNone(t *testing.T) {
	require.Empty(t, Extract("no links here, just *emphasis* and `code`"))
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"/docs/hello":       "hello",
		"docs/hello":        "hello",
		"/hello":            "hello",
		"hello#section":     "hello",
		"/docs/a/b/":        "a/b",
		"/docs/Hello-World": "Hello-World",
	}
	for in, want := range cases {
		require.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestValidate(t *testing.T) {
	repo := repository.NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &document.Document{Slug: "exists", Title: "Exists"}))

	v, err := Validate(ctx, repo, []string{"exists", "missing"})
	require.NoError(t, err)
	require.Equal(t, []string{"exists"}, v.Resolvable)
	require.Equal(t, []string{"missing"}, v.Dangling)
}

func TestPreview(t *testing.T) {
	got := Preview("# Title\n\nSome **bold** text with a [link](/docs/x).", 200)
	require.Equal(t, "Title Some bold text with a link .", got)
}

func TestPreviewTruncates(t *testing.T) {
	got := Preview("hello world", 5)
	require.Equal(t, "hello", got)
}
