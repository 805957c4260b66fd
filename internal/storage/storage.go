package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BlobStore is the thin capability the rest of the service has over the blob
// backend: put/get by key. Keys are derived deterministically so retries of
// the same ingest overwrite the same object.
type BlobStore interface {
	// Put stores content under key, replacing any existing object.
	Put(ctx context.Context, key string, content []byte, contentType string) error
	// Get retrieves content by key. The bool reports whether the object exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// DocumentKey derives the blob key for a document's markdown content.
func DocumentKey(slug string) string {
	return "docs/" + slug + ".md"
}

// SchemaKey derives the blob key for a schema version. The extension is
// sniffed from the content: a leading '{' means JSON, anything else YAML.
func SchemaKey(name, version, content string) string {
	ext := "yaml"
	if strings.HasPrefix(strings.TrimSpace(content), "{") {
		ext = "json"
	}
	return fmt.Sprintf("schemas/%s/%s.%s", name, version, ext)
}

// ImageKey derives a unique blob key for an uploaded image. Characters
// outside [alnum . -] in the file name are replaced to keep keys URL-safe.
func ImageKey(fileName string, now time.Time) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '_'
		}
	}, fileName)
	return fmt.Sprintf("images/%d_%s", now.UnixMilli(), sanitized)
}
