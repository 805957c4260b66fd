package links

import (
	"context"

	"github.com/lekton/lekton/internal/document/repository"
)

// Validation is the outcome of checking extracted links against the
// metadata store.
type Validation struct {
	Resolvable []string
	Dangling   []string
}

// Validate splits slugs into those that resolve to an existing document and
// those that do not. Dangling links are reported, never rejected; the target
// may simply not have been ingested yet.
func Validate(ctx context.Context, repo repository.DocumentRepository, slugs []string) (Validation, error) {
	var v Validation
	for _, slug := range slugs {
		doc, err := repo.FindBySlug(ctx, slug)
		if err != nil {
			return Validation{}, err
		}
		if doc != nil {
			v.Resolvable = append(v.Resolvable, slug)
		} else {
			v.Dangling = append(v.Dangling, slug)
		}
	}
	return v, nil
}
