package ingest

import (
	"context"
	"slices"
)

// reconcileBacklinks updates the backlink sets of documents this slug
// gained or lost references to. Mutations are atomic set operations on the
// target records, so concurrent ingests of different sources that link the
// same target both land.
func (s *Service) reconcileBacklinks(ctx context.Context, slug string, prevLinks, newLinks []string) error {
	for _, target := range newLinks {
		if slices.Contains(prevLinks, target) {
			continue
		}
		if err := s.docs.AddBacklink(ctx, target, slug); err != nil {
			return err
		}
	}
	for _, target := range prevLinks {
		if slices.Contains(newLinks, target) {
			continue
		}
		if err := s.docs.RemoveBacklink(ctx, target, slug); err != nil {
			return err
		}
	}
	return nil
}
