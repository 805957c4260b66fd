package schema

import "context"

// Repository is the capability over the schema metadata store. Find methods
// return (nil, nil) when no record exists.
//
// Concurrency contract: Ensure, AppendVersion and ReplaceVersion are each a
// single conditional update, so concurrent ingests of the same schema can
// never drop a version another writer just appended, and two ingests of the
// same new version string store exactly one entry.
type Repository interface {
	// Upsert creates or replaces the schema stored under s.Name.
	Upsert(ctx context.Context, s *Schema) error

	// Ensure creates the schema record with an empty version list when
	// absent, and refreshes its type. Safe under concurrent callers.
	Ensure(ctx context.Context, name, schemaType string) error

	// FindByName returns the schema for name, or nil if absent.
	FindByName(ctx context.Context, name string) (*Schema, error)

	// List returns all schemas sorted by name.
	List(ctx context.Context) ([]*Schema, error)

	// AppendVersion adds a new version entry to an existing schema. The
	// duplicate check and the append are one atomic operation. Fails with
	// apperr.ErrNotFound when the schema does not exist and with
	// apperr.ErrValidation when the version string is already present.
	AppendVersion(ctx context.Context, name string, v Version) error

	// ReplaceVersion replaces the entry matching v.Version in place.
	// Fails with apperr.ErrNotFound when the schema or version is absent.
	ReplaceVersion(ctx context.Context, name string, v Version) error

	// Delete removes the schema for name. Returns apperr.ErrNotFound when
	// no record exists.
	Delete(ctx context.Context, name string) error
}
