package schema

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lekton/lekton/internal/apperr"
)

func TestLatestStable(t *testing.T) {
	s := &Schema{
		Name: "payment-api",
		Type: TypeOpenAPI,
		Versions: []Version{
			{Version: "2.0.0", Status: StatusBeta},
			{Version: "1.0.0", Status: StatusStable},
			{Version: "1.2.0", Status: StatusStable},
			{Version: "1.10.0", Status: StatusStable},
		},
	}
	v, ok := LatestStable(s)
	require.True(t, ok)
	// semver order, not lexical: 1.10.0 > 1.2.0
	require.Equal(t, "1.10.0", v.Version)
}

func TestLatestStableAbsent(t *testing.T) {
	s := &Schema{
		Name:     "events-api",
		Type:     TypeAsyncAPI,
		Versions: []Version{{Version: "0.1.0", Status: StatusBeta}},
	}
	_, ok := LatestStable(s)
	require.False(t, ok)

	v, ok := Latest(s)
	require.True(t, ok)
	require.Equal(t, "0.1.0", v.Version)
}

func TestUpsertVersion(t *testing.T) {
	s := &Schema{Name: "a", Type: TypeJSONSchema}

	replaced := UpsertVersion(s, Version{Version: "1.0.0", Status: StatusStable, ContentKey: "k1"})
	require.False(t, replaced)
	require.Len(t, s.Versions, 1)

	replaced = UpsertVersion(s, Version{Version: "1.0.0", Status: StatusDeprecated, ContentKey: "k2"})
	require.True(t, replaced)
	require.Len(t, s.Versions, 1)
	require.Equal(t, StatusDeprecated, s.Versions[0].Status)
	require.Equal(t, "k2", s.Versions[0].ContentKey)
}

func TestIsValidVersion(t *testing.T) {
	require.True(t, IsValidVersion("1.0.0"))
	require.True(t, IsValidVersion("0.1.0-beta.1"))
	require.False(t, IsValidVersion("not-a-version"))
	require.False(t, IsValidVersion(""))
}

func TestMemoryRepoAppendVersion(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	err := r.AppendVersion(ctx, "missing", Version{Version: "1.0.0"})
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, r.Upsert(ctx, &Schema{
		Name:     "payment-api",
		Type:     TypeOpenAPI,
		Versions: []Version{{Version: "1.0.0", Status: StatusStable}},
	}))

	require.NoError(t, r.AppendVersion(ctx, "payment-api", Version{Version: "2.0.0", Status: StatusBeta}))

	err = r.AppendVersion(ctx, "payment-api", Version{Version: "2.0.0", Status: StatusStable})
	require.True(t, errors.Is(err, apperr.ErrValidation))

	got, err := r.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Len(t, got.Versions, 2)
}

func TestMemoryRepoEnsure(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	require.NoError(t, r.Ensure(ctx, "payment-api", TypeOpenAPI))
	got, err := r.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Equal(t, TypeOpenAPI, got.Type)
	require.Empty(t, got.Versions)

	// re-ensure refreshes the type and keeps the version history
	require.NoError(t, r.AppendVersion(ctx, "payment-api", Version{Version: "1.0.0", Status: StatusStable}))
	require.NoError(t, r.Ensure(ctx, "payment-api", TypeJSONSchema))
	got, err = r.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Equal(t, TypeJSONSchema, got.Type)
	require.Len(t, got.Versions, 1)
}

func TestMemoryRepoReplaceVersion(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	err := r.ReplaceVersion(ctx, "missing", Version{Version: "1.0.0"})
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, r.Ensure(ctx, "payment-api", TypeOpenAPI))
	require.NoError(t, r.AppendVersion(ctx, "payment-api", Version{Version: "1.0.0", Status: StatusBeta, ContentKey: "k1"}))

	err = r.ReplaceVersion(ctx, "payment-api", Version{Version: "9.9.9"})
	require.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, r.ReplaceVersion(ctx, "payment-api", Version{Version: "1.0.0", Status: StatusStable, ContentKey: "k2"}))
	got, err := r.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Len(t, got.Versions, 1)
	require.Equal(t, StatusStable, got.Versions[0].Status)
	require.Equal(t, "k2", got.Versions[0].ContentKey)
}

func TestMemoryRepoConcurrentAppendsOneEntry(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, r.Ensure(ctx, "payment-api", TypeOpenAPI))

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- r.AppendVersion(ctx, "payment-api", Version{Version: "2.0.0", Status: StatusBeta})
		}()
	}
	wg.Wait()
	close(errs)

	// every racer but one must see the duplicate rejection
	for err := range errs {
		if err != nil {
			require.True(t, errors.Is(err, apperr.ErrValidation))
		}
	}

	got, err := r.FindByName(ctx, "payment-api")
	require.NoError(t, err)
	require.Len(t, got.Versions, 1)
}

func TestMemoryRepoListSorted(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, r.Upsert(ctx, &Schema{Name: "zeta", Type: TypeOpenAPI}))
	require.NoError(t, r.Upsert(ctx, &Schema{Name: "alpha", Type: TypeOpenAPI}))

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "alpha", list[0].Name)
	require.Equal(t, "zeta", list[1].Name)
}
