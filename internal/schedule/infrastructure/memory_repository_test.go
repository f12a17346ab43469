package infrastructure_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateusmacedo/go-schedule/internal/schedule/domain"
	"github.com/mateusmacedo/go-schedule/internal/schedule/infrastructure"
	pkgApp "github.com/mateusmacedo/go-schedule/pkg/application"
)

func TestInMemoryStore(t *testing.T) {
	runRepositoryContract(t, func(*testing.T) domain.UnitOfWork {
		return infrastructure.NewInMemoryStore(pkgApp.NopLogger{})
	})
}

func TestInMemoryStoreCanceledContext(t *testing.T) {
	store := infrastructure.NewInMemoryStore(pkgApp.NopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := store.Do(ctx, func(context.Context, domain.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestInMemoryStoreSerializesUnitsOfWork(t *testing.T) {
	store := infrastructure.NewInMemoryStore(pkgApp.NopLogger{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
				_, err := repos.Locations.Save(ctx, domain.Location{Title: "Tavira"})
				return err
			})
		}()
	}
	wg.Wait()

	err := store.Do(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		all, err := repos.Locations.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 50)
		seen := make(map[int64]bool, len(all))
		for _, e := range all {
			assert.False(t, seen[e.ID])
			seen[e.ID] = true
		}
		return nil
	})
	require.NoError(t, err)
}
