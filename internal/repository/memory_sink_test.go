package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/org-structure-seeder/internal/config"
	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/repository"
)

func TestMemorySink_RetainsRecords(t *testing.T) {
	sink := repository.NewMemorySink(true)

	ids, err := sink.BulkInsert(context.Background(), domain.KindCompany, []domain.Entity{
		&domain.Company{Name: "Acme Inc"},
	})
	require.NoError(t, err)

	kind, ok := sink.KindOf(ids[0])
	assert.True(t, ok)
	assert.Equal(t, domain.KindCompany, kind)
	assert.Len(t, sink.Records(domain.KindCompany), 1)
	assert.Equal(t, int64(1), sink.Count("Company"))
	assert.Equal(t, 1, sink.Calls("Company"))
}

func TestMemorySink_CountsOnly(t *testing.T) {
	sink := repository.NewMemorySink(false)

	_, err := sink.BulkInsert(context.Background(), domain.KindCompany, []domain.Entity{
		&domain.Company{Name: "Acme Inc"},
		&domain.Company{Name: "Globex LLC"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), sink.Count("Company"))
	assert.Empty(t, sink.Records(domain.KindCompany))
}

func TestMemorySink_FailWhen(t *testing.T) {
	boom := errors.New("boom")
	sink := repository.NewMemorySink(true)
	sink.FailWhen = func(kind string, call int) error {
		if call == 1 {
			return boom
		}
		return nil
	}

	_, err := sink.BulkInsert(context.Background(), domain.KindCompany, []domain.Entity{&domain.Company{}})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, sink.Count("Company"))

	_, err = sink.BulkInsert(context.Background(), domain.KindCompany, []domain.Entity{&domain.Company{}})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), sink.Count("Company"))
}

func TestMemorySink_CancelledContext(t *testing.T) {
	sink := repository.NewMemorySink(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.BulkInsertEdges(ctx, "Company_Branch", []domain.Edge{{FromID: "a", ToID: "b"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sink.Calls("Company_Branch"))
}

func TestMemorySink_UnknownKind(t *testing.T) {
	sink := repository.NewMemorySink(false)

	_, err := sink.BulkInsert(context.Background(), "Team", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestOpen(t *testing.T) {
	cfg := &config.Config{Generator: config.GeneratorConfig{Store: config.StoreMemory}}
	sink, closer, err := repository.Open(context.Background(), cfg, false)
	require.NoError(t, err)
	assert.IsType(t, &repository.MemorySink{}, sink)
	assert.NoError(t, closer.Close())

	cfg.Generator.Store = "cassandra"
	_, _, err = repository.Open(context.Background(), cfg, false)
	assert.ErrorIs(t, err, domain.ErrUnknownStore)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", repository.Dialect(config.StoreSQLite))
	assert.Equal(t, "postgres", repository.Dialect(config.StorePostgres))
}
