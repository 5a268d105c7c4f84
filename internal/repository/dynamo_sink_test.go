package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/org-structure-seeder/internal/config"
	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/repository"
)

// fakeDynamo применяет транзакцию целиком или отклоняет её целиком
type fakeDynamo struct {
	mu sync.Mutex
	// failOn - номер вызова (с 1), который завершится ошибкой
	failOn int
	err    error
	calls  int
	tokens []string
	items  map[string][]map[string]types.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: make(map[string][]map[string]types.AttributeValue)}
}

func (f *fakeDynamo) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.calls == f.failOn {
		return nil, f.err
	}
	f.tokens = append(f.tokens, aws.ToString(in.ClientRequestToken))
	for _, it := range in.TransactItems {
		table := aws.ToString(it.Put.TableName)
		f.items[table] = append(f.items[table], it.Put.Item)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (f *fakeDynamo) persisted(table string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[table])
}

func employees(n int) []domain.Entity {
	out := make([]domain.Entity, n)
	for i := range out {
		out[i] = &domain.Employee{FirstName: "Ann", LastName: "Lee", Email: "ann@company.com"}
	}
	return out
}

func TestDynamoSink_WritesChunkInOneTransaction(t *testing.T) {
	client := newFakeDynamo()
	sink := repository.NewDynamoSink(client, repository.DynamoConfig{TablePrefix: "seed_"})

	ids, err := sink.BulkInsert(context.Background(), domain.KindEmployee, employees(30))
	require.NoError(t, err)
	assert.Len(t, ids, 30)
	assert.Equal(t, 1, client.calls)
	require.Len(t, client.tokens, 1)
	assert.NotEmpty(t, client.tokens[0])

	items := client.items["seed_employees"]
	require.Len(t, items, 30)
	id, ok := items[0]["id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, string(ids[0]), id.Value)
	assert.NotContains(t, items[0], "departmentId")
}

func TestDynamoSink_FailedChunkPersistsNothing(t *testing.T) {
	client := newFakeDynamo()
	client.failOn = 2
	client.err = errors.New("throttled")
	sink := repository.NewDynamoSink(client, repository.DynamoConfig{TablePrefix: "t_"})
	ctx := context.Background()

	_, err := sink.BulkInsert(ctx, domain.KindEmployee, employees(30))
	require.NoError(t, err)

	ids, err := sink.BulkInsert(ctx, domain.KindEmployee, employees(30))
	assert.ErrorIs(t, err, client.err)
	assert.Empty(t, ids)
	// первый чанк сохранён целиком, второй не оставил ни одной записи
	assert.Equal(t, 30, client.persisted("t_employees"))
}

func TestDynamoSink_RejectsOversizedChunk(t *testing.T) {
	client := newFakeDynamo()
	sink := repository.NewDynamoSink(client, repository.DynamoConfig{})

	_, err := sink.BulkInsert(context.Background(), domain.KindEmployee, employees(repository.DynamoMaxChunk+1))
	assert.ErrorIs(t, err, repository.ErrChunkTooLarge)

	edges := make([]domain.Edge, repository.DynamoMaxChunk+1)
	err = sink.BulkInsertEdges(context.Background(), "Department_Employee", edges)
	assert.ErrorIs(t, err, repository.ErrChunkTooLarge)

	assert.Zero(t, client.calls)
}

func TestDynamoSink_BulkInsertEdges(t *testing.T) {
	client := newFakeDynamo()
	sink := repository.NewDynamoSink(client, repository.DynamoConfig{})
	kind := domain.NewEdgeKind(domain.KindBranch, domain.KindDepartment)

	err := sink.BulkInsertEdges(context.Background(), kind, []domain.Edge{{FromID: "b1", ToID: "d1"}})
	require.NoError(t, err)

	items := client.items["branches_departments"]
	require.Len(t, items, 1)
	k, ok := items[0]["kind"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "Branch_Department", k.Value)
}

func TestMaxChunkSize(t *testing.T) {
	assert.Equal(t, repository.DynamoMaxChunk, repository.MaxChunkSize(config.StoreDynamoDB))
	assert.Zero(t, repository.MaxChunkSize(config.StorePostgres))
	assert.Zero(t, repository.MaxChunkSize(config.StoreRedis))
}
