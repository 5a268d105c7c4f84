package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/org-structure-seeder/internal/config"
	"github.com/org-structure-seeder/internal/domain"
)

// DynamoMaxChunk - максимум элементов в одном TransactWriteItems
const DynamoMaxChunk = 100

// ErrChunkTooLarge возвращается, если чанк не помещается в одну транзакцию
var ErrChunkTooLarge = errors.New("chunk exceeds store transaction limit")

// DynamoAPI - подмножество клиента DynamoDB, нужное хранилищу
type DynamoAPI interface {
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// DynamoConfig - параметры DynamoDB-хранилища
type DynamoConfig struct {
	// TablePrefix добавляется к имени коллекции: seeder_companies
	TablePrefix string
}

type dynamoSink struct {
	client DynamoAPI
	config DynamoConfig
}

// NewDynamoSink создаёт Sink поверх DynamoDB. Таблица на коллекцию,
// ключ партиции - строковый атрибут id. Чанк пишется одной транзакцией,
// поэтому в нём не больше DynamoMaxChunk записей.
func NewDynamoSink(client DynamoAPI, config DynamoConfig) Sink {
	return &dynamoSink{client: client, config: config}
}

// MaxChunkSize возвращает предел размера чанка для хранилища; 0 - без предела
func MaxChunkSize(store string) int {
	if store == config.StoreDynamoDB {
		return DynamoMaxChunk
	}
	return 0
}

func (s *dynamoSink) table(collection string) string {
	return s.config.TablePrefix + collection
}

func (s *dynamoSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	if err := checkKinds(kind, records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if len(records) > DynamoMaxChunk {
		return nil, fmt.Errorf("%w: %d > %d", ErrChunkTooLarge, len(records), DynamoMaxChunk)
	}

	table := s.table(kind.Collection())
	ids := make([]domain.ID, len(records))
	items := make([]types.TransactWriteItem, len(records))
	for i, r := range records {
		ids[i] = newID()
		r.SetID(ids[i])

		item, err := attributevalue.MarshalMap(r)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", kind, err)
		}
		items[i] = put(table, item)
	}

	if err := s.write(ctx, table, items); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *dynamoSink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	if len(edges) > DynamoMaxChunk {
		return fmt.Errorf("%w: %d > %d", ErrChunkTooLarge, len(edges), DynamoMaxChunk)
	}

	table := s.table(kind.Collection())
	items := make([]types.TransactWriteItem, len(edges))
	for i, e := range edges {
		e.ID = newID()
		e.Kind = kind
		item, err := attributevalue.MarshalMap(e)
		if err != nil {
			return fmt.Errorf("marshal %s edge: %w", kind, err)
		}
		items[i] = put(table, item)
	}

	return s.write(ctx, table, items)
}

// write отправляет чанк одной транзакцией: либо сохраняются все элементы, либо ни один.
// Токен делает повторы SDK идемпотентными.
func (s *dynamoSink) write(ctx context.Context, table string, items []types.TransactWriteItem) error {
	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(uuid.NewString()),
	})
	if err != nil {
		return fmt.Errorf("transact write %s: %w", table, err)
	}
	return nil
}

func put(table string, item map[string]types.AttributeValue) types.TransactWriteItem {
	return types.TransactWriteItem{Put: &types.Put{TableName: aws.String(table), Item: item}}
}
