package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/org-structure-seeder/internal/domain"
)

// redisSink хранит сущности как msgpack-значения, а связи - как множества
// смежности, по аналогии с коллекциями графовой БД:
//
//	<prefix><collection>:seq                 счётчик идентификаторов
//	<prefix><collection>:<id>                запись
//	<prefix><collection>                     множество всех id
//	<prefix><collection>:by_parent:<parent>  потомки родителя (режим ссылок)
//	<prefix><edge collection>:<from>         концы связей from -> to
//	<prefix><edge collection>:count          число связей
type redisSink struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisOption настраивает Redis-хранилище
type RedisOption func(*redisSink)

// WithKeyPrefix задаёт префикс ключей
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *redisSink) {
		s.keyPrefix = prefix
	}
}

// NewRedisSink создаёт Sink поверх Redis
func NewRedisSink(client redis.UniversalClient, options ...RedisOption) Sink {
	s := &redisSink{
		client:    client,
		keyPrefix: "seeder:",
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *redisSink) key(parts ...string) string {
	return s.keyPrefix + strings.Join(parts, ":")
}

func (s *redisSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	if err := checkKinds(kind, records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	collection := kind.Collection()

	// диапазон id резервируется целиком; при сбое EXEC он просто пропадает
	last, err := s.client.IncrBy(ctx, s.key(collection, "seq"), int64(len(records))).Result()
	if err != nil {
		return nil, fmt.Errorf("reserve %s ids: %w", collection, err)
	}
	first := last - int64(len(records)) + 1

	ids := make([]domain.ID, len(records))
	pipe := s.client.TxPipeline()
	for i, r := range records {
		id := strconv.FormatInt(first+int64(i), 10)
		ids[i] = domain.ID(id)
		r.SetID(ids[i])

		payload, err := msgpack.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", kind, id, err)
		}
		pipe.Set(ctx, s.key(collection, id), payload, 0)
		pipe.SAdd(ctx, s.key(collection), id)
		if parent := r.Parent(); parent != "" {
			pipe.SAdd(ctx, s.key(collection, "by_parent", string(parent)), id)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("write %s: %w", collection, err)
	}
	return ids, nil
}

func (s *redisSink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	collection := kind.Collection()
	pipe := s.client.TxPipeline()
	for _, e := range edges {
		pipe.SAdd(ctx, s.key(collection, string(e.FromID)), string(e.ToID))
	}
	pipe.IncrBy(ctx, s.key(collection, "count"), int64(len(edges)))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}
