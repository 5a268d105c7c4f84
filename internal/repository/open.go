package repository

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/org-structure-seeder/internal/config"
	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/migrations"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// Open создаёт хранилище, выбранное в cfg.Generator.Store.
// migrate применяет миграции для SQL-хранилищ перед возвратом.
func Open(ctx context.Context, cfg *config.Config, migrate bool) (Sink, io.Closer, error) {
	switch cfg.Generator.Store {
	case config.StorePostgres, config.StoreSQLite:
		db, err := ConnectDB(ctx, cfg.Generator.Store, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if migrate {
			if err := migrations.Up(sqlDB, Dialect(cfg.Generator.Store)); err != nil {
				sqlDB.Close()
				return nil, nil, err
			}
		}
		return NewGormSink(db), sqlDB, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return NewRedisSink(client, WithKeyPrefix(cfg.Redis.KeyPrefix)), client, nil

	case config.StoreDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoDB.Region))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDB.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDB.Endpoint)
			}
		})
		return NewDynamoSink(client, DynamoConfig{TablePrefix: cfg.DynamoDB.TablePrefix}), nopCloser, nil

	case config.StoreMemory:
		return NewMemorySink(false), nopCloser, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownStore, cfg.Generator.Store)
	}
}

// Dialect возвращает имя диалекта goose для SQL-хранилища
func Dialect(store string) string {
	if store == config.StoreSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// ConnectDB открывает PostgreSQL или SQLite, повторяя попытки раз в секунду,
// пока база не ответит на ping
func ConnectDB(ctx context.Context, store string, cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch store {
	case config.StoreSQLite:
		dialector = sqlite.Open(cfg.Path)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	attempts := max(1, cfg.ConnectAttempts)
	var err error
	for i := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second):
			}
		}

		var db *gorm.DB
		db, err = gorm.Open(dialector, &gorm.Config{
			Logger:                 gormlogger.Default.LogMode(gormlogger.Warn),
			SkipDefaultTransaction: true,
		})
		if err != nil {
			continue
		}
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			err = dbErr
			continue
		}
		if err = sqlDB.PingContext(ctx); err == nil {
			return db, nil
		}
		sqlDB.Close()
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, err)
}
