package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/org-structure-seeder/internal/domain"
)

// Sink - хранилище, принимающее сгенерированные данные пачками
type Sink interface {
	// BulkInsert записывает все записи одной пачкой и возвращает их
	// идентификаторы в порядке входа. При ошибке ни одна запись пачки
	// не считается сохранённой.
	BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error)
	// BulkInsertEdges записывает пачку связей одного типа
	BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error
}

func newID() domain.ID {
	return domain.ID(uuid.NewString())
}

// typedRecords приводит записи к конкретному типу модели для GORM/сериализации
func typedRecords[T any](kind domain.Kind, records []domain.Entity) ([]*T, error) {
	out := make([]*T, 0, len(records))
	for _, r := range records {
		v, ok := any(r).(*T)
		if !ok {
			return nil, fmt.Errorf("%w: %s got %T", domain.ErrUnexpectedValue, kind, r)
		}
		out = append(out, v)
	}
	return out, nil
}

// checkKinds убеждается, что каждая запись соответствует заявленному типу
func checkKinds(kind domain.Kind, records []domain.Entity) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	for _, r := range records {
		if r.Kind() != kind {
			return fmt.Errorf("%w: %s got %s", domain.ErrUnexpectedValue, kind, r.Kind())
		}
	}
	return nil
}
