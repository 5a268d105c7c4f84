package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/org-structure-seeder/internal/domain"
)

// gormBatchSize ограничивает число строк в одном INSERT внутри чанка,
// чтобы не упереться в лимит параметров драйвера
const gormBatchSize = 500

type gormSink struct {
	db *gorm.DB
}

// NewGormSink создаёт Sink поверх PostgreSQL или SQLite.
// Каждый чанк пишется в отдельной транзакции: либо весь, либо ничего.
func NewGormSink(db *gorm.DB) Sink {
	return &gormSink{db: db}
}

func (s *gormSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	if err := checkKinds(kind, records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]domain.ID, len(records))
	for i, r := range records {
		ids[i] = newID()
		r.SetID(ids[i])
	}

	var err error
	switch kind {
	case domain.KindCompany:
		err = createTyped[domain.Company](ctx, s.db, kind, records)
	case domain.KindBranch:
		err = createTyped[domain.Branch](ctx, s.db, kind, records)
	case domain.KindDepartment:
		err = createTyped[domain.Department](ctx, s.db, kind, records)
	case domain.KindEmployee:
		err = createTyped[domain.Employee](ctx, s.db, kind, records)
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *gormSink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error {
	if len(edges) == 0 {
		return nil
	}

	rows := make([]domain.Edge, len(edges))
	for i, e := range edges {
		e.ID = newID()
		e.Kind = kind
		rows[i] = e
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&rows, gormBatchSize).Error; err != nil {
			return fmt.Errorf("insert %s edges: %w", kind, err)
		}
		return nil
	})
}

func createTyped[T any](ctx context.Context, db *gorm.DB, kind domain.Kind, records []domain.Entity) error {
	rows, err := typedRecords[T](kind, records)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&rows, gormBatchSize).Error; err != nil {
			return fmt.Errorf("insert %s: %w", kind.Collection(), err)
		}
		return nil
	})
}
