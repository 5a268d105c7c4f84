package repository

import (
	"context"
	"sync"

	"github.com/org-structure-seeder/internal/domain"
)

// MemorySink хранит данные в памяти процесса. Используется для пробных
// запусков (--store memory) и в тестах.
type MemorySink struct {
	// FailWhen, если задан, вызывается перед каждой пачкой с типом и
	// порядковым номером вызова для этого типа (с 1); ненулевая ошибка
	// прерывает запись пачки.
	FailWhen func(kind string, call int) error

	retain bool

	mu      sync.Mutex
	calls   map[string]int
	counts  map[string]int64
	records map[domain.Kind][]domain.Entity
	ids     map[domain.ID]domain.Kind
	edges   map[domain.EdgeKind][]domain.Edge
}

// NewMemorySink создаёт хранилище. retain = false сохраняет только счётчики.
func NewMemorySink(retain bool) *MemorySink {
	return &MemorySink{
		retain:  retain,
		calls:   make(map[string]int),
		counts:  make(map[string]int64),
		records: make(map[domain.Kind][]domain.Entity),
		ids:     make(map[domain.ID]domain.Kind),
		edges:   make(map[domain.EdgeKind][]domain.Edge),
	}
}

func (m *MemorySink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	if err := checkKinds(kind, records); err != nil {
		return nil, err
	}
	if err := m.before(ctx, string(kind)); err != nil {
		return nil, err
	}

	ids := make([]domain.ID, len(records))
	for i, r := range records {
		ids[i] = newID()
		r.SetID(ids[i])
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[string(kind)] += int64(len(records))
	if m.retain {
		m.records[kind] = append(m.records[kind], records...)
		for _, id := range ids {
			m.ids[id] = kind
		}
	}
	return ids, nil
}

func (m *MemorySink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error {
	if err := m.before(ctx, string(kind)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[string(kind)] += int64(len(edges))
	if m.retain {
		for _, e := range edges {
			e.ID = newID()
			e.Kind = kind
			m.edges[kind] = append(m.edges[kind], e)
		}
	}
	return nil
}

func (m *MemorySink) before(ctx context.Context, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.calls[kind]++
	call := m.calls[kind]
	m.mu.Unlock()

	if m.FailWhen != nil {
		return m.FailWhen(kind, call)
	}
	return nil
}

// Count возвращает число записей сущностей или связей данного типа
func (m *MemorySink) Count(kind string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[kind]
}

// Calls возвращает число вызовов записи для типа
func (m *MemorySink) Calls(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

// Records возвращает копию сохранённых сущностей типа
func (m *MemorySink) Records(kind domain.Kind) []domain.Entity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Entity(nil), m.records[kind]...)
}

// Edges возвращает копию сохранённых связей типа
func (m *MemorySink) Edges(kind domain.EdgeKind) []domain.Edge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Edge(nil), m.edges[kind]...)
}

// KindOf сообщает тип сохранённой записи по идентификатору
func (m *MemorySink) KindOf(id domain.ID) (domain.Kind, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kind, ok := m.ids[id]
	return kind, ok
}
