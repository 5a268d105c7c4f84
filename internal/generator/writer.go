package generator

import (
	"context"
	"fmt"
	"sync"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/repository"
)

// DefaultChunkSize - размер пачки по умолчанию
const DefaultChunkSize = 1000

// ProgressFunc вызывается один раз после каждого успешно записанного чанка.
// При Workers > 1 вызовы идут из нескольких горутин одновременно, поэтому
// общее состояние внутри функции нужно защищать.
type ProgressFunc func(p domain.Progress)

// BuildFunc строит i-ю запись уровня непосредственно перед записью её чанка
type BuildFunc func(i int) (domain.Entity, error)

// ChunkedBulkWriter режет поток записей на чанки не больше chunkSize и
// пишет каждый чанк одним вызовом Sink. Записанные чанки не откатываются.
// Безопасен для конкурентного использования.
type ChunkedBulkWriter struct {
	sink      repository.Sink
	chunkSize int
	progress  ProgressFunc

	mu     sync.Mutex
	chunks map[string]int
	totals map[string]int64
}

// NewChunkedBulkWriter создаёт writer; chunkSize < 1 заменяется на DefaultChunkSize
func NewChunkedBulkWriter(sink repository.Sink, chunkSize int, progress ProgressFunc) *ChunkedBulkWriter {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkedBulkWriter{
		sink:      sink,
		chunkSize: chunkSize,
		progress:  progress,
		chunks:    make(map[string]int),
		totals:    make(map[string]int64),
	}
}

// ChunkSize возвращает действующий размер чанка
func (w *ChunkedBulkWriter) ChunkSize() int {
	return w.chunkSize
}

// WriteAll пишет готовую последовательность сущностей
func (w *ChunkedBulkWriter) WriteAll(ctx context.Context, kind domain.Kind, entities []domain.Entity) ([]domain.ID, error) {
	return w.Write(ctx, kind, len(entities), func(i int) (domain.Entity, error) {
		return entities[i], nil
	})
}

// Write пишет n сущностей, строя их по одному чанку за раз, так что в памяти
// одновременно находится не больше chunkSize черновиков. Возвращает
// идентификаторы в порядке i.
func (w *ChunkedBulkWriter) Write(ctx context.Context, kind domain.Kind, n int, build BuildFunc) ([]domain.ID, error) {
	ids := make([]domain.ID, 0, n)
	chunk := make([]domain.Entity, 0, min(n, w.chunkSize))

	for start := 0; start < n; start += w.chunkSize {
		end := min(start+w.chunkSize, n)

		chunk = chunk[:0]
		for i := start; i < end; i++ {
			e, err := build(i)
			if err != nil {
				return nil, fmt.Errorf("build %s #%d: %w", kind, i, err)
			}
			chunk = append(chunk, e)
		}

		index, err := w.begin(ctx, string(kind))
		if err != nil {
			return nil, err
		}

		got, err := w.sink.BulkInsert(ctx, kind, chunk)
		if err != nil {
			return nil, w.fail(ctx, string(kind), index, err)
		}
		if len(got) != len(chunk) {
			return nil, &domain.SinkError{
				Kind:  string(kind),
				Chunk: index,
				Err:   fmt.Errorf("%w: want %d, got %d", domain.ErrLengthMismatch, len(chunk), len(got)),
			}
		}

		ids = append(ids, got...)
		w.done(string(kind), index, len(got))
	}

	return ids, nil
}

// WriteEdges пишет связи одного типа чанками и возвращает число записанных связей
func (w *ChunkedBulkWriter) WriteEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) (int, error) {
	written := 0
	for start := 0; start < len(edges); start += w.chunkSize {
		chunk := edges[start:min(start+w.chunkSize, len(edges))]

		index, err := w.begin(ctx, string(kind))
		if err != nil {
			return written, err
		}

		if err := w.sink.BulkInsertEdges(ctx, kind, chunk); err != nil {
			return written, w.fail(ctx, string(kind), index, err)
		}

		written += len(chunk)
		w.done(string(kind), index, len(chunk))
	}
	return written, nil
}

// Total возвращает число записей данного типа, подтверждённых хранилищем
func (w *ChunkedBulkWriter) Total(kind string) int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.totals[kind]
}

// begin проверяет контекст и выдаёт номер следующего чанка (с 1)
func (w *ChunkedBulkWriter) begin(ctx context.Context, kind string) (int, error) {
	w.mu.Lock()
	w.chunks[kind]++
	index := w.chunks[kind]
	w.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return index, &domain.CancelledError{Kind: kind, Chunk: index, Err: err}
	}
	return index, nil
}

func (w *ChunkedBulkWriter) done(kind string, index, written int) {
	w.mu.Lock()
	w.totals[kind] += int64(written)
	total := w.totals[kind]
	w.mu.Unlock()

	if w.progress != nil {
		w.progress(domain.Progress{Kind: kind, Chunk: index, Written: written, Total: total})
	}
}

func (w *ChunkedBulkWriter) fail(ctx context.Context, kind string, index int, err error) error {
	// ошибка хранилища после отмены почти всегда её следствие
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &domain.CancelledError{Kind: kind, Chunk: index, Err: ctxErr}
	}
	return &domain.SinkError{Kind: kind, Chunk: index, Err: err}
}
