package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/repository"
)

// Middleware оборачивает Sink дополнительным поведением
type Middleware func(repository.Sink) repository.Sink

// Chain применяет middleware так, что первый в списке оказывается внешним
func Chain(sink repository.Sink, mws ...Middleware) repository.Sink {
	for i := len(mws) - 1; i >= 0; i-- {
		sink = mws[i](sink)
	}
	return sink
}

type loggingSink struct {
	next   repository.Sink
	logger *slog.Logger
}

// Logger middleware для логирования пачек записи
func Logger(logger *slog.Logger) Middleware {
	return func(next repository.Sink) repository.Sink {
		return &loggingSink{next: next, logger: logger}
	}
}

func (s *loggingSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	start := time.Now()
	ids, err := s.next.BulkInsert(ctx, kind, records)
	s.log(ctx, string(kind), len(records), start, err)
	return ids, err
}

func (s *loggingSink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) error {
	start := time.Now()
	err := s.next.BulkInsertEdges(ctx, kind, edges)
	s.log(ctx, string(kind), len(edges), start, err)
	return err
}

func (s *loggingSink) log(ctx context.Context, kind string, records int, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("kind", kind),
		slog.Int("records", records),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
		s.logger.LogAttrs(ctx, slog.LevelWarn, "bulk insert failed", attrs...)
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "bulk insert", attrs...)
}

type recoveringSink struct {
	next   repository.Sink
	logger *slog.Logger
}

// Recoverer middleware превращает панику хранилища в ошибку
func Recoverer(logger *slog.Logger) Middleware {
	return func(next repository.Sink) repository.Sink {
		return &recoveringSink{next: next, logger: logger}
	}
}

func (s *recoveringSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) (ids []domain.ID, err error) {
	defer s.capture(string(kind), &err)
	return s.next.BulkInsert(ctx, kind, records)
}

func (s *recoveringSink) BulkInsertEdges(ctx context.Context, kind domain.EdgeKind, edges []domain.Edge) (err error) {
	defer s.capture(string(kind), &err)
	return s.next.BulkInsertEdges(ctx, kind, edges)
}

func (s *recoveringSink) capture(kind string, err *error) {
	if r := recover(); r != nil {
		s.logger.Error("panic recovered",
			slog.Any("error", r),
			slog.String("kind", kind),
		)
		*err = fmt.Errorf("sink panic: %v", r)
	}
}
