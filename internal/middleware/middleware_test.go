package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/middleware"
	"github.com/org-structure-seeder/internal/repository"
)

type panickingSink struct{}

func (panickingSink) BulkInsert(context.Context, domain.Kind, []domain.Entity) ([]domain.ID, error) {
	panic("driver exploded")
}

func (panickingSink) BulkInsertEdges(context.Context, domain.EdgeKind, []domain.Edge) error {
	panic("driver exploded")
}

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogger_PassesThrough(t *testing.T) {
	var buf bytes.Buffer
	inner := repository.NewMemorySink(false)
	sink := middleware.Chain(inner, middleware.Logger(newLogger(&buf)))

	ids, err := sink.BulkInsert(context.Background(), domain.KindCompany, []domain.Entity{&domain.Company{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || inner.Count("Company") != 1 {
		t.Errorf("expected 1 record written, got %d", inner.Count("Company"))
	}
	if !strings.Contains(buf.String(), "bulk insert") || !strings.Contains(buf.String(), "kind=Company") {
		t.Errorf("expected debug log line, got %q", buf.String())
	}
}

func TestLogger_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	inner := repository.NewMemorySink(false)
	inner.FailWhen = func(string, int) error { return errors.New("timeout") }
	sink := middleware.Chain(inner, middleware.Logger(newLogger(&buf)))

	err := sink.BulkInsertEdges(context.Background(), "Company_Branch", []domain.Edge{{FromID: "a", ToID: "b"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "timeout") {
		t.Errorf("expected warning with error, got %q", buf.String())
	}
}

func TestRecoverer_TurnsPanicIntoError(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf)
	sink := middleware.Chain(panickingSink{}, middleware.Recoverer(logger), middleware.Logger(logger))

	_, err := sink.BulkInsert(context.Background(), domain.KindBranch, nil)
	if err == nil || !strings.Contains(err.Error(), "driver exploded") {
		t.Fatalf("expected panic as error, got %v", err)
	}

	err = sink.BulkInsertEdges(context.Background(), "Company_Branch", nil)
	if err == nil {
		t.Fatal("expected panic as error for edges")
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) middleware.Middleware {
		return func(next repository.Sink) repository.Sink {
			order = append(order, name)
			return next
		}
	}

	middleware.Chain(repository.NewMemorySink(false), mark("outer"), mark("inner"))

	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Errorf("expected inner to wrap first, got %v", order)
	}
}
