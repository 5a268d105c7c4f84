package generator_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/generator"
	"github.com/org-structure-seeder/internal/repository"
)

func companies(n int) []domain.Entity {
	out := make([]domain.Entity, n)
	for i := range out {
		out[i] = &domain.Company{Name: fmt.Sprintf("Company %d", i)}
	}
	return out
}

func TestChunkedBulkWriter_SplitsIntoChunks(t *testing.T) {
	sink := repository.NewMemorySink(true)
	var events []domain.Progress
	w := generator.NewChunkedBulkWriter(sink, 4, func(p domain.Progress) {
		events = append(events, p)
	})

	ids, err := w.WriteAll(context.Background(), domain.KindCompany, companies(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 10 {
		t.Fatalf("expected 10 ids, got %d", len(ids))
	}
	if sink.Calls("Company") != 3 {
		t.Errorf("expected 3 bulk inserts, got %d", sink.Calls("Company"))
	}
	if w.Total("Company") != 10 {
		t.Errorf("expected total 10, got %d", w.Total("Company"))
	}

	written := []int{4, 4, 2}
	if len(events) != len(written) {
		t.Fatalf("expected %d progress events, got %d", len(written), len(events))
	}
	var total int64
	for i, e := range events {
		total += int64(written[i])
		if e.Chunk != i+1 || e.Written != written[i] || e.Total != total {
			t.Errorf("event %d: unexpected %+v", i, e)
		}
	}
}

func TestChunkedBulkWriter_PreservesOrder(t *testing.T) {
	sink := repository.NewMemorySink(true)
	w := generator.NewChunkedBulkWriter(sink, 3, nil)
	input := companies(7)

	ids, err := w.WriteAll(context.Background(), domain.KindCompany, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, id := range ids {
		if got := input[i].(*domain.Company).ID; got != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got)
		}
	}
}

func TestChunkedBulkWriter_Empty(t *testing.T) {
	sink := repository.NewMemorySink(false)
	w := generator.NewChunkedBulkWriter(sink, 3, nil)

	ids, err := w.WriteAll(context.Background(), domain.KindCompany, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 || sink.Calls("Company") != 0 {
		t.Errorf("expected no writes, got %d ids and %d calls", len(ids), sink.Calls("Company"))
	}
}

func TestChunkedBulkWriter_DefaultChunkSize(t *testing.T) {
	w := generator.NewChunkedBulkWriter(repository.NewMemorySink(false), 0, nil)
	if w.ChunkSize() != generator.DefaultChunkSize {
		t.Errorf("expected %d, got %d", generator.DefaultChunkSize, w.ChunkSize())
	}
}

func TestChunkedBulkWriter_SinkError(t *testing.T) {
	boom := errors.New("disk full")
	sink := repository.NewMemorySink(false)
	sink.FailWhen = func(kind string, call int) error {
		if call == 2 {
			return boom
		}
		return nil
	}
	w := generator.NewChunkedBulkWriter(sink, 2, nil)

	_, err := w.WriteAll(context.Background(), domain.KindCompany, companies(6))

	var sinkErr *domain.SinkError
	if !errors.As(err, &sinkErr) {
		t.Fatalf("expected SinkError, got %v", err)
	}
	if sinkErr.Kind != "Company" || sinkErr.Chunk != 2 {
		t.Errorf("expected Company chunk 2, got %s chunk %d", sinkErr.Kind, sinkErr.Chunk)
	}
	if !errors.Is(err, boom) || !errors.Is(err, domain.ErrSinkFailure) {
		t.Errorf("expected error chain to hold cause and sentinel, got %v", err)
	}
	if w.Total("Company") != 2 {
		t.Errorf("expected 2 committed, got %d", w.Total("Company"))
	}
	if sink.Calls("Company") != 2 {
		t.Errorf("expected writing to stop after failure, got %d calls", sink.Calls("Company"))
	}
}

func TestChunkedBulkWriter_Cancelled(t *testing.T) {
	sink := repository.NewMemorySink(false)
	w := generator.NewChunkedBulkWriter(sink, 2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.WriteAll(ctx, domain.KindCompany, companies(4))

	var cancelled *domain.CancelledError
	if !errors.As(err, &cancelled) {
		t.Fatalf("expected CancelledError, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
	if sink.Calls("Company") != 0 {
		t.Errorf("expected no writes, got %d", sink.Calls("Company"))
	}
}

func TestChunkedBulkWriter_BuildError(t *testing.T) {
	w := generator.NewChunkedBulkWriter(repository.NewMemorySink(false), 2, nil)

	_, err := w.Write(context.Background(), domain.KindCompany, 3, func(i int) (domain.Entity, error) {
		return nil, domain.ErrUnknownKind
	})
	if !errors.Is(err, domain.ErrUnknownKind) {
		t.Errorf("expected build error, got %v", err)
	}
}

// shortSink возвращает на один идентификатор меньше
type shortSink struct {
	repository.Sink
}

func (s shortSink) BulkInsert(ctx context.Context, kind domain.Kind, records []domain.Entity) ([]domain.ID, error) {
	ids, err := s.Sink.BulkInsert(ctx, kind, records)
	if len(ids) > 0 {
		ids = ids[1:]
	}
	return ids, err
}

func TestChunkedBulkWriter_LengthMismatch(t *testing.T) {
	w := generator.NewChunkedBulkWriter(shortSink{repository.NewMemorySink(false)}, 5, nil)

	_, err := w.WriteAll(context.Background(), domain.KindCompany, companies(3))

	var sinkErr *domain.SinkError
	if !errors.As(err, &sinkErr) || !errors.Is(err, domain.ErrLengthMismatch) {
		t.Fatalf("expected SinkError with ErrLengthMismatch, got %v", err)
	}
	if sinkErr.Chunk != 1 {
		t.Errorf("expected chunk 1, got %d", sinkErr.Chunk)
	}
}

func TestChunkedBulkWriter_WriteEdges(t *testing.T) {
	sink := repository.NewMemorySink(true)
	w := generator.NewChunkedBulkWriter(sink, 2, nil)
	kind := domain.NewEdgeKind(domain.KindCompany, domain.KindBranch)
	edges := []domain.Edge{
		{FromID: "c1", ToID: "b1"},
		{FromID: "c1", ToID: "b2"},
		{FromID: "c2", ToID: "b3"},
	}

	n, err := w.WriteEdges(context.Background(), kind, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || w.Total(string(kind)) != 3 {
		t.Errorf("expected 3 edges, got %d (total %d)", n, w.Total(string(kind)))
	}
	if sink.Calls(string(kind)) != 2 {
		t.Errorf("expected 2 chunks, got %d", sink.Calls(string(kind)))
	}
	stored := sink.Edges(kind)
	if len(stored) != 3 || stored[2].ToID != "b3" || stored[2].Kind != kind {
		t.Errorf("unexpected stored edges: %+v", stored)
	}
}
