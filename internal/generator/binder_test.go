package generator_test

import (
	"errors"
	"testing"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/generator"
)

func TestNewBinder(t *testing.T) {
	tests := []struct {
		mode domain.Mode
		want domain.Mode
		err  error
	}{
		{"", domain.ModeReference, nil},
		{domain.ModeReference, domain.ModeReference, nil},
		{domain.ModeEdge, domain.ModeEdge, nil},
		{"graph", "", domain.ErrUnknownMode},
	}

	for _, tt := range tests {
		b, err := generator.NewBinder(tt.mode)
		if tt.err != nil {
			if !errors.Is(err, tt.err) {
				t.Errorf("mode %q: expected %v, got %v", tt.mode, tt.err, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("mode %q: unexpected error: %v", tt.mode, err)
		}
		if b.Mode() != tt.want {
			t.Errorf("mode %q: expected %q, got %q", tt.mode, tt.want, b.Mode())
		}
	}
}

func TestReferenceBinder(t *testing.T) {
	b := generator.ReferenceBinder{}
	dept := &domain.Department{Name: "HR"}

	out := b.BeforeInsert("b-1", dept)
	if out.Parent() != "b-1" {
		t.Errorf("expected parent b-1, got %q", out.Parent())
	}
	if _, ok := b.AfterInsert("Branch_Department", "b-1", "d-1"); ok {
		t.Error("reference mode must not produce edges")
	}
}

func TestEdgeBinder(t *testing.T) {
	b := generator.EdgeBinder{}
	emp := &domain.Employee{FirstName: "Ann"}

	out := b.BeforeInsert("d-1", emp)
	if out.Parent() != "" {
		t.Errorf("edge mode must leave the parent unset, got %q", out.Parent())
	}

	edge, ok := b.AfterInsert("Department_Employee", "d-1", "e-1")
	if !ok {
		t.Fatal("expected an edge")
	}
	if edge.Kind != "Department_Employee" || edge.FromID != "d-1" || edge.ToID != "e-1" {
		t.Errorf("unexpected edge: %+v", edge)
	}
}
