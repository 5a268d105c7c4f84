package generator

import (
	"fmt"

	"github.com/org-structure-seeder/internal/domain"
)

// RelationshipBinder связывает потомка с уже сохранённым родителем.
// Генератор вызывает BeforeInsert для каждого черновика и AfterInsert для
// каждой сохранённой пары; что из этого делает работу, решает стратегия.
type RelationshipBinder interface {
	Mode() domain.Mode
	BeforeInsert(parentID domain.ID, child domain.Entity) domain.Entity
	AfterInsert(kind domain.EdgeKind, parentID, childID domain.ID) (domain.Edge, bool)
}

// NewBinder возвращает стратегию для режима
func NewBinder(mode domain.Mode) (RelationshipBinder, error) {
	switch mode {
	case domain.ModeReference, "":
		return ReferenceBinder{}, nil
	case domain.ModeEdge:
		return EdgeBinder{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMode, mode)
	}
}

// ReferenceBinder записывает идентификатор родителя в поле потомка до вставки
type ReferenceBinder struct{}

// Bind заполняет внешний ключ черновика
func (ReferenceBinder) Bind(parentID domain.ID, child domain.Entity) domain.Entity {
	child.SetParentID(parentID)
	return child
}

func (ReferenceBinder) Mode() domain.Mode { return domain.ModeReference }

func (b ReferenceBinder) BeforeInsert(parentID domain.ID, child domain.Entity) domain.Entity {
	return b.Bind(parentID, child)
}

func (ReferenceBinder) AfterInsert(domain.EdgeKind, domain.ID, domain.ID) (domain.Edge, bool) {
	return domain.Edge{}, false
}

// EdgeBinder строит отдельную запись связи после сохранения обоих концов
type EdgeBinder struct{}

// Bind создаёт связь parentID -> childID
func (EdgeBinder) Bind(kind domain.EdgeKind, parentID, childID domain.ID) domain.Edge {
	return domain.Edge{Kind: kind, FromID: parentID, ToID: childID}
}

func (EdgeBinder) Mode() domain.Mode { return domain.ModeEdge }

func (EdgeBinder) BeforeInsert(_ domain.ID, child domain.Entity) domain.Entity {
	return child
}

func (b EdgeBinder) AfterInsert(kind domain.EdgeKind, parentID, childID domain.ID) (domain.Edge, bool) {
	return b.Bind(kind, parentID, childID), true
}
