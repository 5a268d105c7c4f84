package generator

import "github.com/org-structure-seeder/internal/domain"

// Level описывает один уровень иерархии
type Level struct {
	Kind   domain.Kind
	Parent domain.Kind
	// Fanout - число сущностей уровня на одного родителя
	// (для корня - общее число)
	Fanout func(cfg domain.GenerateConfig) int
}

// EdgeKind возвращает тип связи с родительским уровнем
func (l Level) EdgeKind() domain.EdgeKind {
	if l.Parent == "" {
		return ""
	}
	return domain.NewEdgeKind(l.Parent, l.Kind)
}

// Hierarchy - четыре уровня в порядке генерации
var Hierarchy = []Level{
	{
		Kind:   domain.KindCompany,
		Fanout: func(cfg domain.GenerateConfig) int { return cfg.CompanyCount },
	},
	{
		Kind:   domain.KindBranch,
		Parent: domain.KindCompany,
		Fanout: func(cfg domain.GenerateConfig) int { return cfg.BranchesPerCompany },
	},
	{
		Kind:   domain.KindDepartment,
		Parent: domain.KindBranch,
		Fanout: func(cfg domain.GenerateConfig) int { return cfg.DeptsPerBranch },
	},
	{
		Kind:   domain.KindEmployee,
		Parent: domain.KindDepartment,
		Fanout: func(cfg domain.GenerateConfig) int { return cfg.EmployeesPerDept },
	},
}

// ExpectedCounts считает итоговое число сущностей и связей для конфигурации
func ExpectedCounts(levels []Level, cfg domain.GenerateConfig) (map[domain.Kind]int64, int64) {
	counts := make(map[domain.Kind]int64, len(levels))
	var edges int64
	population := int64(1)
	for _, l := range levels {
		population *= int64(l.Fanout(cfg))
		counts[l.Kind] = population
		if l.Parent != "" {
			edges += population
		}
	}
	return counts, edges
}
