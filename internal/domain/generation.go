package domain

import "time"

// GenerateConfig задаёт размер генерируемой иерархии
type GenerateConfig struct {
	CompanyCount       int `json:"companyCount" validate:"min=0"`
	BranchesPerCompany int `json:"branchesPerCompany" validate:"min=0"`
	DeptsPerBranch     int `json:"deptsPerBranch" validate:"min=0"`
	EmployeesPerDept   int `json:"employeesPerDept" validate:"min=0"`
}

// DefaultGenerateConfig возвращает значения по умолчанию: 100/5/8/100
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		CompanyCount:       100,
		BranchesPerCompany: 5,
		DeptsPerBranch:     8,
		EmployeesPerDept:   100,
	}
}

// Summary - итог одного запуска генерации.
// При ошибке содержит счётчики, накопленные до сбоя.
type Summary struct {
	RunID      string             `json:"runId"`
	Mode       Mode               `json:"mode"`
	Counts     map[Kind]int64     `json:"counts"`
	EdgeCounts map[EdgeKind]int64 `json:"edgeCounts,omitempty"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
	Elapsed    time.Duration      `json:"-"`
}

// Count возвращает число записанных сущностей данного типа
func (s *Summary) Count(kind Kind) int64 {
	return s.Counts[kind]
}

// Edges возвращает общее число записанных связей
func (s *Summary) Edges() int64 {
	var total int64
	for _, n := range s.EdgeCounts {
		total += n
	}
	return total
}

// ElapsedMs возвращает длительность запуска в миллисекундах
func (s *Summary) ElapsedMs() int64 {
	return s.Elapsed.Milliseconds()
}

// Progress - событие после сброса одного чанка
type Progress struct {
	// Kind - тип сущности или тип связи
	Kind    string
	Chunk   int
	Written int
	Total   int64
}
