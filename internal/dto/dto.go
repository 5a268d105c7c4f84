package dto

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/org-structure-seeder/internal/domain"
)

var validate = validator.New()

// GenerateRequest - запрос на генерацию; незаданные счётчики берутся из умолчаний
type GenerateRequest struct {
	CompanyCount       *int   `json:"companyCount" validate:"omitempty,min=0"`
	BranchesPerCompany *int   `json:"branchesPerCompany" validate:"omitempty,min=0"`
	DeptsPerBranch     *int   `json:"deptsPerBranch" validate:"omitempty,min=0"`
	EmployeesPerDept   *int   `json:"employeesPerDept" validate:"omitempty,min=0"`
	Mode               string `json:"mode" validate:"omitempty,oneof=reference edge"`
	ChunkSize          int    `json:"chunkSize" validate:"omitempty,min=1"`
	Workers            int    `json:"workers" validate:"omitempty,min=1,max=256"`
}

// Validate проверяет запрос; нарушения возвращаются как *domain.ConfigError
func (r *GenerateRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ToConfigError(err)
	}
	return nil
}

// ToConfig подставляет умолчания вместо незаданных счётчиков
func (r *GenerateRequest) ToConfig(defaults domain.GenerateConfig) domain.GenerateConfig {
	cfg := defaults
	if r.CompanyCount != nil {
		cfg.CompanyCount = *r.CompanyCount
	}
	if r.BranchesPerCompany != nil {
		cfg.BranchesPerCompany = *r.BranchesPerCompany
	}
	if r.DeptsPerBranch != nil {
		cfg.DeptsPerBranch = *r.DeptsPerBranch
	}
	if r.EmployeesPerDept != nil {
		cfg.EmployeesPerDept = *r.EmployeesPerDept
	}
	return cfg
}

// ToConfigError превращает первую ошибку validator в *domain.ConfigError
func ToConfigError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ConfigError{
			Field:  fe.Field(),
			Value:  fe.Value(),
			Reason: reason(fe),
		}
	}
	return &domain.ConfigError{Field: "config", Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// SummaryResponse - итог генерации в формате исходного API
type SummaryResponse struct {
	RunID                string           `json:"runId"`
	Mode                 string           `json:"mode"`
	CompaniesGenerated   int64            `json:"companiesGenerated"`
	BranchesGenerated    int64            `json:"branchesGenerated"`
	DepartmentsGenerated int64            `json:"departmentsGenerated"`
	EmployeesGenerated   int64            `json:"employeesGenerated"`
	EdgesGenerated       *int64           `json:"edgesGenerated,omitempty"`
	EdgeCounts           map[string]int64 `json:"edgeCounts,omitempty"`
	TimeMs               int64            `json:"timeMs"`
}

// ErrorResponse - ответ с ошибкой и частичными счётчиками
type ErrorResponse struct {
	Error   string           `json:"error"`
	Partial *SummaryResponse `json:"partial,omitempty"`
}

// NewSummaryResponse строит ответ из итогов запуска
func NewSummaryResponse(s *domain.Summary) SummaryResponse {
	resp := SummaryResponse{
		RunID:                s.RunID,
		Mode:                 string(s.Mode),
		CompaniesGenerated:   s.Count(domain.KindCompany),
		BranchesGenerated:    s.Count(domain.KindBranch),
		DepartmentsGenerated: s.Count(domain.KindDepartment),
		EmployeesGenerated:   s.Count(domain.KindEmployee),
		TimeMs:               s.ElapsedMs(),
	}
	if s.Mode == domain.ModeEdge {
		edges := s.Edges()
		resp.EdgesGenerated = &edges
		resp.EdgeCounts = make(map[string]int64, len(s.EdgeCounts))
		for k, n := range s.EdgeCounts {
			resp.EdgeCounts[string(k)] = n
		}
	}
	return resp
}
