package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/dto"
	"github.com/org-structure-seeder/internal/generator"
	"github.com/org-structure-seeder/internal/middleware"
	"github.com/org-structure-seeder/internal/repository"
	"github.com/org-structure-seeder/internal/service"
)

var (
	genMigrate  bool
	genJSON     bool
	genProgress bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the hierarchy and bulk-load it into the configured store",
	Example: `  seeder generate --store sqlite --companies 10 --branches 2 --departments 3 --employees 20 --migrate
  seeder generate --mode edge --store redis --workers 4`,
	RunE: runGenerate,
}

func init() {
	defaults := domain.DefaultGenerateConfig()
	f := generateCmd.Flags()
	f.Int("companies", defaults.CompanyCount, "number of companies")
	f.Int("branches", defaults.BranchesPerCompany, "branches per company")
	f.Int("departments", defaults.DeptsPerBranch, "departments per branch")
	f.Int("employees", defaults.EmployeesPerDept, "employees per department")
	f.String("mode", string(domain.ModeReference), "relationship mode: reference or edge")
	f.Int("chunk-size", generator.DefaultChunkSize, "records per bulk insert (dynamodb caps it at 100)")
	f.Int("workers", 1, "company subtrees generated in parallel")
	f.Uint64("seed", 0, "random seed, 0 picks one")
	f.Duration("timeout", 10*time.Minute, "overall run timeout")
	f.BoolVar(&genMigrate, "migrate", false, "apply SQL migrations before generating")
	f.BoolVar(&genJSON, "json", false, "print the summary as JSON")
	f.BoolVar(&genProgress, "progress", true, "report progress per chunk")

	for flag, key := range map[string]string{
		"companies":   "generator.company_count",
		"branches":    "generator.branches_per_company",
		"departments": "generator.depts_per_branch",
		"employees":   "generator.employees_per_dept",
		"mode":        "generator.mode",
		"chunk-size":  "generator.chunk_size",
		"workers":     "generator.workers",
		"seed":        "generator.seed",
		"timeout":     "generator.timeout",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	gen := cfg.Generator
	counts := gen.Counts()
	req := dto.GenerateRequest{
		CompanyCount:       &counts.CompanyCount,
		BranchesPerCompany: &counts.BranchesPerCompany,
		DeptsPerBranch:     &counts.DeptsPerBranch,
		EmployeesPerDept:   &counts.EmployeesPerDept,
		Mode:               gen.Mode,
		ChunkSize:          gen.ChunkSize,
		Workers:            gen.Workers,
	}
	if err := req.Validate(); err != nil {
		return report(cmd.OutOrStdout(), nil, err)
	}

	chunkSize := gen.ChunkSize
	if limit := repository.MaxChunkSize(gen.Store); limit > 0 && chunkSize > limit {
		logger.Warn("chunk size reduced to the store limit",
			slog.String("store", gen.Store),
			slog.Int("requested", chunkSize),
			slog.Int("chunk_size", limit),
		)
		chunkSize = limit
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink, closer, err := repository.Open(ctx, cfg, genMigrate)
	if err != nil {
		return err
	}
	defer closer.Close()

	sink = middleware.Chain(sink,
		middleware.Recoverer(logger),
		middleware.Logger(logger),
	)

	opts := service.Options{
		Mode:      domain.Mode(gen.Mode),
		ChunkSize: chunkSize,
		Workers:   gen.Workers,
		Seed:      gen.Seed,
		Timeout:   gen.Timeout,
	}
	if genProgress && !genJSON {
		opts.Progress = progressPrinter(cmd.ErrOrStderr())
	}

	svc, err := service.NewGeneratorService(sink, logger, opts)
	if err != nil {
		return err
	}

	summary, err := svc.GenerateAll(ctx, req.ToConfig(domain.DefaultGenerateConfig()))
	return report(cmd.OutOrStdout(), summary, err)
}

// report печатает итог запуска в текстовом виде или, с --json, как
// SummaryResponse либо ErrorResponse. Возвращает err запуска.
func report(w io.Writer, summary *domain.Summary, err error) error {
	if genJSON {
		if err != nil {
			resp := dto.ErrorResponse{Error: err.Error()}
			if summary != nil {
				partial := dto.NewSummaryResponse(summary)
				resp.Partial = &partial
			}
			if encErr := printJSON(w, resp); encErr != nil {
				return errors.Join(err, encErr)
			}
			return err
		}
		return printJSON(w, dto.NewSummaryResponse(summary))
	}

	if err != nil {
		if summary != nil {
			printPartial(w, summary, err)
		}
		return err
	}
	printSummary(w, summary)
	return nil
}

func progressPrinter(w io.Writer) func(domain.Progress) {
	kindColor := color.New(color.FgCyan)
	return func(p domain.Progress) {
		fmt.Fprintf(w, "%s chunk %d: +%d (total %d)\n",
			kindColor.Sprintf("%-18s", p.Kind), p.Chunk, p.Written, p.Total)
	}
}

func printSummary(w io.Writer, s *domain.Summary) {
	green := color.New(color.FgGreen, color.Bold)
	green.Fprintln(w, "✓ Generation complete")
	printCounts(w, s)
	fmt.Fprintf(w, "  %-12s %d ms\n", "time", s.ElapsedMs())
}

func printPartial(w io.Writer, s *domain.Summary, err error) {
	red := color.New(color.FgRed, color.Bold)
	red.Fprintf(w, "✗ Generation stopped: %v\n", err)
	fmt.Fprintln(w, "  written before the failure:")
	printCounts(w, s)
}

func printCounts(w io.Writer, s *domain.Summary) {
	for _, kind := range []domain.Kind{domain.KindCompany, domain.KindBranch, domain.KindDepartment, domain.KindEmployee} {
		fmt.Fprintf(w, "  %-12s %d\n", kind.Collection(), s.Count(kind))
	}
	if s.Mode == domain.ModeEdge {
		fmt.Fprintf(w, "  %-12s %d\n", "edges", s.Edges())
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

