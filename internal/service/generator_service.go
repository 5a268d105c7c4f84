package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/org-structure-seeder/internal/domain"
	"github.com/org-structure-seeder/internal/dto"
	"github.com/org-structure-seeder/internal/generator"
	"github.com/org-structure-seeder/internal/repository"
)

// GeneratorService определяет интерфейс генерации иерархии
type GeneratorService interface {
	// GenerateAll генерирует компании, филиалы, отделы и сотрудников.
	// При ошибке записи или отмене возвращает частичный Summary вместе с ошибкой;
	// Summary равен nil только для ошибки конфигурации.
	GenerateAll(ctx context.Context, cfg domain.GenerateConfig) (*domain.Summary, error)
}

// Options - параметры запуска, не зависящие от размера иерархии
type Options struct {
	Mode      domain.Mode
	ChunkSize int
	// Workers > 1 включает параллельную генерацию поддеревьев компаний
	Workers int
	// Seed = 0 - случайное зерно
	Seed uint64
	// Timeout > 0 ограничивает весь запуск
	Timeout  time.Duration
	Progress generator.ProgressFunc
	// Factory подменяет генератор сущностей; по умолчанию Faker
	Factory func(seed uint64, now time.Time) ForkableFactory
	Now     func() time.Time
}

// ForkableFactory - EntityFactory, умеющий выдавать независимые потоки
type ForkableFactory interface {
	generator.EntityFactory
	Fork(stream uint64) ForkableFactory
}

type generatorService struct {
	sink      repository.Sink
	binder    generator.RelationshipBinder
	levels    []generator.Level
	opts      Options
	validator *validator.Validate
	logger    *slog.Logger
}

// NewGeneratorService создаёт новый экземпляр сервиса
func NewGeneratorService(sink repository.Sink, logger *slog.Logger, opts Options) (GeneratorService, error) {
	binder, err := generator.NewBinder(opts.Mode)
	if err != nil {
		return nil, err
	}
	if opts.ChunkSize < 1 {
		opts.ChunkSize = generator.DefaultChunkSize
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Factory == nil {
		opts.Factory = func(seed uint64, now time.Time) ForkableFactory {
			return fakerFactory{generator.NewFaker(seed, now)}
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &generatorService{
		sink:      sink,
		binder:    binder,
		levels:    generator.Hierarchy,
		opts:      opts,
		validator: validator.New(),
		logger:    logger,
	}, nil
}

func (s *generatorService) GenerateAll(ctx context.Context, cfg domain.GenerateConfig) (*domain.Summary, error) {
	if err := s.validator.Struct(&cfg); err != nil {
		return nil, dto.ToConfigError(err)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	startedAt := s.opts.Now()
	r := &run{
		cfg:     cfg,
		levels:  s.levels,
		binder:  s.binder,
		writer:  generator.NewChunkedBulkWriter(s.sink, s.opts.ChunkSize, s.opts.Progress),
		factory: s.opts.Factory(s.opts.Seed, startedAt),
		workers: s.opts.Workers,
	}
	runID := uuid.NewString()

	s.logger.Info("generation started",
		slog.String("run_id", runID),
		slog.String("mode", string(s.binder.Mode())),
		slog.Int("company_count", cfg.CompanyCount),
		slog.Int("branches_per_company", cfg.BranchesPerCompany),
		slog.Int("depts_per_branch", cfg.DeptsPerBranch),
		slog.Int("employees_per_dept", cfg.EmployeesPerDept),
		slog.Int("chunk_size", s.opts.ChunkSize),
		slog.Int("workers", s.opts.Workers),
	)

	err := r.execute(ctx)

	finishedAt := s.opts.Now()
	summary := r.summary(runID, startedAt, finishedAt)

	if err != nil {
		s.logger.Error("generation failed",
			slog.String("run_id", runID),
			slog.Any("counts", summary.Counts),
			slog.Int64("edges", summary.Edges()),
			slog.Any("error", err),
		)
		return summary, err
	}

	s.logger.Info("generation finished",
		slog.String("run_id", runID),
		slog.Any("counts", summary.Counts),
		slog.Int64("edges", summary.Edges()),
		slog.Duration("duration", summary.Elapsed),
	)
	return summary, nil
}

// run - состояние одного вызова GenerateAll
type run struct {
	cfg     domain.GenerateConfig
	levels  []generator.Level
	binder  generator.RelationshipBinder
	writer  *generator.ChunkedBulkWriter
	factory ForkableFactory
	workers int
}

// execute пишет корневой уровень, затем поддеревья группами родителей.
// Группы второго уровня независимы и при workers > 1 идут параллельно.
func (r *run) execute(ctx context.Context) error {
	root := r.levels[0]
	companies, err := r.writer.Write(ctx, root.Kind, root.Fanout(r.cfg), func(i int) (domain.Entity, error) {
		return r.factory.Create(root.Kind, "", i)
	})
	if err != nil {
		return err
	}

	if len(r.levels) < 2 {
		return nil
	}
	scopes := r.scopes(1, companies)
	if len(scopes) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	skipped := false
	for i, scope := range scopes {
		if gctx.Err() != nil {
			skipped = true
			break
		}
		factory := r.factory.Fork(uint64(i))
		g.Go(func() error {
			return r.generateScope(gctx, 1, scope, factory)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// отмена прервала раздачу групп раньше, чем какая-либо из них упала
	if skipped {
		return &domain.CancelledError{Kind: string(r.levels[1].Kind), Err: context.Cause(gctx)}
	}
	return nil
}

// generateScope пишет потомков уровня depth для группы родителей,
// связывает их и спускается ниже.
func (r *run) generateScope(ctx context.Context, depth int, parents []domain.ID, factory generator.EntityFactory) error {
	level := r.levels[depth]
	fanout := level.Fanout(r.cfg)
	if fanout == 0 || len(parents) == 0 {
		return nil
	}

	children, err := r.writer.Write(ctx, level.Kind, len(parents)*fanout, func(i int) (domain.Entity, error) {
		parent := parents[i/fanout]
		child, err := factory.Create(level.Kind, parent, i%fanout)
		if err != nil {
			return nil, err
		}
		return r.binder.BeforeInsert(parent, child), nil
	})
	if err != nil {
		return err
	}

	if err := r.bindPersisted(ctx, level, parents, fanout, children); err != nil {
		return err
	}

	if depth+1 >= len(r.levels) {
		return nil
	}
	for _, scope := range r.scopes(depth+1, children) {
		if err := r.generateScope(ctx, depth+1, scope, factory); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) bindPersisted(ctx context.Context, level generator.Level, parents []domain.ID, fanout int, children []domain.ID) error {
	kind := level.EdgeKind()
	edges := make([]domain.Edge, 0, len(children))
	for i, child := range children {
		if edge, ok := r.binder.AfterInsert(kind, parents[i/fanout], child); ok {
			edges = append(edges, edge)
		}
	}
	if len(edges) == 0 {
		return nil
	}
	_, err := r.writer.WriteEdges(ctx, kind, edges)
	return err
}

// scopes делит родителей на группы так, чтобы потомки одной группы
// занимали примерно один чанк
func (r *run) scopes(depth int, parents []domain.ID) [][]domain.ID {
	fanout := r.levels[depth].Fanout(r.cfg)
	if fanout == 0 || len(parents) == 0 {
		return nil
	}
	size := max(1, r.writer.ChunkSize()/fanout)

	out := make([][]domain.ID, 0, (len(parents)+size-1)/size)
	for start := 0; start < len(parents); start += size {
		out = append(out, parents[start:min(start+size, len(parents))])
	}
	return out
}

func (r *run) summary(runID string, startedAt, finishedAt time.Time) *domain.Summary {
	s := &domain.Summary{
		RunID:      runID,
		Mode:       r.binder.Mode(),
		Counts:     make(map[domain.Kind]int64, len(r.levels)),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Elapsed:    finishedAt.Sub(startedAt),
	}
	for _, l := range r.levels {
		s.Counts[l.Kind] = r.writer.Total(string(l.Kind))
		if r.binder.Mode() == domain.ModeEdge && l.Parent != "" {
			if s.EdgeCounts == nil {
				s.EdgeCounts = make(map[domain.EdgeKind]int64)
			}
			s.EdgeCounts[l.EdgeKind()] = r.writer.Total(string(l.EdgeKind()))
		}
	}
	return s
}

// fakerFactory приводит Fork генератора к ForkableFactory
type fakerFactory struct {
	*generator.Faker
}

func (f fakerFactory) Fork(stream uint64) ForkableFactory {
	return fakerFactory{f.Faker.Fork(stream)}
}
