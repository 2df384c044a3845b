// Package runner assembles a full optimization run from configuration:
// benchmark, dispatcher, engine and archive, then drives the generation
// loop.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paretosim/optimization-core/internal/archive"
	"github.com/paretosim/optimization-core/internal/benchmarks"
	"github.com/paretosim/optimization-core/internal/dispatch"
	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/evolve"
	"github.com/paretosim/optimization-core/internal/pareto"
	"github.com/paretosim/optimization-core/internal/problem"
	"github.com/paretosim/optimization-core/pkg/config"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// Summary is the outcome of a completed run.
type Summary struct {
	RunID       string
	Generations int
	Stats       evolve.GenerationStats
	Scores      []evolve.MemberScore
	Population  *ensemble.Table
}

// Runner owns a configured run's collaborators.
type Runner struct {
	cfg        *config.Config
	log        *slog.Logger
	bench      *benchmarks.Benchmark
	dispatcher *dispatch.Dispatcher
	writer     *archive.Writer
}

// New builds a runner from configuration. Workers listed in the
// dispatch section are reached over HTTP; an empty list evaluates the
// benchmark simulator in process.
func New(cfg *config.Config, log *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("runner: config is required")
	}
	if log == nil {
		log = slog.Default()
	}

	bench, err := benchmarks.ByName(cfg.Run.Benchmark, cfg.Run.NumVars)
	if err != nil {
		return nil, err
	}

	var transports []dispatch.Transport
	if len(cfg.Dispatch.Workers) == 0 {
		tr, err := dispatch.NewInProcessTransport("local", bench.Simulator)
		if err != nil {
			return nil, err
		}
		transports = append(transports, tr)
	} else {
		timeout := time.Duration(cfg.Dispatch.TimeoutSeconds) * time.Second
		for _, baseURL := range cfg.Dispatch.Workers {
			tr, err := dispatch.NewHTTPTransport(baseURL, timeout)
			if err != nil {
				return nil, err
			}
			transports = append(transports, tr)
		}
	}

	backoff := utils.BackoffFromConfig(cfg.Dispatch.Backoff, cfg.Dispatch.BackoffBaseMs, 0)
	dispatcher, err := dispatch.NewDispatcher(transports, cfg.Dispatch.MaxRetries, backoff, log)
	if err != nil {
		return nil, err
	}

	var writer *archive.Writer
	if cfg.Archive != nil {
		writer, err = archive.NewWriter(cfg.Archive.Dir, log)
		if err != nil {
			return nil, err
		}
	}

	return &Runner{
		cfg:        cfg,
		log:        log,
		bench:      bench,
		dispatcher: dispatcher,
		writer:     writer,
	}, nil
}

// Run executes the configured number of generations and returns the
// final population. The dispatcher is closed on return.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	defer func() {
		if err := r.dispatcher.Close(); err != nil {
			r.log.Warn("dispatcher close", "error", err)
		}
	}()

	runID := utils.GenerateRunID()
	log := r.log.With("run_id", runID)

	spec, err := r.objectiveSpec()
	if err != nil {
		return nil, err
	}

	rng := utils.NewRandSource(r.cfg.Run.Seed)
	draws := drawRecipe(r.cfg.Run.Draws)
	drawn, err := ensemble.FromDraws(r.bench.Definition.DecisionVariables(), nil, r.cfg.Run.Population, rng)
	if err != nil {
		return nil, err
	}
	dv, err := asMembers(drawn)
	if err != nil {
		return nil, err
	}
	par, err := ensemble.FromDraws(r.bench.Definition.UncertainParameters(), draws, r.cfg.Run.Realizations, rng)
	if err != nil {
		return nil, err
	}

	engineCfg := evolve.Config{
		Weight:        r.cfg.Evolution.Weight,
		CrossoverProb: r.cfg.Evolution.CrossoverProb,
		FreshDraws:    r.cfg.Run.FreshDraws,
		ParamDraws:    draws,
		Seed:          r.cfg.Run.Seed,
	}
	engine, err := evolve.NewEliteDiffEvol(r.bench.Definition, r.dispatcher, engineCfg, log)
	if err != nil {
		return nil, err
	}

	if err := engine.Initialize(ctx, spec, dv, par, r.cfg.Run.Risk); err != nil {
		return nil, err
	}
	if err := r.archiveGeneration(engine, spec); err != nil {
		return nil, err
	}

	for gen := 1; gen <= r.cfg.Run.Generations; gen++ {
		if err := engine.Update(ctx); err != nil {
			return nil, err
		}
		if err := r.archiveGeneration(engine, spec); err != nil {
			return nil, err
		}
	}

	stats := evolve.ComputeStats(engine.Generation(), engine.Scores(), spec)
	log.Info("run complete",
		"generations", engine.Generation(),
		"front_size", stats.FrontSize,
		"feasible", stats.FeasibleCount)

	return &Summary{
		RunID:       runID,
		Generations: engine.Generation(),
		Stats:       stats,
		Scores:      engine.Scores(),
		Population:  engine.Population(),
	}, nil
}

// objectiveSpec builds the objective list: every unconstrained output
// minimized by default, with per-objective direction overrides applied
// from configuration.
func (r *Runner) objectiveSpec() (pareto.ObjectiveSpec, error) {
	overrides := make(map[string]pareto.Direction, len(r.cfg.Objectives))
	for _, o := range r.cfg.Objectives {
		dir, err := pareto.ParseDirection(o.Direction)
		if err != nil {
			return nil, err
		}
		if !r.bench.Definition.HasOutput(o.Name) {
			return nil, fmt.Errorf("runner: objective override %s names no output of benchmark %s", o.Name, r.cfg.Run.Benchmark)
		}
		overrides[o.Name] = dir
	}

	var spec pareto.ObjectiveSpec
	for _, q := range r.bench.Definition.Outputs() {
		if q.Sense != problem.SenseNone {
			continue
		}
		dir := pareto.Minimize
		if d, ok := overrides[q.Name]; ok {
			dir = d
		}
		spec = append(spec, pareto.Objective{Name: q.Name, Direction: dir})
	}
	return spec, nil
}

func (r *Runner) archiveGeneration(engine *evolve.EliteDiffEvol, spec pareto.ObjectiveSpec) error {
	if r.writer == nil {
		return nil
	}
	// Archive constraint quantities alongside the objectives.
	quantities := spec.Names()
	seen := make(map[string]bool, len(quantities))
	for _, q := range quantities {
		seen[q] = true
	}
	for _, c := range r.bench.Definition.Constraints() {
		if !seen[c.Name] {
			quantities = append(quantities, c.Name)
		}
	}
	return r.writer.WriteGeneration(engine.Generation(), engine.Scores(), engine.Population(), quantities)
}

// asMembers renames drawn realization rows into initial population
// member names.
func asMembers(drawn *ensemble.Table) (*ensemble.Table, error) {
	members, err := ensemble.NewTable(drawn.Variables())
	if err != nil {
		return nil, err
	}
	for i := 0; i < drawn.Len(); i++ {
		if err := members.Append(utils.MemberName(0, i), drawn.RowAt(i).Values); err != nil {
			return nil, err
		}
	}
	return members, nil
}

func drawRecipe(how map[string]string) map[string]ensemble.DrawKind {
	if len(how) == 0 {
		return nil
	}
	recipe := make(map[string]ensemble.DrawKind, len(how))
	for name, kind := range how {
		recipe[name] = ensemble.DrawKind(kind)
	}
	return recipe
}
