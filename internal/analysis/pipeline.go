package analysis

import (
	"context"
	"os"
	"runtime"
	"sort"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/guardian/internal/lang"
	"github.com/dusk-indust/guardian/internal/metrics"
	"github.com/dusk-indust/guardian/internal/rules"
)

// Target names one file scheduled for analysis. Extension filtering and
// exclude patterns were applied by the scanner before a Target exists.
type Target struct {
	Path     string
	Language lang.Language
}

// RunnerOptions configure a run.
type RunnerOptions struct {
	// Workers bounds the pool; <= 0 means NumCPU.
	Workers int

	// ComplexityThreshold drives severity escalation.
	ComplexityThreshold int

	// MinSeverity filters the final finding list.
	MinSeverity rules.Severity
}

// Runner drives the per-file pipelines over a worker pool and merges the
// results into a single Report. Each file's parse, metrics, and rule
// evaluation are independent; the only shared state is the read-only
// rule registry inside the engine and the result slice each worker
// writes its own slot of.
type Runner struct {
	engine  *rules.Engine
	advisor Advisor
	log     hclog.Logger
	opts    RunnerOptions
}

// NewRunner wires a runner. A nil advisor disables suggestions.
func NewRunner(engine *rules.Engine, advisor Advisor, logger hclog.Logger, opts RunnerOptions) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Runner{
		engine:  engine,
		advisor: advisor,
		log:     logger.Named("analysis"),
		opts:    opts,
	}
}

// Run analyzes every target and synthesizes the Report. Cancellation is
// checked before each file is scheduled: in-flight files finish, the
// rest are reported as skipped, and ctx.Err() is returned alongside the
// partial report. No per-file failure aborts the run.
func (r *Runner) Run(ctx context.Context, targets []Target) (*Report, error) {
	results := make([]FileReport, len(targets))
	models := make([]*lang.Model, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	scheduled := 0
	for i, t := range targets {
		if gctx.Err() != nil {
			break
		}
		scheduled++
		g.Go(func() error {
			results[i], models[i] = r.analyzeOne(t)
			return nil
		})
	}
	_ = g.Wait()

	for i := scheduled; i < len(targets); i++ {
		results[i] = FileReport{
			Path:     targets[i].Path,
			Language: targets[i].Language,
			Status:   StatusSkipped,
		}
	}

	modelsByPath := make(map[string]*lang.Model, len(models))
	for i, m := range models {
		if m != nil {
			modelsByPath[results[i].Path] = m
		}
	}

	report := r.synthesize(results, modelsByPath)
	return report, ctx.Err()
}

// analyzeOne runs the full pipeline for a single file: scoped read,
// parse, metrics, rule evaluation.
func (r *Runner) analyzeOne(t Target) (FileReport, *lang.Model) {
	text, err := os.ReadFile(t.Path)
	if err != nil {
		r.log.Warn("read failed", "path", t.Path, "error", err)
		return FileReport{
			Path:       t.Path,
			Language:   t.Language,
			Status:     StatusIOFailed,
			FailDetail: err.Error(),
		}, nil
	}

	unit := NewSourceUnit(t.Path, t.Language, text)
	if unit.Status == StatusParseFailed {
		r.log.Debug("parse failed, degrading", "path", t.Path, "reason", unit.FailDetail)
	}

	fm := metrics.Compute(unit.Path, unit.Text, unit.Language, unit.Model)
	findings, warnings := r.engine.Evaluate(unit.Path, unit.Text, unit.Language, unit.Model)

	return FileReport{
		Path:       unit.Path,
		Language:   unit.Language,
		Status:     unit.Status,
		FailDetail: unit.FailDetail,
		Findings:   findings,
		Metrics:    fm,
		Warnings:   warnings,
	}, unit.Model
}

// synthesize merges per-file results into the final Report at a single
// aggregation point. File sections are ordered by path regardless of
// worker completion order.
func (r *Runner) synthesize(results []FileReport, models map[string]*lang.Model) *Report {
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	var (
		all         []rules.Finding
		fileMetrics = map[string]*metrics.FileMetrics{}
		metricsList []metrics.FileMetrics
		summary     = Summary{FindingsBySeverity: map[string]int{}}
	)
	for i := range results {
		fr := &results[i]
		switch fr.Status {
		case StatusAnalyzed, StatusParseFailed:
			summary.FilesAnalyzed++
			all = append(all, fr.Findings...)
			fileMetrics[fr.Path] = &fr.Metrics
			metricsList = append(metricsList, fr.Metrics)
			summary.TotalLines += fr.Metrics.Lines.Total()
		case StatusIOFailed:
			summary.FilesFailed++
		case StatusSkipped:
			summary.FilesSkipped++
		}
	}

	agg := NewAggregator(r.opts.ComplexityThreshold, r.opts.MinSeverity)
	findings := agg.Aggregate(all, fileMetrics)

	// rewrite each file section with its aggregated findings so the two
	// views never disagree
	perFile := map[string][]rules.Finding{}
	for _, f := range findings {
		perFile[f.Path] = append(perFile[f.Path], f)
		summary.FindingsBySeverity[f.Severity.String()]++
	}
	for i := range results {
		results[i].Findings = perFile[results[i].Path]
	}
	summary.TotalFindings = len(findings)

	report := &Report{
		Files:                results,
		Findings:             findings,
		Summary:              summary,
		SecurityScore:        SecurityScore(findings),
		MaintainabilityGrade: MaintainabilityGrade(metricsList),
	}
	report.QualityGrade = QualityGrade(report.SecurityScore, report.MaintainabilityGrade)

	if r.advisor != nil {
		report.Suggestions = r.advisor.Suggest(FeatureVector{
			Models:   models,
			Findings: findings,
			Metrics:  metricsList,
		})
	}
	return report
}
