package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/mrovalidate/internal/schema"
)

// DefaultConcurrency is the number of tables validated at once when no
// limit is configured.
const DefaultConcurrency = 4

// Sources locates the input files of a validation run.
type Sources struct {
	IndexPath   string // Global label index (index.tsv)
	IEDBPath    string // IEDB cross-reference table; defaults to <TemplateDir>/iedb.tsv
	TemplateDir string // Directory holding external.tsv and the ontology tables
}

// PathFor returns the file the table described by info is read from.
func (s Sources) PathFor(info TableInfo) string {
	if info.Key == schema.TableIEDB && s.IEDBPath != "" {
		return s.IEDBPath
	}
	file := info.File
	if file == "" {
		file = info.Key + ".tsv"
	}
	return filepath.Join(s.TemplateDir, file)
}

// ExternalPath returns the path of the imported-term table.
func (s Sources) ExternalPath() string {
	return filepath.Join(s.TemplateDir, schema.TableExternal+".tsv")
}

// Validator runs every registered table's rule set in dependency order.
type Validator struct {
	defs        []TableDefinition
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithConcurrency limits how many tables of one stage are validated at once.
// Values below 1 mean DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets the logger used for run progress.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithDefinitions replaces the registered tables with defs.
func WithDefinitions(defs []TableDefinition) Option {
	return func(v *Validator) {
		v.defs = append([]TableDefinition(nil), defs...)
	}
}

// NewValidator returns a validator over the registered tables.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.defs == nil {
		v.defs = All()
	}
	sortDefinitions(v.defs)
	return v
}

// Tables returns the definitions the validator runs, in processing order.
func (v *Validator) Tables() []TableDefinition {
	return append([]TableDefinition(nil), v.defs...)
}

// Run loads every input table and validates it.
//
// Rule violations never fail a run; they are returned in the report. An
// error is returned only when an input cannot be loaded, the table
// dependencies are invalid, or ctx is cancelled.
func (v *Validator) Run(ctx context.Context, src Sources) (*Report, error) {
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: v.now(),
	}
	logger := v.logger.With("run_id", report.RunID.String())

	stages, err := Plan(v.defs)
	if err != nil {
		return nil, err
	}

	indexTable, err := LoadTable(schema.TableIndex, src.IndexPath, schema.IndexFieldSpecs)
	if err != nil {
		return nil, err
	}
	externalTable, err := LoadTable(schema.TableExternal, src.ExternalPath(), schema.ExternalFieldSpecs)
	if err != nil {
		return nil, err
	}
	index := NewIndex(indexTable)
	external := NewLabelSet(LabelsOf(externalTable)...)

	logger.Debug("reference tables loaded",
		"index_labels", index.Len(),
		"external_labels", external.Len(),
	)

	tables, err := v.loadAll(ctx, src)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(v.defs))
	published := make(map[string]LabelSet, len(v.defs))

	for depth, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("validation stage started", "stage", depth, "tables", len(stage))

		stageResults := make([]Result, len(stage))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(v.concurrency)

		for i, def := range stage {
			upstream := make(map[string]LabelSet, len(def.DependsOn))
			for _, dep := range def.DependsOn {
				upstream[dep] = published[dep]
			}
			in := NewInputs(index, external, upstream)
			t := tables[def.Info.Key]

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stageResults[i] = def.Validate(t, in)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for i, def := range stage {
			res := stageResults[i]
			results[def.Info.Key] = res
			published[def.Info.Key] = NewLabelSet(res.Labels...)
			logger.Debug("table validated",
				"table", def.Info.Key,
				"rows", tables[def.Info.Key].Len(),
				"violations", len(res.Violations),
			)
		}
	}

	collector := NewCollector()
	for _, def := range v.defs {
		res := results[def.Info.Key]
		t := tables[def.Info.Key]
		collector.Append(res.Violations...)
		report.Tables = append(report.Tables, TableSummary{
			Key:        def.Info.Key,
			Path:       t.Path,
			Rows:       t.Len(),
			Labels:     len(res.Labels),
			Violations: len(res.Violations),
		})
	}
	report.Violations = collector.Violations()
	report.Duration = v.now().Sub(report.StartedAt)

	logger.Info("validation completed",
		"outcome", report.Outcome(),
		"tables", len(report.Tables),
		"violations", report.ViolationCount(),
		"duration_ms", report.Duration.Milliseconds(),
	)
	return report, nil
}

// loadAll reads every table concurrently. When several tables fail, the
// error of the first one in processing order is returned.
func (v *Validator) loadAll(ctx context.Context, src Sources) (map[string]*Table, error) {
	loaded := make([]*Table, len(v.defs))
	errs := make([]error, len(v.defs))

	var g errgroup.Group
	g.SetLimit(v.concurrency)
	for i, def := range v.defs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			loaded[i], errs[i] = LoadTable(def.Info.Key, src.PathFor(def.Info), def.FieldSpecs)
			return nil
		})
	}
	_ = g.Wait()

	tables := make(map[string]*Table, len(v.defs))
	for i, def := range v.defs {
		if errs[i] != nil {
			return nil, errs[i]
		}
		tables[def.Info.Key] = loaded[i]
	}
	return tables, nil
}
