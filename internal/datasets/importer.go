package datasets

import (
	"context"
	"fmt"
	"log/slog"

	"datastorage/internal/config"
	"datastorage/internal/dataprocessing"
	"datastorage/internal/infrastructure"
	"datastorage/internal/operations"
	"datastorage/internal/table"
)

// Importer is one dataset's pipeline. Fetch makes the raw input available,
// Parse reads it into a raw table, Transform produces the table to persist
// under Dataset() in Container().
type Importer interface {
	Dataset() string
	Provider() config.ProviderPaths
	Container() string

	Fetch(ctx context.Context) error
	Parse(ctx context.Context) (*table.Table, dataprocessing.ParseStats, error)
	Transform(ctx context.Context, raw *table.Table) (*table.Table, error)
}

// RawKey is the operation context key of a dataset's parsed table
func RawKey(dataset string) string { return dataset + ".raw" }

// TableKey is the operation context key of a dataset's transformed table
func TableKey(dataset string) string { return dataset + ".table" }

// Steps adapts an importer to the four operations steps
func Steps(env *Env, imp Importer) []operations.Step {
	ds := imp.Dataset()

	fetch := operations.NewFuncStep(ds, operations.StepFetch, "Fetch "+ds,
		func(ctx context.Context, state *operations.OperationState) error {
			return annotate(imp.Fetch(ctx), ds)
		})

	parse := operations.NewFuncStep(ds, operations.StepParse, "Parse "+ds,
		func(ctx context.Context, state *operations.OperationState) error {
			raw, stats, err := imp.Parse(ctx)
			if err != nil {
				return annotate(err, ds)
			}
			env.Metrics.RecordRows(ctx, ds, infrastructure.RowsParsed, raw.NumRows())
			env.Metrics.RecordRows(ctx, ds, infrastructure.RowsDropped, stats.DroppedRows)
			setMetadata(state, operations.StepID(ds, operations.StepParse), "rows", raw.NumRows())
			state.SetContext(RawKey(ds), raw)
			return nil
		})

	transform := operations.NewFuncStep(ds, operations.StepTransform, "Transform "+ds,
		func(ctx context.Context, state *operations.OperationState) error {
			raw, err := operations.ContextValue[*table.Table](state, RawKey(ds))
			if err != nil {
				return err
			}
			t, err := imp.Transform(ctx, raw)
			if err != nil {
				return annotate(err, ds)
			}
			t = t.WithName(ds)
			if dropped := raw.NumRows() - t.NumRows(); dropped > 0 {
				env.Metrics.RecordRows(ctx, ds, infrastructure.RowsDropped, dropped)
			}
			env.Logger.InfoContext(ctx, "Dataset transformed",
				slog.String("dataset", ds),
				slog.Int("raw_rows", raw.NumRows()),
				slog.Int("rows", t.NumRows()))
			setMetadata(state, operations.StepID(ds, operations.StepTransform), "rows", t.NumRows())
			state.SetContext(TableKey(ds), t)
			return nil
		}).WithValidate(requireContext(RawKey(ds)))

	persist := operations.NewFuncStep(ds, operations.StepPersist, "Persist "+ds,
		func(ctx context.Context, state *operations.OperationState) error {
			t, err := operations.ContextValue[*table.Table](state, TableKey(ds))
			if err != nil {
				return err
			}
			return env.Persist(ctx, imp.Provider(), imp.Container(), t)
		}).WithValidate(requireContext(TableKey(ds)))

	return []operations.Step{fetch, parse, transform, persist}
}

func requireContext(key string) func(*operations.OperationState) error {
	return func(state *operations.OperationState) error {
		if _, ok := state.GetContext(key); !ok {
			return fmt.Errorf("%s not produced by an earlier step", key)
		}
		return nil
	}
}

func setMetadata(state *operations.OperationState, stepID, key string, value interface{}) {
	if s := state.GetStage(stepID); s != nil {
		s.SetMetadata(key, value)
	}
}

// Result is the outcome of Import: the operation response and the tables
// each dataset persisted
type Result struct {
	*operations.OperationResponse
	Tables map[string]*table.Table
}

// Import runs the importers in order, restricted to the named datasets when
// only is not empty
func Import(ctx context.Context, env *Env, only []string, importers ...Importer) (*Result, error) {
	registry := operations.NewRegistry()
	for _, imp := range importers {
		if err := registry.RegisterAll(Steps(env, imp)...); err != nil {
			return nil, err
		}
	}

	manager := operations.NewManager(registry, env.Logger,
		operations.WithTracer(env.tracer()),
		operations.WithMetrics(env.Metrics))

	state := operations.NewOperationState(infrastructure.GenerateTraceID())
	state.SetConfig("download", env.Download)
	err := manager.ExecuteState(ctx, state, only...)

	result := &Result{
		OperationResponse: operations.NewResponse(state),
		Tables:            make(map[string]*table.Table),
	}
	for _, imp := range importers {
		if t, terr := operations.ContextValue[*table.Table](state, TableKey(imp.Dataset())); terr == nil {
			result.Tables[imp.Dataset()] = t
		}
	}
	return result, err
}
