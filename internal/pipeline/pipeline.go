// Package pipeline orchestrates one reconciliation run: parse, fetch the
// authoritative set, merge, annotate, filter.
package pipeline

import (
	"context"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/fetcher"
	"github.com/vero-group/fleet-cli/internal/model"
	"github.com/vero-group/fleet-cli/internal/reconcile"
	"github.com/vero-group/fleet-cli/pkg/baubuddy"
)

// Pipeline runs the reconciliation stages against one authoritative source.
type Pipeline struct {
	source  baubuddy.Client
	csvOpts fetcher.CSVOptions
	policy  model.MergePolicy
}

// New creates a Pipeline. All run state (the authoritative index, the label
// color cache) is allocated per Process call; the Pipeline itself is
// stateless across runs.
func New(source baubuddy.Client, csvOpts fetcher.CSVOptions, policy model.MergePolicy) *Pipeline {
	return &Pipeline{
		source:  source,
		csvOpts: csvOpts,
		policy:  policy,
	}
}

// Process executes the full synchronous pipeline on the uploaded CSV body
// and returns the reconciled, annotated, filtered record set.
func (p *Pipeline) Process(ctx context.Context, csvBody io.Reader) ([]model.Vehicle, error) {
	log := zap.L()

	records, err := fetcher.ReadRecords(csvBody, p.csvOpts)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: parse input")
	}
	if len(records) == 0 {
		return nil, ErrNoInput
	}
	log.Info("pipeline: input parsed", zap.Int("vehicles", len(records)))

	active, err := p.source.ActiveVehicles(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch active vehicles")
	}
	if len(active) == 0 {
		return nil, ErrNoActive
	}
	log.Info("pipeline: active vehicles loaded", zap.Int("vehicles", len(active)))

	index := reconcile.BuildIndex(active, model.KeyKurzname)
	records = reconcile.Reconcile(records, index, model.KeyKurzname, p.policy)
	reconcile.Annotate(ctx, records, p.source)

	survivors := reconcile.Filter(records, model.KeyHU)
	if len(survivors) == 0 {
		return nil, ErrNoSurvivors
	}
	log.Info("pipeline: vehicles filtered",
		zap.Int("survivors", len(survivors)),
		zap.Int("dropped", len(records)-len(survivors)),
	)

	return survivors, nil
}
