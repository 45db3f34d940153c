// Package app implements the application layer for weft.
package app

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.trai.ch/weft/internal/adapters/telemetry"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/orchestrator"
	"go.trai.ch/weft/internal/engine/stages"
	"go.trai.ch/weft/internal/engine/validator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	config       *domain.Config
	store        ports.ArtifactStore
	orchestrator *orchestrator.Orchestrator
	stages       *stages.Stages
	validator    *validator.Validator
	audit        ports.AuditLog
	logger       ports.Logger

	noTelemetry bool
}

// New creates a new App instance.
func New(
	cfg *domain.Config,
	store ports.ArtifactStore,
	orch *orchestrator.Orchestrator,
	stg *stages.Stages,
	val *validator.Validator,
	audit ports.AuditLog,
	log ports.Logger,
) *App {
	return &App{
		config:       cfg,
		store:        store,
		orchestrator: orch,
		stages:       stg,
		validator:    val,
		audit:        audit,
		logger:       log,
	}
}

// WithoutTelemetry skips installing the global OTel trace provider. This is
// primarily used for testing to keep the global SDK untouched.
func (a *App) WithoutTelemetry() *App {
	a.noTelemetry = true
	return a
}

// RunResult summarizes a finished pipeline run.
type RunResult struct {
	RunID      string
	TrailID    domain.ArtifactID
	Moderation domain.ArtifactID
	Artifacts  int
}

// RunPipeline executes the four-tier pipeline over the configured corpus and
// returns the run summary. Tier ordering is enforced by completion counting
// alone: a tier's tasks are enqueued only after every task of the previous
// tier has produced a completion record.
func (a *App) RunPipeline(ctx context.Context) (*RunResult, error) {
	if !a.noTelemetry {
		shutdown := telemetry.InstallProvider()
		defer func() {
			_ = shutdown(ctx)
		}()
	}

	runID := uuid.NewString()
	a.logger.Info("starting pipeline run " + runID)

	inputs, err := a.ingest()
	if err != nil {
		return nil, err
	}
	spec := a.config.Spec(runID, inputs)

	a.stages.RegisterAll(a.orchestrator)

	// Workers consume the task stream for the whole run and stop when the
	// tiers are done.
	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	g, workerCtx := errgroup.WithContext(workerCtx)
	for i := 0; i < spec.Workers; i++ {
		g.Go(func() error {
			return a.orchestrator.RunWorker(workerCtx)
		})
	}

	result, runErr := a.runTiers(ctx, spec)

	stopWorkers()
	if err := g.Wait(); err != nil {
		a.logger.Error(err)
	}

	if runErr != nil {
		// Commit the trail anyway: an aborted run's events, including any
		// barrier timeout, are exactly what a post-mortem needs.
		if _, trailErr := a.orchestrator.FinalizeRun(runID); trailErr != nil {
			a.logger.Warn("failed to commit audit trail for aborted run: " + trailErr.Error())
		}
		return nil, runErr
	}

	trailID, err := a.orchestrator.FinalizeRun(runID)
	if err != nil {
		return nil, err
	}
	result.TrailID = trailID

	if err := a.audit.Append(runID); err != nil {
		// The run itself succeeded; a missing external audit entry surfaces
		// later as a validator warning.
		a.logger.Warn("failed to append external audit entry: " + err.Error())
	}

	result.Artifacts = len(a.store.List())
	a.logger.Info("pipeline run " + runID + " finalized, audit trail " + trailID.Short())
	return result, nil
}

// runTiers drives the four tiers in order and returns the run summary without
// the audit trail, which is committed by the caller after the last tier.
func (a *App) runTiers(ctx context.Context, spec *domain.PipelineSpec) (*RunResult, error) {
	timeout := spec.BarrierTimeout

	// Tier 1: independent analyses over the full corpus.
	analysisTasks := stages.AnalysisTasks(spec)
	completions, err := a.orchestrator.RunTier(ctx, spec.RunID, analysisTasks, timeout)
	if err != nil {
		return nil, err
	}
	analyses, err := resultArtifacts(analysisTasks, completions)
	if err != nil {
		return nil, err
	}

	// Tier 2: a single synthesis over every analysis.
	synthesisTask := stages.SynthesisTask(spec, analyses)
	completions, err = a.orchestrator.RunTier(ctx, spec.RunID, []*domain.Task{synthesisTask}, timeout)
	if err != nil {
		return nil, err
	}
	synthesis, err := singleResult(synthesisTask, completions)
	if err != nil {
		return nil, err
	}

	// Tier 3: reviews in two phases. Responses read the opening statements,
	// so the phases are separated by their own barrier.
	openingTasks := stages.OpeningTasks(spec, synthesis)
	completions, err = a.orchestrator.RunTier(ctx, spec.RunID, openingTasks, timeout)
	if err != nil {
		return nil, err
	}
	openings, err := resultArtifacts(openingTasks, completions)
	if err != nil {
		return nil, err
	}

	responseTasks := stages.ResponseTasks(spec, synthesis, openings)
	completions, err = a.orchestrator.RunTier(ctx, spec.RunID, responseTasks, timeout)
	if err != nil {
		return nil, err
	}
	responses, err := resultArtifacts(responseTasks, completions)
	if err != nil {
		return nil, err
	}

	// Tier 4: moderation over every review artifact.
	moderationTask := stages.ModerationTask(spec, append(openings, responses...))
	completions, err = a.orchestrator.RunTier(ctx, spec.RunID, []*domain.Task{moderationTask}, timeout)
	if err != nil {
		return nil, err
	}
	moderation, err := singleResult(moderationTask, completions)
	if err != nil {
		return nil, err
	}

	return &RunResult{RunID: spec.RunID, Moderation: moderation}, nil
}

// ingest stores every configured corpus document as a raw artifact.
func (a *App) ingest() ([]domain.ArtifactID, error) {
	if len(a.config.Documents) == 0 {
		return nil, domain.ErrNoDocuments
	}

	inputs := make([]domain.ArtifactID, 0, len(a.config.Documents))
	for _, path := range a.config.Documents {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read corpus document"), "path", path)
		}

		id, err := a.store.Put(data, domain.Metadata{Type: domain.TypeRaw})
		if err != nil {
			return nil, zerr.With(err, "path", path)
		}
		inputs = append(inputs, id)
	}
	return inputs, nil
}

// Verify runs the integrity validator over the store and returns its report.
// A report with fatal violations is accompanied by
// domain.ErrIntegrityCheckFailed.
func (a *App) Verify(ctx context.Context, runID string, verbose bool) (*validator.Report, error) {
	a.validator.SetVerbose(verbose)

	report, err := a.validator.Run(ctx, runID)
	if err != nil {
		return report, err
	}
	if report.Fatal() {
		return report, domain.ErrIntegrityCheckFailed
	}
	return report, nil
}

// resultArtifacts collects the tier's result artifacts in task order. Any
// failed completion aborts the run.
func resultArtifacts(tasks []*domain.Task, completions map[string]domain.Completion) ([]domain.ArtifactID, error) {
	var failed []string
	ids := make([]domain.ArtifactID, 0, len(tasks))
	for _, task := range tasks {
		c, ok := completions[task.ID]
		if !ok {
			failed = append(failed, task.ID)
			continue
		}
		if c.Status != domain.CompletionCompleted {
			failed = append(failed, task.ID+": "+c.Error)
			continue
		}
		ids = append(ids, c.ResultArtifactID)
	}
	if len(failed) > 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrPipelineFailed, "tier produced failed tasks"),
			"failed_tasks", strings.Join(failed, "; "))
	}
	return ids, nil
}

func singleResult(task *domain.Task, completions map[string]domain.Completion) (domain.ArtifactID, error) {
	ids, err := resultArtifacts([]*domain.Task{task}, completions)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}
