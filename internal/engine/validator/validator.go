// Package validator implements the post-hoc integrity scan over the artifact
// store and its provenance metadata. It is independent of the live
// orchestrator: it only reads the registry, the objects, and optionally an
// external audit log.
package validator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Validator audits the artifact graph after (or during) a run.
type Validator struct {
	store   ports.ArtifactStore
	audit   ports.AuditLog
	logger  ports.Logger
	tracer  ports.Tracer
	verbose bool
}

// New creates a Validator. audit may be nil when no external log is
// maintained; the external-audit pass then records a warning.
func New(store ports.ArtifactStore, audit ports.AuditLog, logger ports.Logger, tracer ports.Tracer) *Validator {
	return &Validator{store: store, audit: audit, logger: logger, tracer: tracer}
}

// SetVerbose enables logging of every successful check for audit purposes.
func (v *Validator) SetVerbose(verbose bool) {
	v.verbose = verbose
}

// Run executes every validation pass and returns the accumulated report.
// Individual violations never abort the scan.
func (v *Validator) Run(ctx context.Context, runID string) (*Report, error) {
	ctx, span := v.tracer.Start(ctx, "validator.run")
	defer span.End()

	report := &Report{}
	if err := v.ValidateHashes(ctx, report); err != nil {
		return report, err
	}
	v.ValidateReferences(report)
	v.ValidateProvenance(report)
	if runID != "" {
		v.ValidateExternalAudit(report, runID)
	}

	span.SetAttribute("checks_run", report.ChecksRun)
	span.SetAttribute("fatal", report.Fatal())
	return report, nil
}

// ValidateHashes recomputes every stored object's digest and compares it to
// the declared identifier. Mismatches are Corruption; registry rows with no
// object at all are DanglingReference. All violations are collected.
func (v *Validator) ValidateHashes(ctx context.Context, report *Report) error {
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, entry := range v.store.List() {
		g.Go(func() error {
			// Get re-verifies the digest on read.
			_, err := v.store.Get(entry.ID)
			switch {
			case err == nil:
				report.pass()
				v.logPass("hash ok: " + entry.ID.Short())
			case errors.Is(err, domain.ErrCorruption):
				report.fail(Violation{
					Class:     ViolationCorruption,
					Artifacts: []domain.ArtifactID{entry.ID},
					Detail:    "stored bytes do not match declared digest",
				})
			case errors.Is(err, domain.ErrNotFound):
				report.fail(Violation{
					Class:     ViolationDanglingReference,
					Artifacts: []domain.ArtifactID{entry.ID},
					Detail:    "registry entry has no stored object",
				})
			default:
				report.fail(Violation{
					Class:     ViolationWarning,
					Artifacts: []domain.ArtifactID{entry.ID},
					Detail:    "object unreadable: " + err.Error(),
				})
			}
			return nil
		})
	}
	return g.Wait()
}

// ValidateReferences checks that every symbolic cache-key alias resolves to a
// stored object. Dangling aliases are reported explicitly, never skipped.
func (v *Validator) ValidateReferences(report *Report) {
	for _, entry := range v.store.List() {
		if entry.Metadata.CacheKey == "" {
			continue
		}
		if v.store.Exists(entry.ID) {
			report.pass()
			v.logPass("reference ok: " + entry.Metadata.CacheKey)
			continue
		}
		report.fail(Violation{
			Class:     ViolationDanglingReference,
			Artifacts: []domain.ArtifactID{entry.ID},
			Detail:    fmt.Sprintf("cache key %s resolves to a missing object", entry.Metadata.CacheKey),
		})
	}
}

// ValidateProvenance builds the full dependency graph from the registry and
// confirms closure and acyclicity. A missing dependency names both the
// dependent and the missing artifact.
func (v *Validator) ValidateProvenance(report *Report) {
	graph := domain.NewDependencyGraph()
	entries := v.store.List()
	for _, entry := range entries {
		graph.Add(entry.ID, entry.Metadata.Dependencies)
	}

	missing := graph.Missing()
	for _, ref := range missing {
		report.fail(Violation{
			Class:     ViolationMissingDependency,
			Artifacts: []domain.ArtifactID{ref.Dependent, ref.Missing},
			Detail: fmt.Sprintf("artifact %s depends on %s which is not in the store",
				ref.Dependent.Short(), ref.Missing.Short()),
		})
	}

	if err := graph.Validate(); err != nil {
		report.fail(Violation{
			Class:  ViolationCycle,
			Detail: err.Error(),
		})
	} else if len(missing) == 0 {
		for _, entry := range entries {
			if len(entry.Metadata.Dependencies) > 0 {
				report.pass()
				v.logPass("provenance ok: " + entry.ID.Short())
			}
		}
	}
}

// ValidateExternalAudit cross-checks the run identifier against the external
// append-only log. Absence is a warning, not fatal: not all deployments
// maintain such a log.
func (v *Validator) ValidateExternalAudit(report *Report, runID string) {
	if v.audit == nil {
		report.fail(Violation{
			Class:  ViolationWarning,
			Detail: "no external audit log configured",
		})
		return
	}

	ok, err := v.audit.Contains(runID)
	if err != nil {
		report.fail(Violation{
			Class:  ViolationWarning,
			Detail: "external audit log unreadable: " + err.Error(),
		})
		return
	}
	if !ok {
		report.fail(Violation{
			Class:  ViolationWarning,
			Detail: fmt.Sprintf("run %s not present in external audit log", runID),
		})
		return
	}
	report.pass()
	v.logPass("external audit ok: " + runID)
}

func (v *Validator) logPass(msg string) {
	if v.verbose {
		v.logger.Info(msg)
	}
}
