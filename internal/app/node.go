package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/audit"  //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
	"go.trai.ch/weft/internal/engine/orchestrator"
	"go.trai.ch/weft/internal/engine/stages"
	"go.trai.ch/weft/internal/engine/validator"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components bundles the resolved application and its cross-cutting
// collaborators for the CLI entry point.
type Components struct {
	App    *App
	Logger ports.Logger
	Config *domain.Config
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cas.NodeID,
			orchestrator.NodeID,
			stages.NodeID,
			validator.NodeID,
			audit.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: application, Logger: log, Config: cfg}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfg, err := graft.Dep[*domain.Config](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.ArtifactStore](ctx)
	if err != nil {
		return nil, err
	}

	orch, err := graft.Dep[*orchestrator.Orchestrator](ctx)
	if err != nil {
		return nil, err
	}

	stg, err := graft.Dep[*stages.Stages](ctx)
	if err != nil {
		return nil, err
	}

	val, err := graft.Dep[*validator.Validator](ctx)
	if err != nil {
		return nil, err
	}

	auditLog, err := graft.Dep[ports.AuditLog](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfg, store, orch, stg, val, auditLog, log), nil
}
