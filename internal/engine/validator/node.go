package validator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/audit"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the validator Graft node.
const NodeID graft.ID = "engine.validator"

func init() {
	graft.Register(graft.Node[*Validator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			audit.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Validator, error) {
			store, err := graft.Dep[ports.ArtifactStore](ctx)
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

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return New(store, auditLog, log, tracer), nil
		},
	})
}
