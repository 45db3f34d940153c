package orchestrator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/stream"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the orchestrator Graft node.
const NodeID graft.ID = "engine.orchestrator"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			stream.NodeID,
			cas.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			provider, err := graft.Dep[ports.StreamProvider](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.ArtifactStore](ctx)
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

			tasks, err := provider.Stream(TaskStreamName)
			if err != nil {
				return nil, err
			}
			done, err := provider.Stream(DoneStreamName)
			if err != nil {
				return nil, err
			}

			return New(tasks, done, store, log, tracer), nil
		},
	})
}
