package stages

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/cache"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/cas"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/config"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/gateway" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the stages Graft node.
const NodeID graft.ID = "engine.stages"

func init() {
	graft.Register(graft.Node[*Stages]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			cache.NodeID,
			gateway.NodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Stages, error) {
			store, err := graft.Dep[ports.ArtifactStore](ctx)
			if err != nil {
				return nil, err
			}

			resultCache, err := graft.Dep[ports.ResultCache](ctx)
			if err != nil {
				return nil, err
			}

			gw, err := graft.Dep[ports.Gateway](ctx)
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

			return New(store, resultCache, gw, log, cfg.ModelID), nil
		},
	})
}
