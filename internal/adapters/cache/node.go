package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/cas"    //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/adapters/logger" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the result cache Graft node.
const NodeID graft.ID = "adapter.result_cache"

func init() {
	graft.Register(graft.Node[ports.ResultCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cas.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.ResultCache, error) {
			store, err := graft.Dep[ports.ArtifactStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewManager(store, log), nil
		},
	})
}
