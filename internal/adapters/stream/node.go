package stream

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the stream provider Graft node.
const NodeID graft.ID = "adapter.stream_provider"

func init() {
	graft.Register(graft.Node[ports.StreamProvider]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.StreamProvider, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewProvider(filepath.Join(cfg.StoreRoot, "streams")), nil
		},
	})
}
