package gateway

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the gateway Graft node.
const NodeID graft.ID = "adapter.gateway"

func init() {
	graft.Register(graft.Node[ports.Gateway]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Gateway, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewClient(cfg.Gateway.Endpoint, cfg.Gateway.Timeout), nil
		},
	})
}
