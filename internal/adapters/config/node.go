package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/core/domain"
)

// NodeID is the unique identifier for the config Graft node.
const NodeID graft.ID = "adapter.config"

// DefaultFilename is the configuration file looked up in the working
// directory. WEFT_CONFIG overrides it.
const DefaultFilename = "weft.yaml"

func init() {
	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*domain.Config, error) {
			path := DefaultFilename
			if env := os.Getenv("WEFT_CONFIG"); env != "" {
				path = env
			}
			return Load(path)
		},
	})
}
