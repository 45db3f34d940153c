package audit

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/config" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the audit log Graft node.
const NodeID graft.ID = "adapter.audit_log"

func init() {
	graft.Register(graft.Node[ports.AuditLog]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.AuditLog, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewFileLog(filepath.Join(cfg.StoreRoot, "audit.log")), nil
		},
	})
}
