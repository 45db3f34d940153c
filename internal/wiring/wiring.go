// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/weft/internal/adapters/audit"
	_ "go.trai.ch/weft/internal/adapters/cache"
	_ "go.trai.ch/weft/internal/adapters/cas"
	_ "go.trai.ch/weft/internal/adapters/config"
	_ "go.trai.ch/weft/internal/adapters/gateway"
	_ "go.trai.ch/weft/internal/adapters/logger"
	_ "go.trai.ch/weft/internal/adapters/stream"
	_ "go.trai.ch/weft/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/weft/internal/app"
	_ "go.trai.ch/weft/internal/engine/orchestrator"
	_ "go.trai.ch/weft/internal/engine/stages"
	_ "go.trai.ch/weft/internal/engine/validator"
)
