// Package config provides the configuration loader for weft.
package config

import (
	"os"
	"time"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Defaults applied when weft.yaml omits a field.
const (
	DefaultStoreRoot      = ".weft"
	DefaultAnalysts       = 4
	DefaultReviewers      = 3
	DefaultWorkers        = 2
	DefaultBarrierTimeout = 2 * time.Minute
	DefaultGatewayTimeout = 60 * time.Second
)

// Load reads a configuration file from the given path and returns a validated
// domain.Config.
func Load(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var wf Weftfile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	return build(&wf)
}

func build(wf *Weftfile) (*domain.Config, error) {
	cfg := &domain.Config{
		Version:        wf.Version,
		StoreRoot:      wf.Store,
		ModelID:        wf.Model,
		Analysts:       wf.Pipeline.Analysts,
		Reviewers:      wf.Pipeline.Reviewers,
		Workers:        wf.Pipeline.Workers,
		BarrierTimeout: DefaultBarrierTimeout,
		Documents:      wf.Documents,
	}

	if cfg.StoreRoot == "" {
		cfg.StoreRoot = DefaultStoreRoot
	}
	if cfg.ModelID == "" {
		return nil, zerr.New("config is missing required field 'model'")
	}
	if cfg.Analysts == 0 {
		cfg.Analysts = DefaultAnalysts
	}
	if cfg.Reviewers == 0 {
		cfg.Reviewers = DefaultReviewers
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Analysts < 0 || cfg.Reviewers < 0 || cfg.Workers < 0 {
		return nil, zerr.New("pipeline widths must be positive")
	}

	if wf.Pipeline.BarrierTimeout != "" {
		d, err := time.ParseDuration(wf.Pipeline.BarrierTimeout)
		if err != nil {
			return nil, zerr.Wrap(err, "invalid barrierTimeout")
		}
		if d <= 0 {
			return nil, zerr.New("barrierTimeout must be positive")
		}
		cfg.BarrierTimeout = d
	}

	cfg.Gateway = domain.GatewaySettings{
		Endpoint: wf.Gateway.Endpoint,
		Timeout:  DefaultGatewayTimeout,
	}
	if wf.Gateway.Timeout != "" {
		d, err := time.ParseDuration(wf.Gateway.Timeout)
		if err != nil {
			return nil, zerr.Wrap(err, "invalid gateway timeout")
		}
		cfg.Gateway.Timeout = d
	}

	return cfg, nil
}
