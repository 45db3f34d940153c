package domain

import "time"

// GatewaySettings configures the language model gateway client.
type GatewaySettings struct {
	Endpoint string
	Timeout  time.Duration
}

// Config is the validated weft.yaml configuration.
type Config struct {
	Version   string
	StoreRoot string
	ModelID   string
	Gateway   GatewaySettings

	Analysts       int
	Reviewers      int
	Workers        int
	BarrierTimeout time.Duration

	// Documents are paths to corpus files ingested as raw artifacts at the
	// start of a run.
	Documents []string
}

// Spec builds the pipeline spec for a run from the configuration. Inputs are
// filled in after ingestion.
func (c *Config) Spec(runID string, inputs []ArtifactID) *PipelineSpec {
	return &PipelineSpec{
		RunID:          runID,
		ModelID:        c.ModelID,
		Analysts:       c.Analysts,
		Reviewers:      c.Reviewers,
		Workers:        c.Workers,
		BarrierTimeout: c.BarrierTimeout,
		Inputs:         inputs,
	}
}
