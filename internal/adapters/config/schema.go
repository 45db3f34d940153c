package config

// Weftfile represents the structure of the weft.yaml configuration file.
type Weftfile struct {
	Version   string      `yaml:"version"`
	Store     string      `yaml:"store"`
	Model     string      `yaml:"model"`
	Gateway   GatewayDTO  `yaml:"gateway"`
	Pipeline  PipelineDTO `yaml:"pipeline"`
	Documents []string    `yaml:"documents"`
}

// GatewayDTO configures the language model gateway client.
type GatewayDTO struct {
	Endpoint string `yaml:"endpoint"`
	Timeout  string `yaml:"timeout"`
}

// PipelineDTO configures tier widths, worker counts and the barrier timeout.
type PipelineDTO struct {
	Analysts       int    `yaml:"analysts"`
	Reviewers      int    `yaml:"reviewers"`
	Workers        int    `yaml:"workers"`
	BarrierTimeout string `yaml:"barrierTimeout"`
}
