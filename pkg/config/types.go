package config

// Config is the optimization run configuration consumed by the master
// daemon.
type Config struct {
	LogLevel   string      `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Run        Run         `yaml:"run" validate:"required"`
	Evolution  Evolution   `yaml:"evolution"`
	Dispatch   Dispatch    `yaml:"dispatch"`
	Archive    *Archive    `yaml:"archive,omitempty"`
	Objectives []Objective `yaml:"objectives,omitempty"`
}

// Run selects the problem and the shape of the optimization.
type Run struct {
	Benchmark    string            `yaml:"benchmark" validate:"required,oneof=srn zdt1"`
	NumVars      int               `yaml:"num_vars,omitempty" validate:"omitempty,gte=2"`
	Population   int               `yaml:"population" validate:"required,gte=4"`
	Realizations int               `yaml:"realizations" validate:"required,gte=1"`
	Generations  int               `yaml:"generations" validate:"required,gte=1"`
	Risk         float64           `yaml:"risk" validate:"gte=0,lte=1"`
	Seed         int64             `yaml:"seed,omitempty"`
	FreshDraws   bool              `yaml:"fresh_draws,omitempty"`
	Draws        map[string]string `yaml:"draws,omitempty" validate:"omitempty,dive,oneof=uniform gaussian"`
}

// Objective overrides a benchmark objective's optimization direction.
type Objective struct {
	Name      string `yaml:"name" validate:"required"`
	Direction string `yaml:"direction" validate:"required,oneof=minimize maximize"`
}

// Evolution holds the differential-evolution parameters. Zero values
// fall back to defaults.
type Evolution struct {
	Weight        float64 `yaml:"weight,omitempty" validate:"omitempty,gt=0,lte=2"`
	CrossoverProb float64 `yaml:"crossover_prob,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Dispatch configures how model evaluations are distributed. An empty
// worker list runs the benchmark simulator in process.
type Dispatch struct {
	Workers        []string `yaml:"workers,omitempty" validate:"omitempty,dive,url"`
	MaxRetries     int      `yaml:"max_retries,omitempty" validate:"gte=0"`
	Backoff        string   `yaml:"backoff,omitempty" validate:"omitempty,oneof=constant exponential"`
	BackoffBaseMs  int      `yaml:"backoff_base_ms,omitempty" validate:"gte=0"`
	TimeoutSeconds int      `yaml:"timeout_seconds,omitempty" validate:"gte=0"`
}

// Archive configures per-generation history output.
type Archive struct {
	Dir string `yaml:"dir" validate:"required"`
}

// WorkerConfig is the worker daemon configuration.
type WorkerConfig struct {
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Listen    string `yaml:"listen" validate:"required,hostname_port"`
	Benchmark string `yaml:"benchmark" validate:"required,oneof=srn zdt1"`
	NumVars   int    `yaml:"num_vars,omitempty" validate:"omitempty,gte=2"`
}

const (
	defaultLogLevel       = "info"
	defaultWeight         = 0.8
	defaultCrossoverProb  = 0.9
	defaultTimeoutSeconds = 30
	defaultNumVars        = 5
)

// applyDefaults fills zero values with run defaults.
func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Evolution.Weight == 0 {
		c.Evolution.Weight = defaultWeight
	}
	if c.Evolution.CrossoverProb == 0 {
		c.Evolution.CrossoverProb = defaultCrossoverProb
	}
	if c.Dispatch.TimeoutSeconds == 0 {
		c.Dispatch.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Run.Benchmark == "zdt1" && c.Run.NumVars == 0 {
		c.Run.NumVars = defaultNumVars
	}
}

func (c *WorkerConfig) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Benchmark == "zdt1" && c.NumVars == 0 {
		c.NumVars = defaultNumVars
	}
}
