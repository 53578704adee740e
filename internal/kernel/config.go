package kernel

import (
	"os"

	yaml "github.com/goccy/go-yaml"

	"strideos/internal/task"
)

// Config mirrors config.yml.
type Config struct {
	TickMS          int    `yaml:"tick_ms"`          // timer interrupt period
	DefaultPriority int64  `yaml:"default_priority"` // priority assigned at spawn
	MaxTasks        int    `yaml:"max_tasks"`        // live task limit
	KernelStacks    int    `yaml:"kernel_stacks"`    // size of the kernel stack pool
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"` // "text" or "json"
	TraceCSV        string `yaml:"trace_csv"`  // empty disables the CSV trace
}

func defaultConfig() Config {
	return Config{
		TickMS:          5,
		DefaultPriority: task.DefaultPriority,
		MaxTasks:        64,
		KernelStacks:    64,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads YAML and overrides defaults; empty or missing path = defaults
// only.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 5
	}
	if task.ValidatePriority(cfg.DefaultPriority) != nil {
		cfg.DefaultPriority = task.DefaultPriority
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 64
	}
	if cfg.KernelStacks <= 0 {
		cfg.KernelStacks = cfg.MaxTasks
	}

	return cfg
}
