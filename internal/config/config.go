// Package config handles run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "citefeat.yml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CITEFEAT_"

// ValidFormats lists the supported output formats.
var ValidFormats = []string{"csv", "jsonl", "sqlite"}

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the run configuration stored in citefeat.yml.
type Config struct {
	Nodes            string        `yaml:"nodes,omitempty"`             // Node information CSV
	Train            string        `yaml:"train,omitempty"`             // Labeled training pairs
	Test             string        `yaml:"test,omitempty"`              // Unlabeled test pairs
	OutputDir        string        `yaml:"output_dir,omitempty"`        // Directory for matrices
	Format           string        `yaml:"format,omitempty"`            // csv, jsonl or sqlite
	Workers          int           `yaml:"workers,omitempty"`           // 0 means GOMAXPROCS
	StopWordsFile    string        `yaml:"stopwords_file,omitempty"`    // Replaces the English list
	ProgressInterval time.Duration `yaml:"progress_interval,omitempty"` // e.g. "5s"
	SkipSelfPairs    bool          `yaml:"skip_self_pairs,omitempty"`   // Drop source == target pairs
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		OutputDir:        "features",
		Format:           "csv",
		ProgressInterval: 2 * time.Second,
	}
}

// Load reads the configuration at path over the defaults. An empty path
// tries DefaultFile and returns the defaults if it doesn't exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.expandPaths()
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from CITEFEAT_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"NODES", &c.Nodes},
		{"TRAIN", &c.Train},
		{"TEST", &c.Test},
		{"OUTPUT_DIR", &c.OutputDir},
		{"FORMAT", &c.Format},
	}
	for _, s := range strs {
		if v, ok := lookup(EnvPrefix + s.key); ok && v != "" {
			*s.dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sWORKERS=%q is not an integer", ErrInvalidConfig, EnvPrefix, v)
		}
		c.Workers = n
	}

	c.expandPaths()
	return nil
}

// Validate checks field values. requireInputs additionally demands the
// node and training files that extraction needs.
func (c *Config) Validate(requireInputs bool) error {
	if !isValidFormat(c.Format) {
		return fmt.Errorf("%w: format %q (valid: %v)", ErrInvalidConfig, c.Format, ValidFormats)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.ProgressInterval < 0 {
		return fmt.Errorf("%w: progress_interval must not be negative", ErrInvalidConfig)
	}
	if !requireInputs {
		return nil
	}
	if c.Nodes == "" {
		return fmt.Errorf("%w: nodes is required", ErrInvalidConfig)
	}
	if c.Train == "" {
		return fmt.Errorf("%w: train is required", ErrInvalidConfig)
	}
	return nil
}

func isValidFormat(f string) bool {
	for _, valid := range ValidFormats {
		if f == valid {
			return true
		}
	}
	return false
}

func (c *Config) expandPaths() {
	for _, p := range []*string{&c.Nodes, &c.Train, &c.Test, &c.OutputDir, &c.StopWordsFile} {
		*p = ExpandPath(*p)
	}
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
