// Package config owns the run configuration: oracle model and retry
// discipline, per-stage timeouts and temperatures, dictionary ceilings, and
// stage output directories. Everything the pipeline once would have kept as
// a process-wide constant lives here.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Protocol classes decide the dictionary payload ceiling.
const (
	ClassText   = "text"
	ClassBinary = "binary"
)

// Keyword files reject entries past 128 bytes, so ceilings cap there.
const maxDictionaryLimit = 128

type Config struct {
	Model            string `toml:"model"`
	MaxRetries       int    `toml:"max_retries"`
	SequenceVariants int    `toml:"sequence_variants"`
	StructureWorkers int    `toml:"structure_workers"`
	ProtocolClass    string `toml:"protocol_class"`
	DictTextLimit    int    `toml:"dict_text_limit"`
	DictBinaryLimit  int    `toml:"dict_binary_limit"`

	Timeouts     Timeouts     `toml:"timeouts"`
	Temperatures Temperatures `toml:"temperatures"`
	Dirs         Dirs         `toml:"dirs"`
}

// Timeouts are per-stage oracle attempt deadlines in seconds.
type Timeouts struct {
	Types      int `toml:"types"`
	Structures int `toml:"structures"`
	Sequences  int `toml:"sequences"`
	TestCases  int `toml:"test_cases"`
	SeedParse  int `toml:"seed_parse"`
	Dictionary int `toml:"dictionary"`
}

// Temperatures are per-stage sampling temperatures; zero keeps the oracle
// default.
type Temperatures struct {
	Types      float32 `toml:"types"`
	Structures float32 `toml:"structures"`
	Sequences  float32 `toml:"sequences"`
	TestCases  float32 `toml:"test_cases"`
}

// Dirs name the stage snapshot directories and the numbered audit
// directory.
type Dirs struct {
	Types        string `toml:"types"`
	Structures   string `toml:"structures"`
	Sequences    string `toml:"sequences"`
	TestCases    string `toml:"test_cases"`
	Dictionaries string `toml:"dictionaries"`
	Audit        string `toml:"audit"`
}

// Default is the file-less configuration.
func Default() Config {
	return Config{
		Model:            "gpt-4o-mini",
		MaxRetries:       3,
		SequenceVariants: 5,
		StructureWorkers: 4,
		ProtocolClass:    ClassText,
		DictTextLimit:    32,
		DictBinaryLimit:  16,
		Timeouts: Timeouts{
			Types:      90,
			Structures: 90,
			Sequences:  90,
			TestCases:  30,
			SeedParse:  60,
			Dictionary: 90,
		},
		Temperatures: Temperatures{
			Types:      0.1,
			Structures: 0.1,
			Sequences:  0.7,
			TestCases:  0.7,
		},
		Dirs: Dirs{
			Types:        "protocol_type_results",
			Structures:   "protocol_specialized_structure_results",
			Sequences:    "message_sequence_results",
			TestCases:    "testcase_results",
			Dictionaries: "dictionary_results",
			Audit:        "llm_outputs",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("config missing model")
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("config max_retries must be positive")
	}
	if c.SequenceVariants <= 0 {
		return fmt.Errorf("config sequence_variants must be positive")
	}
	if c.StructureWorkers <= 0 {
		return fmt.Errorf("config structure_workers must be positive")
	}
	if c.ProtocolClass != ClassText && c.ProtocolClass != ClassBinary {
		return fmt.Errorf("config protocol_class must be %q or %q", ClassText, ClassBinary)
	}
	if c.DictTextLimit <= 0 || c.DictTextLimit > maxDictionaryLimit {
		return fmt.Errorf("config dict_text_limit must be in 1..%d", maxDictionaryLimit)
	}
	if c.DictBinaryLimit <= 0 || c.DictBinaryLimit > maxDictionaryLimit {
		return fmt.Errorf("config dict_binary_limit must be in 1..%d", maxDictionaryLimit)
	}
	return nil
}

// DictionaryLimit is the per-entry decoded byte ceiling for the configured
// protocol class.
func (c Config) DictionaryLimit() int {
	if c.ProtocolClass == ClassBinary {
		return c.DictBinaryLimit
	}
	return c.DictTextLimit
}

// Timeout converts a per-stage timeout in seconds to a duration.
func Timeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
