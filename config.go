package prolog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/logicbase/prolog/engine"
)

// Config is the configuration of an Interpreter.
type Config struct {
	// AsyncWorkers limits the number of async goals running at the same time.
	AsyncWorkers int `yaml:"async_workers"`

	// Debug turns on the trace of calls and redos. The trace is logged at the debug level.
	Debug bool `yaml:"debug"`

	// Unknown is the action for an unknown procedure: error, fail, or warning.
	Unknown string `yaml:"unknown"`

	// DoubleQuotes decides how double-quoted texts are read: codes, chars, or atom.
	DoubleQuotes string `yaml:"double_quotes"`

	// Verify turns on the check which rejects changes of builtin procedures.
	Verify bool `yaml:"verify"`

	// QueryCacheSize is the number of parsed queries kept for reuse. 0 disables the cache.
	QueryCacheSize int `yaml:"query_cache_size"`

	// Sandbox disables access to files.
	Sandbox bool `yaml:"sandbox"`

	// Preload is a list of files consulted on creation.
	Preload []string `yaml:"preload"`
}

// DefaultConfig returns the configuration used by New.
func DefaultConfig() Config {
	return Config{
		AsyncWorkers:   engine.DefaultAsyncWorkers,
		Unknown:        "error",
		DoubleQuotes:   "codes",
		Verify:         true,
		QueryCacheSize: 128,
	}
}

// LoadConfig reads a YAML configuration from r. Missing fields take the default values.
func LoadConfig(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfigFile reads a YAML configuration from the file name.
func LoadConfigFile(name string) (Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks if the values are in their ranges.
func (c Config) Validate() error {
	switch c.Unknown {
	case "error", "fail", "warning":
	default:
		return fmt.Errorf("config: invalid unknown: %q", c.Unknown)
	}
	switch c.DoubleQuotes {
	case "codes", "chars", "atom":
	default:
		return fmt.Errorf("config: invalid double_quotes: %q", c.DoubleQuotes)
	}
	if c.AsyncWorkers < 0 {
		return fmt.Errorf("config: invalid async_workers: %d", c.AsyncWorkers)
	}
	if c.QueryCacheSize < 0 {
		return fmt.Errorf("config: invalid query_cache_size: %d", c.QueryCacheSize)
	}
	return nil
}

func (c Config) flags() map[string]engine.Term {
	onOff := func(b bool) engine.Term {
		if b {
			return engine.Atom("on")
		}
		return engine.Atom("off")
	}
	return map[string]engine.Term{
		"unknown":       engine.Atom(c.Unknown),
		"double_quotes": engine.Atom(c.DoubleQuotes),
		"verify":        onOff(c.Verify),
		"debug":         onOff(c.Debug),
	}
}
