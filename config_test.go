package prolog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		title  string
		yaml   string
		config Config
		err    bool
	}{
		{title: "empty", yaml: ``, config: DefaultConfig()},
		{
			title: "overrides",
			yaml: `
async_workers: 2
debug: true
unknown: fail
double_quotes: atom
verify: false
query_cache_size: 0
sandbox: true
preload:
  - lib.pl
`,
			config: Config{
				AsyncWorkers:   2,
				Debug:          true,
				Unknown:        "fail",
				DoubleQuotes:   "atom",
				Verify:         false,
				QueryCacheSize: 0,
				Sandbox:        true,
				Preload:        []string{"lib.pl"},
			},
		},
		{
			title: "partial",
			yaml:  `unknown: warning`,
			config: Config{
				AsyncWorkers:   8,
				Unknown:        "warning",
				DoubleQuotes:   "codes",
				Verify:         true,
				QueryCacheSize: 128,
			},
		},
		{title: "unknown field", yaml: `workers: 2`, err: true},
		{title: "invalid unknown", yaml: `unknown: ignore`, err: true},
		{title: "invalid double_quotes", yaml: `double_quotes: string`, err: true},
		{title: "negative workers", yaml: `async_workers: -1`, err: true},
		{title: "negative cache", yaml: `query_cache_size: -1`, err: true},
		{title: "malformed", yaml: `unknown: [`, err: true},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			c, err := LoadConfig(strings.NewReader(tt.yaml))
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.config, c)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "prolog.yaml")
		assert.NoError(t, os.WriteFile(name, []byte("debug: true\n"), 0o644))

		c, err := LoadConfigFile(name)
		assert.NoError(t, err)
		assert.True(t, c.Debug)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_flags(t *testing.T) {
	c := DefaultConfig()
	c.Debug = true
	i, err := NewWithConfig(c, nil, nil)
	assert.NoError(t, err)
	defer i.Close()

	var s struct {
		Debug        string
		Verify       string
		DoubleQuotes string
		Unknown      string
	}
	assert.NoError(t, i.QuerySolution(`current_prolog_flag(debug, Debug), current_prolog_flag(verify, Verify), current_prolog_flag(double_quotes, DoubleQuotes), current_prolog_flag(unknown, Unknown)`).Scan(&s))
	assert.Equal(t, "on", s.Debug)
	assert.Equal(t, "true", s.Verify)
	assert.Equal(t, "codes", s.DoubleQuotes)
	assert.Equal(t, "error", s.Unknown)
}
