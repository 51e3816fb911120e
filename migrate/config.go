// Package migrate implements the library surface spec §6 exposes to a
// host driver: build_indices, segment_and_store, transform_routine,
// and clear_routine_storage, plus the ambient configuration/reporting/
// logging types a real migration run needs around them.
//
// Grounded on the teacher's cmd/tgpiler/main.go orchestration loop
// (executeDirectory: iterate input units, call the per-unit transform
// function, collect/report results, wrap errors with %w) with every
// CLI-specific and file-system-specific part stripped: spec §1 puts
// the CLI and any file-system driver out of scope, so this package
// takes already-loaded dictionary rows and source text as plain Go
// values (the "collaborator contract" of spec §6) rather than reading
// files itself.
package migrate

import (
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ora2pg/plsqlcore/transform"
)

// Config is migrate.Config (SPEC_FULL.md §1 ambient configuration
// item): the current target schema, optional YAML override files for
// the two rewrite tables transform exposes as package vars, and the
// sizing knobs for the optional worker pool (§5) and LOB batch size
// (lobtransfer is driven one table at a time; batch size bounds how
// many tables a driver processes per transaction in its own loop).
type Config struct {
	Schema         string
	WorkerPoolSize int
	LOBBatchSize   int

	// ExceptionOverridesPath, if set, names a YAML file merged into
	// transform.StandardExceptionRewrites by LoadConfig.
	ExceptionOverridesPath string
	// FunctionRenameOverridesPath, if set, names a YAML file merged
	// into transform.FunctionRenames by LoadConfig.
	FunctionRenameOverridesPath string
}

// overrideFile is the shape both override YAML files share: a flat
// map from the Oracle-side name to its PostgreSQL rewrite.
type overrideFile struct {
	Overrides map[string]string `yaml:"overrides"`
}

// LoadConfig reads cfg's override files (if set) and merges them into
// transform's package-level rewrite tables before a run. Both tables
// are package vars for exactly this purpose (see transform.FunctionRenames,
// transform.StandardExceptionRewrites): migrate is the only place that
// mutates them, and it does so once, before any routine is transformed.
func LoadConfig(cfg Config) error {
	if cfg.ExceptionOverridesPath != "" {
		overrides, err := readOverrideFile(cfg.ExceptionOverridesPath)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			transform.StandardExceptionRewrites[k] = v
		}
	}
	if cfg.FunctionRenameOverridesPath != "" {
		overrides, err := readOverrideFile(cfg.FunctionRenameOverridesPath)
		if err != nil {
			return err
		}
		for k, v := range overrides {
			transform.FunctionRenames[k] = v
		}
	}
	return nil
}

func readOverrideFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f overrideFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Overrides, nil
}

// DefaultConfig returns a Config with the sizing knobs SPEC_FULL.md §5
// assumes when a host driver doesn't have an opinion: one worker per
// available CPU for routine parsing, and a modest LOB batch size so a
// single failed table doesn't force retrying a large batch transfer.
func DefaultConfig(schema string) Config {
	return Config{
		Schema:         schema,
		WorkerPoolSize: runtime.NumCPU(),
		LOBBatchSize:   50,
	}
}
