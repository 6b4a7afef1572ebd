// Package libconfig reads and writes the lib.config.json manifest that
// describes a publishable library directory.
package libconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Masterminds/semver"
	"github.com/charmbracelet/log"

	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/util"
)

const FileName = "lib.config.json"

// Config is the manifest. Dependencies map LibraryName to a semver range;
// values are kept loose here so malformed entries can be reported instead
// of failing the whole parse.
type Config struct {
	Name         string         `json:"name"`
	Version      string         `json:"version"`
	Description  string         `json:"description,omitempty"`
	Language     string         `json:"language,omitempty"`
	Dependencies map[string]any `json:"dependencies,omitempty"`
}

// Template returns the manifest 'tpkm init' writes.
func Template(name, version string) *Config {
	return &Config{
		Name:         name,
		Version:      version,
		Description:  "",
		Language:     "",
		Dependencies: map[string]any{},
	}
}

// Load reads dir/lib.config.json.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errs.New(errs.KindValidation, "no %s found in %s", FileName, dir).
			WithHint("run 'tpkm init' in the library directory to create one")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "failed to read %s", path)
	}
	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "%s is not valid JSON", path)
	}
	return &c, nil
}

// Save writes the manifest with two-space indentation.
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Validate checks the manifest and returns the dependency list in sorted
// name order. The name must follow the registry rules and the version must
// be a valid semver. Dependency constraints that are empty or not strings
// are dropped with a warning; syntactically invalid ranges are warned about
// but preserved, since the registry stores them verbatim.
func (c *Config) Validate(logger *log.Logger) ([]chain.Dependency, error) {
	if err := util.ValidateLibraryName(c.Name); err != nil {
		return nil, errs.New(errs.KindValidation, "%s", err)
	}
	if _, err := semver.NewVersion(c.Version); err != nil {
		return nil, errs.New(errs.KindValidation, "invalid version %q: %s", c.Version, err)
	}

	names := make([]string, 0, len(c.Dependencies))
	for name := range c.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make([]chain.Dependency, 0, len(names))
	for _, name := range names {
		raw := c.Dependencies[name]
		constraint, ok := raw.(string)
		if !ok || constraint == "" {
			logger.Warnf("dropping dependency %q: constraint must be a non-empty string", name)
			continue
		}
		if err := util.ValidateLibraryName(name); err != nil {
			return nil, errs.New(errs.KindValidation, "invalid dependency name %q", name)
		}
		if _, err := semver.NewConstraint(constraint); err != nil {
			logger.Warnf("dependency %q has an unparseable constraint %q, keeping it as written", name, constraint)
		}
		deps = append(deps, chain.Dependency{Name: name, Constraint: constraint})
	}
	return deps, nil
}
