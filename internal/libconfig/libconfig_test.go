package libconfig

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
)

func silentLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestLoadBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{"), 0644))
	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c := Template("my-lib", "0.1.0")
	c.Description = "test library"
	c.Dependencies["dep-a"] = "^1.0.0"
	require.NoError(t, c.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "my-lib", loaded.Name)
	assert.Equal(t, "0.1.0", loaded.Version)
	assert.Equal(t, "test library", loaded.Description)
	assert.Equal(t, "^1.0.0", loaded.Dependencies["dep-a"])
}

func TestValidate(t *testing.T) {
	c := &Config{
		Name:    "my-lib",
		Version: "1.2.3",
		Dependencies: map[string]any{
			"zeta":  "^2.0.0",
			"alpha": "~1.5.0",
		},
	}
	deps, err := c.Validate(silentLogger())
	require.NoError(t, err)
	assert.Equal(t, []chain.Dependency{
		{Name: "alpha", Constraint: "~1.5.0"},
		{Name: "zeta", Constraint: "^2.0.0"},
	}, deps)
}

func TestValidateBadName(t *testing.T) {
	c := &Config{Name: "Bad Name", Version: "1.0.0"}
	_, err := c.Validate(silentLogger())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestValidateBadVersion(t *testing.T) {
	c := &Config{Name: "ok", Version: "not-semver"}
	_, err := c.Validate(silentLogger())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestValidateDependencyHandling(t *testing.T) {
	c := &Config{
		Name:    "ok",
		Version: "1.0.0",
		Dependencies: map[string]any{
			"empty":     "",
			"nonstring": 42,
			"weird":     "not a real range",
			"fine":      "^1.0.0",
		},
	}
	deps, err := c.Validate(silentLogger())
	require.NoError(t, err)
	// empty and non-string dropped; the malformed range is preserved
	assert.Equal(t, []chain.Dependency{
		{Name: "fine", Constraint: "^1.0.0"},
		{Name: "weird", Constraint: "not a real range"},
	}, deps)
}

func TestValidateBadDependencyName(t *testing.T) {
	c := &Config{
		Name:         "ok",
		Version:      "1.0.0",
		Dependencies: map[string]any{"Bad Dep": "^1.0.0"},
	}
	_, err := c.Validate(silentLogger())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
