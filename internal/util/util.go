package util

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ConfigDir returns the tpkm config directory (~/.tacopkm), creating it on
// first use.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".tacopkm")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// Exists returns true if the filename or directory specified by fn exists.
func Exists(fn string) bool {
	if _, err := os.Stat(fn); os.IsNotExist(err) {
		return false
	}
	return true
}

// MaxString truncates val to at most max characters, appending an ellipsis.
func MaxString(val string, max int) string {
	if len(val) > max {
		return val[:max] + "..."
	}
	return val
}

// Pluralize returns a human friendly count phrase.
func Pluralize(count int, singular string, plural string) string {
	switch count {
	case 0:
		return "no " + plural
	case 1:
		return "1 " + singular
	default:
		return fmt.Sprintf("%d %s", count, plural)
	}
}

const maxLibraryNameLength = 214

var libraryNameRe = regexp.MustCompile(`^[a-z0-9]+(?:[-_.][a-z0-9]+)*$`)

// ValidateLibraryName checks name against the registry naming rules:
// lowercase alphanumerics with internal '-', '_' or '.' separators, no
// leading or trailing separator, at most 214 characters.
func ValidateLibraryName(name string) error {
	if name == "" {
		return fmt.Errorf("library name cannot be empty")
	}
	if len(name) > maxLibraryNameLength {
		return fmt.Errorf("library name exceeds %d characters", maxLibraryNameLength)
	}
	if !libraryNameRe.MatchString(name) {
		return fmt.Errorf("invalid library name %q: use lowercase letters, digits and internal '-', '_' or '.' separators", name)
	}
	return nil
}

// SplitSpec splits a "name@version" argument into its parts. The version
// part is empty when the argument carries no '@'.
func SplitSpec(arg string) (name string, version string) {
	if i := strings.LastIndex(arg, "@"); i > 0 {
		return arg[:i], arg[i+1:]
	}
	return arg, ""
}

var (
	weiPerEth  = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	weiPerGwei = new(big.Int).Exp(big.NewInt(10), big.NewInt(9), nil)
)

// ParseFee parses a human fee string ("0.01 eth", "25 gwei", "100 wei")
// into integer wei. The zero aliases "", "0", "0 eth" and "none" all map to
// zero. The amount must resolve to a whole number of wei and must not be
// negative.
func ParseFee(s string) (*big.Int, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "0", "none":
		return new(big.Int), nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return nil, fmt.Errorf("invalid fee %q: expected \"<amount> <unit>\" with unit eth, ether, gwei or wei", s)
	}
	amount, unit := fields[0], fields[1]
	var scale *big.Int
	switch unit {
	case "eth", "ether":
		scale = weiPerEth
	case "gwei":
		scale = weiPerGwei
	case "wei":
		scale = big.NewInt(1)
	default:
		return nil, fmt.Errorf("invalid fee unit %q: expected eth, ether, gwei or wei", unit)
	}
	rat, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("invalid fee amount %q", amount)
	}
	if rat.Sign() < 0 {
		return nil, fmt.Errorf("fee cannot be negative")
	}
	rat.Mul(rat, new(big.Rat).SetInt(scale))
	if !rat.IsInt() {
		return nil, fmt.Errorf("fee %q is not a whole number of wei", s)
	}
	return rat.Num(), nil
}

// FormatEth renders a wei amount as a decimal ETH string with trailing
// zeros trimmed.
func FormatEth(wei *big.Int) string {
	if wei == nil || wei.Sign() == 0 {
		return "0"
	}
	rat := new(big.Rat).SetFrac(wei, weiPerEth)
	out := rat.FloatString(18)
	out = strings.TrimRight(out, "0")
	out = strings.TrimSuffix(out, ".")
	return out
}
