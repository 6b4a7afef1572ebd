package util

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLibraryName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "foo", true},
		{"with dash", "my-lib", true},
		{"with underscore", "my_lib", true},
		{"with dot", "my.lib", true},
		{"mixed separators", "a-b_c.d", true},
		{"digits", "lib2", true},
		{"empty", "", false},
		{"uppercase", "Foo", false},
		{"leading dash", "-foo", false},
		{"trailing dot", "foo.", false},
		{"double separator", "foo--bar", false},
		{"space", "my lib", false},
		{"too long", string(make([]byte, 0, 215)) + longName(215), false},
		{"at length limit", longName(214), true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ValidateLibraryName(test.input)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func longName(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'a'
	}
	return string(b)
}

func TestSplitSpec(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		version string
	}{
		{"foo", "foo", ""},
		{"foo@1.2.3", "foo", "1.2.3"},
		{"foo@^1.0.0", "foo", "^1.0.0"},
		{"foo@1.0.0-beta.1+build", "foo", "1.0.0-beta.1+build"},
		{"@foo", "@foo", ""},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			name, version := SplitSpec(test.input)
			assert.Equal(t, test.name, name)
			assert.Equal(t, test.version, version)
		})
	}
}

func TestParseFee(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantWei string
		wantErr bool
	}{
		{"empty", "", "0", false},
		{"bare zero", "0", "0", false},
		{"none alias", "none", "0", false},
		{"zero eth", "0 eth", "0", false},
		{"one eth", "1 eth", "1000000000000000000", false},
		{"ether unit", "1 ether", "1000000000000000000", false},
		{"fractional eth", "0.01 eth", "10000000000000000", false},
		{"gwei", "25 gwei", "25000000000000", false},
		{"wei", "100 wei", "100", false},
		{"case insensitive", "1 ETH", "1000000000000000000", false},
		{"negative", "-1 eth", "", true},
		{"fractional wei", "0.5 wei", "", true},
		{"missing unit", "12", "", true},
		{"bad unit", "1 doge", "", true},
		{"garbage", "lots of money", "", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseFee(test.input)
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			want, ok := new(big.Int).SetString(test.wantWei, 10)
			require.True(t, ok)
			assert.Zero(t, want.Cmp(got))
		})
	}
}

func TestFormatEth(t *testing.T) {
	eth := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 10)
		require.True(t, ok)
		return v
	}
	assert.Equal(t, "0", FormatEth(nil))
	assert.Equal(t, "0", FormatEth(big.NewInt(0)))
	assert.Equal(t, "1", FormatEth(eth("1000000000000000000")))
	assert.Equal(t, "0.01", FormatEth(eth("10000000000000000")))
	assert.Equal(t, "1.5", FormatEth(eth("1500000000000000000")))
	assert.Equal(t, "0.000000000000000001", FormatEth(big.NewInt(1)))
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "no libraries", Pluralize(0, "library", "libraries"))
	assert.Equal(t, "1 library", Pluralize(1, "library", "libraries"))
	assert.Equal(t, "3 libraries", Pluralize(3, "library", "libraries"))
}

// The phrase already carries the count; summary lines must not prefix it
// with the count again.
func TestPluralizeComposedSummaryLines(t *testing.T) {
	assert.Equal(t, "2 libraries installed to tpkm_installed_libs",
		fmt.Sprintf("%s installed to %s", Pluralize(2, "library", "libraries"), "tpkm_installed_libs"))
	assert.Equal(t, "1 library installed to tpkm_installed_libs",
		fmt.Sprintf("%s installed to %s", Pluralize(1, "library", "libraries"), "tpkm_installed_libs"))
	assert.Equal(t, `cannot delete "foo": it has 3 versions published`,
		fmt.Sprintf("cannot delete %q: it has %s published", "foo", Pluralize(3, "version", "versions")))
	assert.Equal(t, "2 dependencies recorded",
		fmt.Sprintf("%s recorded", Pluralize(2, "dependency", "dependencies")))
}
