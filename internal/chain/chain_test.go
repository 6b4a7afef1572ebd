package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledABILoads(t *testing.T) {
	registryABI, err := loadRegistryABI()
	require.NoError(t, err)

	consumed := []string{
		"getLibraryInfo",
		"getVersionNumbers",
		"getVersionInfo",
		"hasAccess",
		"hasUserLicense",
		"getAllLibraryNames",
		"owner",
		"registerLibrary",
		"publishVersion",
		"deprecateVersion",
		"authorizeUser",
		"revokeAuthorization",
		"deleteLibrary",
		"setLibraryLicense",
		"purchaseLibraryLicense",
		"transferOwnership",
	}
	for _, name := range consumed {
		_, ok := registryABI.Methods[name]
		assert.True(t, ok, "ABI is missing %s", name)
	}

	assert.Equal(t, "payable", registryABI.Methods["purchaseLibraryLicense"].StateMutability)
	assert.Len(t, registryABI.Methods["getLibraryInfo"].Outputs, 7)
	assert.Len(t, registryABI.Methods["getVersionInfo"].Outputs, 5)
}

func TestCustomErrorDecoderIgnoresUnknownData(t *testing.T) {
	registryABI, err := loadRegistryABI()
	require.NoError(t, err)
	decode := customErrorDecoder(registryABI)
	_, ok := decode([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	assert.False(t, ok)
}
