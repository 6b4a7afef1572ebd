package keystore

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacopkm/tpkm/internal/errs"
)

// hardhat's first well-known development key
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testKeyAddr = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestMain(m *testing.M) {
	ScryptN = gethkeystore.LightScryptN
	ScryptP = gethkeystore.LightScryptP
	os.Exit(m.Run())
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return At(filepath.Join(t.TempDir(), FileName))
}

func TestCreateAddressDecryptAgree(t *testing.T) {
	s := testStore(t)
	created, err := s.Create("hunter22")
	require.NoError(t, err)
	require.True(t, s.Exists())

	addr, err := s.Address()
	require.NoError(t, err)
	assert.Equal(t, created, addr)

	w, err := s.Decrypt("hunter22")
	require.NoError(t, err)
	assert.Equal(t, created, w.Address)
}

func TestImportKnownKey(t *testing.T) {
	s := testStore(t)
	for _, hexKey := range []string{testKeyHex, "0x" + testKeyHex} {
		addr, err := s.Import(hexKey, "pw")
		require.NoError(t, err)
		assert.Equal(t, testKeyAddr, addr.Hex())
	}
}

func TestImportInvalidKey(t *testing.T) {
	s := testStore(t)
	_, err := s.Import("zz-not-hex", "pw")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestWrongPassword(t *testing.T) {
	s := testStore(t)
	_, err := s.Create("right")
	require.NoError(t, err)

	_, err = s.Decrypt("wrong")
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))
}

func TestEmptyPasswordRejected(t *testing.T) {
	s := testStore(t)
	_, err := s.Create("")
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))
	_, err = s.Import(testKeyHex, "")
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))
	_, err = s.Decrypt("")
	assert.Equal(t, errs.KindAuth, errs.KindOf(err))
}

func TestMissingKeystore(t *testing.T) {
	s := testStore(t)
	_, err := s.Address()
	assert.Equal(t, errs.KindKeystoreMissing, errs.KindOf(err))
	_, err = s.Decrypt("pw")
	assert.Equal(t, errs.KindKeystoreMissing, errs.KindOf(err))
}

func TestCorruptKeystore(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0600))
	_, err := s.Address()
	assert.Equal(t, errs.KindKeystoreCorrupt, errs.KindOf(err))

	require.NoError(t, os.WriteFile(s.Path(), []byte(`{"version":3}`), 0600))
	_, err = s.Address()
	assert.Equal(t, errs.KindKeystoreCorrupt, errs.KindOf(err))
}

func TestTransactOpts(t *testing.T) {
	s := testStore(t)
	_, err := s.Import(testKeyHex, "pw")
	require.NoError(t, err)
	w, err := s.Decrypt("pw")
	require.NoError(t, err)

	opts, err := w.TransactOpts(big.NewInt(31337))
	require.NoError(t, err)
	assert.Equal(t, w.Address, opts.From)
}
