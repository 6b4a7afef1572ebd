// Package keystore wraps the single encrypted V3 wallet file at
// ~/.tacopkm/keystore.json.
package keystore

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	gethkeystore "github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"

	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/util"
)

const FileName = "keystore.json"

// Scrypt difficulty for new keystore files. Tests dial these down.
var (
	ScryptN = gethkeystore.StandardScryptN
	ScryptP = gethkeystore.StandardScryptP
)

// Store points at one keystore file. Overwrite confirmation is the command
// layer's job; Create and Import clobber unconditionally.
type Store struct {
	path string
}

// Default returns the store at the standard location.
func Default() (*Store, error) {
	dir, err := util.ConfigDir()
	if err != nil {
		return nil, err
	}
	return At(filepath.Join(dir, FileName)), nil
}

// At returns a store for an explicit file path.
func At(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Exists() bool {
	return util.Exists(s.path)
}

// Create generates a fresh key and writes it encrypted under password.
func (s *Store) Create(password string) (common.Address, error) {
	if password == "" {
		return common.Address{}, errs.New(errs.KindAuth, "a non-empty password is required")
	}
	key, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, errs.Wrap(errs.KindUnknown, err, "failed to generate key")
	}
	return s.write(key, password)
}

// Import encrypts an existing hex private key under password.
func (s *Store) Import(hexKey, password string) (common.Address, error) {
	if password == "" {
		return common.Address{}, errs.New(errs.KindAuth, "a non-empty password is required")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return common.Address{}, errs.New(errs.KindValidation, "invalid private key: %s", err)
	}
	return s.write(key, password)
}

func (s *Store) write(key *ecdsa.PrivateKey, password string) (common.Address, error) {
	k := &gethkeystore.Key{
		Id:         uuid.New(),
		Address:    crypto.PubkeyToAddress(key.PublicKey),
		PrivateKey: key,
	}
	data, err := gethkeystore.EncryptKey(k, password, ScryptN, ScryptP)
	if err != nil {
		return common.Address{}, errs.Wrap(errs.KindUnknown, err, "failed to encrypt key")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return common.Address{}, errs.Wrap(errs.KindUnknown, err, "failed to create %s", filepath.Dir(s.path))
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return common.Address{}, errs.Wrap(errs.KindUnknown, err, "failed to write %s", s.path)
	}
	return k.Address, nil
}

// Address reads the address field of the V3 JSON without decrypting. It
// never needs a password.
func (s *Store) Address() (common.Address, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return common.Address{}, errs.New(errs.KindKeystoreMissing, "no wallet found at %s", s.path).
			WithHint("run 'tpkm wallet create' or 'tpkm wallet import <privateKey>' first")
	}
	if err != nil {
		return common.Address{}, errs.Wrap(errs.KindKeystoreCorrupt, err, "failed to read %s", s.path)
	}
	var v3 struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &v3); err != nil {
		return common.Address{}, errs.Wrap(errs.KindKeystoreCorrupt, err, "keystore %s is not valid JSON", s.path)
	}
	if !common.IsHexAddress(v3.Address) {
		return common.Address{}, errs.New(errs.KindKeystoreCorrupt, "keystore %s has no usable address field", s.path)
	}
	return common.HexToAddress(v3.Address), nil
}

// Decrypt recovers the private key. A wrong password surfaces as AUTH.
func (s *Store) Decrypt(password string) (*Wallet, error) {
	if password == "" {
		return nil, errs.New(errs.KindAuth, "a non-empty password is required")
	}
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, errs.New(errs.KindKeystoreMissing, "no wallet found at %s", s.path).
			WithHint("run 'tpkm wallet create' or 'tpkm wallet import <privateKey>' first")
	}
	if err != nil {
		return nil, errs.Wrap(errs.KindKeystoreCorrupt, err, "failed to read %s", s.path)
	}
	key, err := gethkeystore.DecryptKey(data, password)
	if err != nil {
		if errors.Is(err, gethkeystore.ErrDecrypt) {
			return nil, errs.New(errs.KindAuth, "incorrect wallet password")
		}
		return nil, errs.Wrap(errs.KindKeystoreCorrupt, err, "keystore %s could not be decrypted", s.path)
	}
	return &Wallet{Address: key.Address, key: key.PrivateKey}, nil
}

// Wallet is a decrypted signing identity for the rest of the session.
type Wallet struct {
	Address common.Address

	key *ecdsa.PrivateKey
}

// NewWallet wraps a raw private key; used by tests.
func NewWallet(key *ecdsa.PrivateKey) *Wallet {
	return &Wallet{Address: crypto.PubkeyToAddress(key.PublicKey), key: key}
}

// TransactOpts builds an EIP-155 signer for the given chain.
func (w *Wallet) TransactOpts(chainID *big.Int) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainID)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnknown, err, "failed to build transaction signer")
	}
	return opts, nil
}
