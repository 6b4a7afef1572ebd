package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tacopkm/tpkm/internal/errs"
)

// Registry is the typed facade over the registry contract. Reads work on
// any client; writes need an attached wallet and await one confirmation.
type Registry struct {
	client  *Client
	bound   *bind.BoundContract
	decoder errs.RevertDecoder
}

func (r *Registry) translate(err error) *errs.Error {
	return errs.Translate(err, r.decoder)
}

func (r *Registry) call(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	if err := r.bound.Call(&bind.CallOpts{Context: ctx}, out, method, args...); err != nil {
		return r.translate(err)
	}
	return nil
}

// LibraryInfo fetches the library record for name. A record that claims to
// be both private and license-required violates the contract invariant and
// is reported as BAD_RECORD.
func (r *Registry) LibraryInfo(ctx context.Context, name string) (*LibraryInfo, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "getLibraryInfo", name); err != nil {
		return nil, err
	}
	info := &LibraryInfo{
		Owner:           *abi.ConvertType(out[0], new(common.Address)).(*common.Address),
		Description:     *abi.ConvertType(out[1], new(string)).(*string),
		Tags:            *abi.ConvertType(out[2], new([]string)).(*[]string),
		IsPrivate:       *abi.ConvertType(out[3], new(bool)).(*bool),
		Language:        *abi.ConvertType(out[4], new(string)).(*string),
		LicenseFee:      abi.ConvertType(out[5], new(big.Int)).(*big.Int),
		LicenseRequired: *abi.ConvertType(out[6], new(bool)).(*bool),
	}
	if info.IsPrivate && info.LicenseRequired {
		return nil, errs.New(errs.KindBadRecord, "library %q is marked both private and license-required on-chain", name)
	}
	return info, nil
}

// VersionNumbers lists the published version strings for name in
// publication order.
func (r *Registry) VersionNumbers(ctx context.Context, name string) ([]string, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "getVersionNumbers", name); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

// VersionInfo fetches the record for one (name, version).
func (r *Registry) VersionInfo(ctx context.Context, name, version string) (*VersionInfo, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "getVersionInfo", name, version); err != nil {
		return nil, err
	}
	publishedAt := abi.ConvertType(out[2], new(big.Int)).(*big.Int)
	return &VersionInfo{
		IPFSHash:     *abi.ConvertType(out[0], new(string)).(*string),
		Publisher:    *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		PublishedAt:  time.Unix(publishedAt.Int64(), 0).UTC(),
		Deprecated:   *abi.ConvertType(out[3], new(bool)).(*bool),
		Dependencies: *abi.ConvertType(out[4], new([]Dependency)).(*[]Dependency),
	}, nil
}

// HasAccess reports whether user may read name.
func (r *Registry) HasAccess(ctx context.Context, name string, user common.Address) (bool, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "hasAccess", name, user); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// HasUserLicense reports whether user holds a purchased license for name.
func (r *Registry) HasUserLicense(ctx context.Context, name string, user common.Address) (bool, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "hasUserLicense", name, user); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// AllLibraryNames enumerates every registered library. Unbounded on-chain;
// best effort, may be slow on large registries.
func (r *Registry) AllLibraryNames(ctx context.Context) ([]string, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "getAllLibraryNames"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

// ContractOwner returns the registry contract's owner.
func (r *Registry) ContractOwner(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := r.call(ctx, &out, "owner"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// transact submits a write and waits for one confirmation. A transaction
// that mines but reverts still counts as a failure.
func (r *Registry) transact(ctx context.Context, method string, value *big.Int, args ...interface{}) (common.Hash, error) {
	opts, err := r.client.transactOpts(ctx, value)
	if err != nil {
		return common.Hash{}, err
	}
	tx, err := r.bound.Transact(opts, method, args...)
	if err != nil {
		return common.Hash{}, r.translate(err)
	}
	r.client.logger.Debugf("submitted %s as %s, waiting for confirmation", method, tx.Hash().Hex())
	receipt, err := bind.WaitMined(ctx, r.client.eth, tx)
	if err != nil {
		return tx.Hash(), r.translate(err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), errs.New(errs.KindTx, "transaction %s was mined but reverted", tx.Hash().Hex())
	}
	return tx.Hash(), nil
}

func (r *Registry) RegisterLibrary(ctx context.Context, name, description string, tags []string, language string, isPrivate bool) (common.Hash, error) {
	return r.transact(ctx, "registerLibrary", nil, name, description, tags, language, isPrivate)
}

func (r *Registry) PublishVersion(ctx context.Context, name, version, ipfsHash string, deps []Dependency) (common.Hash, error) {
	if deps == nil {
		deps = []Dependency{}
	}
	return r.transact(ctx, "publishVersion", nil, name, version, ipfsHash, deps)
}

func (r *Registry) DeprecateVersion(ctx context.Context, name, version string) (common.Hash, error) {
	return r.transact(ctx, "deprecateVersion", nil, name, version)
}

func (r *Registry) AuthorizeUser(ctx context.Context, name string, user common.Address) (common.Hash, error) {
	return r.transact(ctx, "authorizeUser", nil, name, user)
}

func (r *Registry) RevokeAuthorization(ctx context.Context, name string, user common.Address) (common.Hash, error) {
	return r.transact(ctx, "revokeAuthorization", nil, name, user)
}

func (r *Registry) DeleteLibrary(ctx context.Context, name string) (common.Hash, error) {
	return r.transact(ctx, "deleteLibrary", nil, name)
}

func (r *Registry) SetLicense(ctx context.Context, name string, fee *big.Int, required bool) (common.Hash, error) {
	return r.transact(ctx, "setLibraryLicense", nil, name, fee, required)
}

// PurchaseLicense sends value wei along with the purchase call.
func (r *Registry) PurchaseLicense(ctx context.Context, name string, value *big.Int) (common.Hash, error) {
	return r.transact(ctx, "purchaseLibraryLicense", value, name)
}

func (r *Registry) TransferOwnership(ctx context.Context, newOwner common.Address) (common.Hash, error) {
	return r.transact(ctx, "transferOwnership", nil, newOwner)
}
