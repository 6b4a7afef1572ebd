// Package access is the single source of truth for whether a caller may
// read a (library, version). The installer pre-flight, the info renderer
// and the license commands all consult it.
package access

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
	"github.com/tacopkm/tpkm/internal/util"
)

// State is the gate's verdict for one (library, caller).
type State string

const (
	Owner                 State = "OWNER"
	PublicOpen            State = "PUBLIC_OPEN"
	PublicLicensedOwned   State = "PUBLIC_LICENSED_OWNED"
	PublicLicensedUnowned State = "PUBLIC_LICENSED_UNOWNED"
	PrivateAuthorized     State = "PRIVATE_AUTHORIZED"
	PrivateUnauthorized   State = "PRIVATE_UNAUTHORIZED"
	NoWallet              State = "NO_WALLET"
)

// Registry is the read surface the gate needs.
type Registry interface {
	HasAccess(ctx context.Context, name string, user common.Address) (bool, error)
	HasUserLicense(ctx context.Context, name string, user common.Address) (bool, error)
}

// Determine returns exactly one State for (lib, caller). A nil caller means
// no wallet is loaded. Records violating the contract invariant
// (private and license-required at once) surface as BAD_RECORD.
func Determine(ctx context.Context, reg Registry, name string, lib *chain.LibraryInfo, caller *common.Address) (State, error) {
	if lib.IsPrivate && lib.LicenseRequired {
		return "", errs.New(errs.KindBadRecord, "library %q is marked both private and license-required on-chain", name)
	}
	if caller == nil {
		return NoWallet, nil
	}
	if *caller == lib.Owner {
		return Owner, nil
	}
	granted, err := reg.HasAccess(ctx, name, *caller)
	if err != nil {
		return "", err
	}
	if !granted {
		if lib.LicenseRequired {
			return PublicLicensedUnowned, nil
		}
		if lib.IsPrivate {
			return PrivateUnauthorized, nil
		}
		return "", errs.New(errs.KindBadRecord, "registry denied access to the open library %q", name)
	}
	licensed, err := reg.HasUserLicense(ctx, name, *caller)
	if err != nil {
		return "", err
	}
	if licensed {
		return PublicLicensedOwned, nil
	}
	if lib.IsPrivate {
		return PrivateAuthorized, nil
	}
	return PublicOpen, nil
}

// Granted reports whether the state allows reading version content.
func (s State) Granted() bool {
	switch s {
	case Owner, PublicOpen, PublicLicensedOwned, PrivateAuthorized:
		return true
	}
	return false
}

// Viewable reports whether the library's metadata may be shown. Without a
// wallet, only fully open libraries are viewable.
func Viewable(s State, lib *chain.LibraryInfo) bool {
	if s.Granted() {
		return true
	}
	return s == NoWallet && !lib.IsPrivate && !lib.LicenseRequired
}

// Explain renders the one-line access annotation for a state.
func Explain(s State, name string, lib *chain.LibraryInfo) string {
	switch s {
	case Owner:
		return "you own this library"
	case PublicOpen:
		return "public library, open access"
	case PublicLicensedOwned:
		return "license purchased"
	case PublicLicensedUnowned:
		return fmt.Sprintf("requires a license (fee %s ETH)", util.FormatEth(lib.LicenseFee))
	case PrivateAuthorized:
		return "private library, you are authorized"
	case PrivateUnauthorized:
		return fmt.Sprintf("private library, authorization required from owner %s", lib.Owner.Hex())
	case NoWallet:
		return "no wallet loaded, showing public information only"
	}
	return string(s)
}

// Denial builds the abort error for a state that does not grant access.
func Denial(s State, name string, lib *chain.LibraryInfo) *errs.Error {
	switch s {
	case PublicLicensedUnowned:
		return errs.New(errs.KindPermission, "access to %q denied: a license is required (fee %s ETH)", name, util.FormatEth(lib.LicenseFee)).
			WithHint("run 'tpkm purchase-license %s' to buy one", name)
	case PrivateUnauthorized:
		return errs.New(errs.KindPermission, "access to %q denied: the library is private (owner %s)", name, lib.Owner.Hex()).
			WithHint("ask the owner to run 'tpkm authorize %s <your-address>'", name)
	case NoWallet:
		return errs.New(errs.KindPermission, "access to %q requires a wallet", name).
			WithHint("run 'tpkm wallet create' or 'tpkm wallet import <privateKey>' first")
	}
	return errs.New(errs.KindPermission, "access to %q denied", name)
}
