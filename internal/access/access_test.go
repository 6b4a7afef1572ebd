package access

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacopkm/tpkm/internal/chain"
	"github.com/tacopkm/tpkm/internal/errs"
)

var (
	ownerAddr  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	callerAddr = common.HexToAddress("0x2000000000000000000000000000000000000002")
)

type fakeRegistry struct {
	access  bool
	license bool
}

func (f *fakeRegistry) HasAccess(ctx context.Context, name string, user common.Address) (bool, error) {
	return f.access, nil
}

func (f *fakeRegistry) HasUserLicense(ctx context.Context, name string, user common.Address) (bool, error) {
	return f.license, nil
}

func lib(private, licenseRequired bool) *chain.LibraryInfo {
	return &chain.LibraryInfo{
		Owner:           ownerAddr,
		IsPrivate:       private,
		LicenseFee:      big.NewInt(0),
		LicenseRequired: licenseRequired,
	}
}

func TestDetermine(t *testing.T) {
	tests := []struct {
		name    string
		lib     *chain.LibraryInfo
		caller  *common.Address
		access  bool
		license bool
		want    State
	}{
		{"no wallet", lib(false, false), nil, false, false, NoWallet},
		{"no wallet private", lib(true, false), nil, false, false, NoWallet},
		{"owner", lib(true, false), &ownerAddr, false, false, Owner},
		{"owner licensed lib", lib(false, true), &ownerAddr, false, false, Owner},
		{"public open", lib(false, false), &callerAddr, true, false, PublicOpen},
		{"licensed owned", lib(false, true), &callerAddr, true, true, PublicLicensedOwned},
		{"licensed unowned", lib(false, true), &callerAddr, false, false, PublicLicensedUnowned},
		{"private authorized", lib(true, false), &callerAddr, true, false, PrivateAuthorized},
		{"private unauthorized", lib(true, false), &callerAddr, false, false, PrivateUnauthorized},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reg := &fakeRegistry{access: test.access, license: test.license}
			state, err := Determine(context.Background(), reg, "lib", test.lib, test.caller)
			require.NoError(t, err)
			assert.Equal(t, test.want, state)
		})
	}
}

func TestDetermineBadRecord(t *testing.T) {
	_, err := Determine(context.Background(), &fakeRegistry{}, "lib", lib(true, true), &callerAddr)
	require.Error(t, err)
	assert.Equal(t, errs.KindBadRecord, errs.KindOf(err))
}

func TestGrantedAndViewable(t *testing.T) {
	assert.True(t, Owner.Granted())
	assert.True(t, PublicOpen.Granted())
	assert.True(t, PublicLicensedOwned.Granted())
	assert.True(t, PrivateAuthorized.Granted())
	assert.False(t, PublicLicensedUnowned.Granted())
	assert.False(t, PrivateUnauthorized.Granted())
	assert.False(t, NoWallet.Granted())

	assert.True(t, Viewable(NoWallet, lib(false, false)))
	assert.False(t, Viewable(NoWallet, lib(true, false)))
	assert.False(t, Viewable(NoWallet, lib(false, true)))
	assert.True(t, Viewable(PrivateAuthorized, lib(true, false)))
}

func TestDenialKinds(t *testing.T) {
	for _, state := range []State{PublicLicensedUnowned, PrivateUnauthorized, NoWallet} {
		err := Denial(state, "foo", lib(true, false))
		assert.Equal(t, errs.KindPermission, errs.KindOf(err), string(state))
		assert.NotEmpty(t, err.Hint)
	}
}
