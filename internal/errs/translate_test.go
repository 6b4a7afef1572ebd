package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRPCError mimics the geth provider error shape: a JSON-RPC code plus
// optional revert data.
type fakeRPCError struct {
	msg  string
	code int
	data any
}

func (e *fakeRPCError) Error() string        { return e.msg }
func (e *fakeRPCError) ErrorCode() int       { return e.code }
func (e *fakeRPCError) ErrorData() interface{} { return e.data }

func packRevertReason(t *testing.T, reason string) []byte {
	t.Helper()
	typ, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: typ}}.Pack(reason)
	require.NoError(t, err)
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	return append(selector, packed...)
}

func TestTranslateRevertStrings(t *testing.T) {
	tests := []struct {
		reason string
		kind   Kind
		detail Reason
	}{
		{"library does not exist", KindNotFound, ReasonNone},
		{"version does not exist", KindNotFound, ReasonNone},
		{"library name already registered", KindConflict, ReasonNameTaken},
		{"version already exists", KindConflict, ReasonVersionExists},
		{"license already owned", KindConflict, ReasonLicenseAlreadyOwned},
		{"caller is not the owner", KindPermission, ReasonNone},
		{"user is not authorized", KindPermission, ReasonNone},
		{"cannot authorize the owner", KindPermission, ReasonNone},
		{"cannot revoke the owner", KindPermission, ReasonNone},
		{"library is not private", KindPolicy, ReasonNone},
		{"library is private", KindPolicy, ReasonNone},
		{"private library cannot require a license", KindPolicy, ReasonNone},
		{"license is not required", KindPolicy, ReasonNone},
		{"cannot delete library with published versions", KindPolicy, ReasonNone},
		{"insufficient ether sent", KindFunds, ReasonNone},
	}

	for _, test := range tests {
		t.Run(test.reason, func(t *testing.T) {
			raw := &fakeRPCError{
				msg:  "execution reverted: " + test.reason,
				code: 3,
				data: packRevertReason(t, test.reason),
			}
			translated := Translate(fmt.Errorf("call failed: %w", raw))
			assert.Equal(t, test.kind, translated.Kind)
			assert.Equal(t, test.detail, translated.Reason)
			assert.Equal(t, test.reason, translated.Message)
		})
	}
}

func TestTranslateRPCMessages(t *testing.T) {
	tests := []struct {
		msg    string
		kind   Kind
		detail Reason
	}{
		{"insufficient funds for gas * price + value", KindFunds, ReasonNone},
		{"nonce too low", KindTx, ReasonNonceExpired},
		{"replacement transaction underpriced", KindTx, ReasonReplacementUnderpriced},
		{"user denied transaction signature", KindTx, ReasonUserDenied},
		{"cannot estimate gas; transaction may fail", KindTx, ReasonGasUnpredictable},
		{"dial tcp 127.0.0.1:8545: connect: connection refused", KindRPCUnreachable, ReasonNone},
		{"dial tcp: lookup rpc.example: no such host", KindRPCUnreachable, ReasonNone},
	}

	for _, test := range tests {
		t.Run(test.msg, func(t *testing.T) {
			translated := Translate(errors.New(test.msg))
			assert.Equal(t, test.kind, translated.Kind)
			assert.Equal(t, test.detail, translated.Reason)
		})
	}
}

func TestTranslatePrefixCleaning(t *testing.T) {
	translated := Translate(errors.New("Error: execution reverted: something odd happened"))
	assert.Equal(t, KindUnknown, translated.Kind)
	assert.Equal(t, "something odd happened", translated.Message)

	translated = Translate(errors.New("execution reverted"))
	assert.Equal(t, KindUnknown, translated.Kind)
	assert.Equal(t, "transaction reverted without a reason", translated.Message)
}

func TestTranslatePassThrough(t *testing.T) {
	orig := New(KindValidation, "bad name")
	translated := Translate(fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, translated)
}

func TestTranslateCustomErrorDecoder(t *testing.T) {
	raw := &fakeRPCError{
		msg:  "execution reverted",
		code: 3,
		data: []byte{0xde, 0xad, 0xbe, 0xef, 0x00},
	}
	decoder := func(data []byte) (string, bool) {
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef, 0x00}, data)
		return "library does not exist", true
	}
	translated := Translate(raw, decoder)
	assert.Equal(t, KindNotFound, translated.Kind)
}

func TestTranslateProviderCodeFallback(t *testing.T) {
	raw := &fakeRPCError{msg: "something provider specific", code: -32000}
	translated := Translate(raw)
	assert.Equal(t, KindTx, translated.Kind)

	raw = &fakeRPCError{msg: "something provider specific", code: -32601}
	translated = Translate(raw)
	assert.Equal(t, KindUnknown, translated.Kind)
}

func TestTranslateNil(t *testing.T) {
	assert.Nil(t, Translate(nil))
}

func TestKindHelpers(t *testing.T) {
	err := New(KindConflict, "boom").WithReason(ReasonVersionConflict).WithHint("retry with %s", "foo")
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("x: %w", err)))
	assert.Equal(t, ReasonVersionConflict, ReasonOf(err))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(err, KindFunds))
	assert.Equal(t, "retry with foo", err.Hint)
	assert.NotEmpty(t, err.ID)
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
