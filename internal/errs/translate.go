package errs

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RevertDecoder attempts to decode raw revert data into a human message.
// The chain client supplies one built from the registry ABI's custom errors.
type RevertDecoder func(data []byte) (string, bool)

// rule is one row of the classification table: the first rule whose
// substring matches (case-insensitively) wins.
type rule struct {
	substr string
	kind   Kind
	reason Reason
	hint   string
}

// revertRules are the known registry revert strings. Order matters where one
// string is a prefix of another ("library is not private" before "library is
// private").
var revertRules = []rule{
	{substr: "library does not exist", kind: KindNotFound, hint: "run 'tpkm register <name>' to register it first"},
	{substr: "version does not exist", kind: KindNotFound},
	{substr: "no versions published", kind: KindNotFound},
	{substr: "library name already registered", kind: KindConflict, reason: ReasonNameTaken},
	{substr: "version already exists", kind: KindConflict, reason: ReasonVersionExists},
	{substr: "license already owned", kind: KindConflict, reason: ReasonLicenseAlreadyOwned},
	{substr: "caller is not the owner", kind: KindPermission},
	{substr: "caller is not the contract owner", kind: KindPermission},
	{substr: "cannot authorize the owner", kind: KindPermission},
	{substr: "cannot revoke the owner", kind: KindPermission},
	{substr: "not authorized", kind: KindPermission},
	{substr: "library is not private", kind: KindPolicy},
	{substr: "library is private", kind: KindPolicy},
	{substr: "private library cannot require a license", kind: KindPolicy},
	{substr: "license is not required", kind: KindPolicy},
	{substr: "cannot delete library with published versions", kind: KindPolicy},
	{substr: "insufficient ether sent", kind: KindFunds},
}

// rpcRules classify provider-level failures by message substring.
var rpcRules = []rule{
	{substr: "insufficient funds", kind: KindFunds, hint: "fund the wallet on the active network and retry"},
	{substr: "nonce too low", kind: KindTx, reason: ReasonNonceExpired},
	{substr: "nonce has already been used", kind: KindTx, reason: ReasonNonceExpired},
	{substr: "replacement transaction underpriced", kind: KindTx, reason: ReasonReplacementUnderpriced},
	{substr: "transaction underpriced", kind: KindTx, reason: ReasonReplacementUnderpriced},
	{substr: "user denied", kind: KindTx, reason: ReasonUserDenied},
	{substr: "cannot estimate gas", kind: KindTx, reason: ReasonGasUnpredictable},
	{substr: "unpredictable gas limit", kind: KindTx, reason: ReasonGasUnpredictable},
	{substr: "gas required exceeds allowance", kind: KindTx, reason: ReasonGasUnpredictable},
	{substr: "connection refused", kind: KindRPCUnreachable, hint: "check the RPC endpoint of the active network"},
	{substr: "no such host", kind: KindRPCUnreachable, hint: "check the RPC endpoint of the active network"},
	{substr: "i/o timeout", kind: KindRPCUnreachable},
}

var messagePrefixes = []string{
	"execution reverted:",
	"execution reverted",
	"rpc error:",
	"error:",
}

// Translate maps any chain or provider error onto the taxonomy. Extraction
// order: revert reason string, ABI-decoded custom error (via decoders),
// nested provider message, top-level message. Already-classified errors pass
// through unchanged.
func Translate(err error, decoders ...RevertDecoder) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if msg, ok := revertMessage(err, decoders); ok {
		return classify(msg, err)
	}
	return classify(deepestMessage(err), err)
}

// revertMessage pulls a revert reason out of the provider's error data:
// first the standard Error(string), then any caller-supplied custom error
// decoder.
func revertMessage(err error, decoders []RevertDecoder) (string, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return "", false
	}
	var raw []byte
	switch v := dataErr.ErrorData().(type) {
	case string:
		raw, _ = hexutil.Decode(v)
	case []byte:
		raw = v
	}
	if len(raw) < 4 {
		return "", false
	}
	if reason, uerr := abi.UnpackRevert(raw); uerr == nil {
		return reason, true
	}
	for _, decode := range decoders {
		if msg, ok := decode(raw); ok {
			return msg, true
		}
	}
	return "", false
}

// deepestMessage walks the unwrap chain and returns the innermost message,
// which for geth provider errors is the raw JSON-RPC message.
func deepestMessage(err error) string {
	msg := err.Error()
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return msg
		}
		err = next
		if m := err.Error(); m != "" {
			msg = m
		}
	}
}

func classify(msg string, cause error) *Error {
	cleaned := cleanMessage(msg)
	lowered := strings.ToLower(cleaned)
	for _, r := range revertRules {
		if strings.Contains(lowered, r.substr) {
			return tagged(r, cleaned, cause)
		}
	}
	for _, r := range rpcRules {
		if strings.Contains(lowered, r.substr) {
			return tagged(r, cleaned, cause)
		}
	}
	// provider-specific catch-all codes surface as TX when the message
	// itself matched nothing
	var rpcErr rpc.Error
	if errors.As(cause, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case -32000, -32003:
			return Wrap(KindTx, cause, "%s", cleaned)
		}
	}
	return Wrap(KindUnknown, cause, "%s", cleaned)
}

func tagged(r rule, message string, cause error) *Error {
	e := Wrap(r.kind, cause, "%s", message)
	e.Reason = r.reason
	e.Hint = r.hint
	return e
}

func cleanMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	for changed := true; changed; {
		changed = false
		for _, prefix := range messagePrefixes {
			rest := strings.TrimSpace(msg)
			if len(rest) >= len(prefix) && strings.EqualFold(rest[:len(prefix)], prefix) {
				msg = strings.TrimSpace(rest[len(prefix):])
				changed = true
			}
		}
	}
	if msg == "" {
		msg = "transaction reverted without a reason"
	}
	return msg
}
