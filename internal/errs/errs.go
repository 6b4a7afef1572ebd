// Package errs defines the stable error taxonomy surfaced by every tpkm
// command and the translator that maps raw chain / RPC failures onto it.
package errs

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind is the user-visible error class. Every abort maps to exactly one.
type Kind string

const (
	KindConfigMissing   Kind = "CONFIG_MISSING"
	KindAuth            Kind = "AUTH"
	KindKeystoreMissing Kind = "KEYSTORE_MISSING"
	KindKeystoreCorrupt Kind = "KEYSTORE_CORRUPT"
	KindValidation      Kind = "VALIDATION"
	KindNotFound        Kind = "NOT_FOUND"
	KindConflict        Kind = "CONFLICT"
	KindPermission      Kind = "PERMISSION"
	KindPolicy          Kind = "POLICY"
	KindFunds           Kind = "FUNDS"
	KindTx              Kind = "TX"
	KindIPFSNotFound    Kind = "IPFS_NOT_FOUND"
	KindIPFSUnreachable Kind = "IPFS_UNREACHABLE"
	KindRPCUnreachable  Kind = "RPC_UNREACHABLE"
	KindBadRecord       Kind = "BAD_RECORD"
	KindUnknown         Kind = "UNKNOWN"
)

// Reason narrows a Kind where the taxonomy distinguishes siblings
// (the CONFLICT and TX umbrellas).
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonVersionConflict        Reason = "VERSION_CONFLICT"
	ReasonNameTaken              Reason = "NAME_TAKEN"
	ReasonVersionExists          Reason = "VERSION_EXISTS"
	ReasonLicenseAlreadyOwned    Reason = "LICENSE_ALREADY_OWNED"
	ReasonNonceExpired           Reason = "NONCE_EXPIRED"
	ReasonReplacementUnderpriced Reason = "REPLACEMENT_UNDERPRICED"
	ReasonUserDenied             Reason = "USER_DENIED"
	ReasonGasUnpredictable       Reason = "UNPREDICTABLE_GAS_LIMIT"
)

// Error is the typed error every core operation propagates upward. The
// command layer renders Message (and Hint, if present); ID is an incident
// tag shown only in debug output.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Hint    string
	ID      string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a classified error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		ID:      newIncidentID(),
	}
}

// Wrap classifies an underlying error while keeping it on the unwrap chain.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.cause = cause
	return e
}

// WithHint attaches a one-line suggestion rendered below the message.
func (e *Error) WithHint(format string, args ...any) *Error {
	e.Hint = fmt.Sprintf(format, args...)
	return e
}

// WithReason narrows the error inside its Kind umbrella.
func (e *Error) WithReason(r Reason) *Error {
	e.Reason = r
	return e
}

// KindOf reports the Kind of err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ReasonOf reports the Reason of err, if any.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}

// IsKind reports whether err (or anything it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func newIncidentID() string {
	return uuid.New().String()[:8]
}
