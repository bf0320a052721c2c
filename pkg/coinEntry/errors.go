package coinEntry

import (
	"errors"
	"fmt"
)

// ErrorCode is the chain-agnostic failure kind reported in every signing output.
type ErrorCode int

const (
	OK ErrorCode = iota
	ErrorInvalidInput
	ErrorInvalidAddress
	ErrorInvalidChecksum
	ErrorPublicKeyTypeMismatch
	ErrorInsufficientFunds
	ErrorUnmatchedSignatureCount
	ErrorInvalidSighashType
	ErrorInvalidLeafHash
	ErrorInvalidLockTime
	ErrorMissingPrivateKey
	ErrorInvalidCallIndex
	ErrorInvalidRequestedTokenAmount
	ErrorNotImplemented
	ErrorNotSupported
	ErrorInternal
)

var errorCodeNames = map[ErrorCode]string{
	OK:                               "OK",
	ErrorInvalidInput:                "InvalidInput",
	ErrorInvalidAddress:              "InvalidAddress",
	ErrorInvalidChecksum:             "InvalidChecksum",
	ErrorPublicKeyTypeMismatch:       "PublicKeyTypeMismatch",
	ErrorInsufficientFunds:           "InsufficientFunds",
	ErrorUnmatchedSignatureCount:     "UnmatchedSignatureCount",
	ErrorInvalidSighashType:          "InvalidSighashType",
	ErrorInvalidLeafHash:             "InvalidLeafHash",
	ErrorInvalidLockTime:             "InvalidLockTime",
	ErrorMissingPrivateKey:           "MissingPrivateKey",
	ErrorInvalidCallIndex:            "InvalidCallIndex",
	ErrorInvalidRequestedTokenAmount: "InvalidRequestedTokenAmount",
	ErrorNotImplemented:              "NotImplemented",
	ErrorNotSupported:                "NotSupported",
	ErrorInternal:                    "Internal",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// SigningError is a typed failure carrying an ErrorCode and an optional cause.
type SigningError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// NewError creates a SigningError with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *SigningError {
	return &SigningError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a code and context message to err.
func WrapError(code ErrorCode, err error, message string) *SigningError {
	return &SigningError{Code: code, Message: message, Err: err}
}

func (e *SigningError) Error() string {
	if detail := e.detail(); detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, detail)
	}
	return e.Code.String()
}

func (e *SigningError) detail() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *SigningError) Unwrap() error {
	return e.Err
}

// Is matches any SigningError with the same code, so errors.Is(err, &SigningError{Code: X}) works
// without comparing messages.
func (e *SigningError) Is(target error) bool {
	var other *SigningError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code && other.Message == "" && other.Err == nil
}

// Code sentinels for errors.Is checks.
var (
	ErrInvalidInput            = &SigningError{Code: ErrorInvalidInput}
	ErrInvalidAddress          = &SigningError{Code: ErrorInvalidAddress}
	ErrPublicKeyTypeMismatch   = &SigningError{Code: ErrorPublicKeyTypeMismatch}
	ErrInsufficientFunds       = &SigningError{Code: ErrorInsufficientFunds}
	ErrUnmatchedSignatureCount = &SigningError{Code: ErrorUnmatchedSignatureCount}
	ErrInvalidSighashType      = &SigningError{Code: ErrorInvalidSighashType}
	ErrInvalidLeafHash         = &SigningError{Code: ErrorInvalidLeafHash}
	ErrInvalidLockTime         = &SigningError{Code: ErrorInvalidLockTime}
	ErrMissingPrivateKey       = &SigningError{Code: ErrorMissingPrivateKey}
	ErrNotSupported            = &SigningError{Code: ErrorNotSupported}
	ErrInternal                = &SigningError{Code: ErrorInternal}
)

// CodeOf extracts the ErrorCode of err. Untyped errors are reported as ErrorInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var se *SigningError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrorInternal
}

// Status is embedded in every signing and pre-signing output.
type Status struct {
	Error        ErrorCode `json:"error"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// SetError records err in the status. A nil err resets it to OK.
func (s *Status) SetError(err error) {
	if err == nil {
		s.Error, s.ErrorMessage = OK, ""
		return
	}
	var se *SigningError
	if errors.As(err, &se) {
		s.Error, s.ErrorMessage = se.Code, se.detail()
		return
	}
	s.Error, s.ErrorMessage = ErrorInternal, err.Error()
}

// Err converts the status back into an error, nil when OK.
func (s Status) Err() error {
	if s.Error == OK {
		return nil
	}
	return &SigningError{Code: s.Error, Message: s.ErrorMessage}
}

// Failed reports whether the status carries an error.
func (s Status) Failed() bool {
	return s.Error != OK
}
