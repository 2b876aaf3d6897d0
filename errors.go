package authflow

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the flow's recoverable errors. The HTTP layer and
// callers match on these rather than on message strings.
const (
	TextCodeDuplicateEmail        = "DUPLICATE_EMAIL"
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeEmailDispatchFailed   = "EMAIL_DISPATCH_FAILED"
	TextCodeNoPendingVerification = "NO_PENDING_VERIFICATION"
	TextCodeCodeNotRequested      = "CODE_NOT_REQUESTED"
	TextCodeCodeExpired           = "CODE_EXPIRED"
	TextCodeIncorrectCode         = "INCORRECT_CODE"
	TextCodeTokenExpired          = "TOKEN_EXPIRED"
	TextCodeTokenMalformed        = "TOKEN_MALFORMED"
)

// ErrDuplicateEmail is returned by Register when the email is already taken.
var ErrDuplicateEmail = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrInvalidCredentials is returned by Login when no account matches.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials)

// ErrNoPendingVerification is returned by VerifyCode when nothing is in flight.
var ErrNoPendingVerification = goerrors.New("no pending verification", goerrors.CategoryValidation).
	WithTextCode(TextCodeNoPendingVerification).
	WithCode(goerrors.CodeBadRequest)

// ErrCodeNotRequested is returned by VerifyCode when the pending attempt never
// had a code generated (the user skipped the login step).
var ErrCodeNotRequested = goerrors.New("no verification code generated, login to request a code", goerrors.CategoryValidation).
	WithTextCode(TextCodeCodeNotRequested).
	WithCode(goerrors.CodeBadRequest)

// ErrCodeExpired is returned by VerifyCode past the code's expiry. The pending
// attempt is cleared before this error is returned.
var ErrCodeExpired = goerrors.New("code expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeCodeExpired)

// ErrIncorrectCode is returned by VerifyCode on a mismatch. The pending
// attempt survives so the user can retry until expiry.
var ErrIncorrectCode = goerrors.New("incorrect code", goerrors.CategoryAuth).
	WithTextCode(TextCodeIncorrectCode)

// ErrTokenExpired is returned by TokenService.Validate for expired tokens.
var ErrTokenExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned by TokenService.Validate for undecodable tokens.
var ErrTokenMalformed = goerrors.New("session token malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("string must not be empty")

// ErrMismatchedHashAndPassword is the normalized bcrypt mismatch error.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password")

// dispatchFailed converts a dispatcher error into the flow's taxonomy while
// preserving the dispatcher's own message for diagnostics.
func dispatchFailed(cause error) error {
	msg := cause.Error()

	var rich *goerrors.Error
	if goerrors.As(cause, &rich) && rich.Message != "" {
		msg = rich.Message
	}

	return goerrors.Wrap(cause, goerrors.CategoryOperation, msg).
		WithTextCode(TextCodeEmailDispatchFailed)
}

func matchTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// IsDuplicateEmail will check for duplicate email registration errors.
func IsDuplicateEmail(err error) bool {
	return matchTextCode(err, TextCodeDuplicateEmail)
}

// IsInvalidCredentials will check for failed credential lookups.
func IsInvalidCredentials(err error) bool {
	return matchTextCode(err, TextCodeInvalidCredentials)
}

// IsEmailDispatchFailed will check for mail relay delivery failures.
func IsEmailDispatchFailed(err error) bool {
	return matchTextCode(err, TextCodeEmailDispatchFailed)
}

// IsNoPendingVerification will check for a missing pending attempt.
func IsNoPendingVerification(err error) bool {
	return matchTextCode(err, TextCodeNoPendingVerification)
}

// IsCodeNotRequested will check for verification before a code was issued.
func IsCodeNotRequested(err error) bool {
	return matchTextCode(err, TextCodeCodeNotRequested)
}

// IsCodeExpired will check for expired entry codes.
func IsCodeExpired(err error) bool {
	return matchTextCode(err, TextCodeCodeExpired)
}

// IsIncorrectCode will check for mismatched entry codes.
func IsIncorrectCode(err error) bool {
	return matchTextCode(err, TextCodeIncorrectCode)
}
