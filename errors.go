package lockmail

import (
	"fmt"
	"sort"
	"strings"
)

// KeyResolutionError collects per-recipient capability-resolution failures.
// Resolution keeps going when one recipient fails; callers get the resolved
// preferences for the remaining recipients alongside this error and decide
// whether to proceed.
type KeyResolutionError struct {
	Failures map[string]error
}

func (err *KeyResolutionError) Error() string {
	emails := make([]string, 0, len(err.Failures))

	for email := range err.Failures {
		emails = append(emails, email)
	}

	sort.Strings(emails)

	return fmt.Sprintf("failed to resolve keys for %v", strings.Join(emails, ", "))
}

// EncryptionError is a failure to build one recipient's encrypted package.
// Any single EncryptionError aborts the whole send attempt.
type EncryptionError struct {
	Email string
	Err   error
}

func (err *EncryptionError) Error() string {
	return fmt.Sprintf("failed to encrypt for %v: %v", err.Email, err.Err)
}

func (err *EncryptionError) Unwrap() error {
	return err.Err
}

// SRPSetupError is a failure to produce the password verifier material for
// an encrypted-outside recipient. It is fatal to the send attempt; an
// encrypted-outside recipient is never silently downgraded to cleartext.
type SRPSetupError struct {
	Err error
}

func (err *SRPSetupError) Error() string {
	return fmt.Sprintf("failed to set up outside-encryption auth: %v", err.Err)
}

func (err *SRPSetupError) Unwrap() error {
	return err.Err
}

// DecryptionError is returned when a message body decrypts under none of the
// candidate keys. It carries the first underlying cause.
type DecryptionError struct {
	Attempts int
	Err      error
}

func (err *DecryptionError) Error() string {
	return fmt.Sprintf("failed to decrypt message with any of %d keys: %v", err.Attempts, err.Err)
}

func (err *DecryptionError) Unwrap() error {
	return err.Err
}

// SendRejectedError is returned when the API rejects a send request.
// Recoverable rejections (bad recipient) guide the user back to the draft;
// everything else may be retried as-is.
type SendRejectedError struct {
	Code        Code
	Message     string
	Recoverable bool
}

func (err *SendRejectedError) Error() string {
	return fmt.Sprintf("send rejected (%d): %v", err.Code, err.Message)
}

// ErrSendInFlight is returned when a send is attempted for a message that
// already has a send attempt in flight.
var ErrSendInFlight = fmt.Errorf("a send attempt for this message is already in flight")
