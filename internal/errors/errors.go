package errors

import "errors"

// Input errors are reported before any image or crypto work starts.
var (
	// ErrEmptyInput indicates a required upload is missing or the password is empty.
	ErrEmptyInput = errors.New("empty input")

	// ErrDecodeFailure indicates the bytes are not a valid or recognizable image.
	ErrDecodeFailure = errors.New("not a readable image")
)

// Container errors are returned by the codec when opening an encrypted file.
var (
	// ErrMalformedContainer indicates the blob is too short or carries an unknown magic.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrAuthenticationFailed indicates the integrity tag did not verify. A wrong
	// password and a corrupted or tampered file are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// IsKnown reports whether err matches any failure in the taxonomy.
func IsKnown(err error) bool {
	return errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrDecodeFailure) ||
		errors.Is(err, ErrMalformedContainer) ||
		errors.Is(err, ErrAuthenticationFailed)
}
