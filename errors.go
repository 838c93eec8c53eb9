package hxform

import (
	"errors"

	"github.com/pthm/hxform/lib/encoding"
)

// Configuration errors. These indicate a mistake in how a field was
// registered or set and are returned synchronously from the call.
var (
	ErrInvalidInputType     = errors.New("hxform: invalid input type")
	ErrMissingRadioValue    = errors.New("hxform: radio value is required for radio input type")
	ErrMissingCheckboxValue = errors.New("hxform: checkbox value is required for checkbox input type")
	ErrNotSequence          = errors.New("hxform: value should be a sequence for multiple select fields")
)

// Transport errors.
var (
	ErrUnknownField     = errors.New("hxform: unknown field")
	ErrUnknownEvent     = errors.New("hxform: unknown event")
	ErrInvalidFormat    = errors.New("hxform: invalid state format")
	ErrSignatureInvalid = errors.New("hxform: state signature verification failed")
	ErrDecryptFailed    = errors.New("hxform: state decryption failed")
)

// IsConfigError checks if err is a field configuration error.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidInputType) ||
		errors.Is(err, ErrMissingRadioValue) ||
		errors.Is(err, ErrMissingCheckboxValue) ||
		errors.Is(err, ErrNotSequence)
}

// IsNotFound checks if err refers to a field or event the form does not know.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUnknownField) || errors.Is(err, ErrUnknownEvent)
}

// IsDecryptionError checks if err is a state decryption or signature error.
func IsDecryptionError(err error) bool {
	return errors.Is(err, ErrDecryptFailed) || errors.Is(err, ErrSignatureInvalid)
}

// wrapEncodingError maps encoding package errors to hxform sentinels.
func wrapEncodingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, encoding.ErrInvalidFormat):
		return ErrInvalidFormat
	case errors.Is(err, encoding.ErrSignatureInvalid):
		return ErrSignatureInvalid
	case errors.Is(err, encoding.ErrDecryptFailed):
		return ErrDecryptFailed
	}
	return err
}
