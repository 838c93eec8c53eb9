package hxform

import "github.com/pthm/hxform/lib/encoding"

// Encoder turns a form snapshot into a state token and back. Tokens are
// signed by default and sealed with AES-GCM when sensitive.
type Encoder = encoding.Encoder

// NewEncoder returns an Encoder keyed with key. The same key signs and
// seals tokens.
func NewEncoder(key []byte) (*Encoder, error) {
	return encoding.NewEncoder(key)
}
