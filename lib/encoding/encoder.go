// Package encoding turns form-state snapshots into opaque tokens that can
// travel through a browser (hidden inputs, headers) and back.
//
// Two modes are supported:
//   - Signed (default): base64 msgpack + HMAC-SHA256, readable but tamper-proof
//   - Sealed (sensitive): AES-256-GCM, fully opaque
package encoding

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors returned by Decode.
var (
	ErrInvalidFormat    = errors.New("encoding: invalid token format")
	ErrSignatureInvalid = errors.New("encoding: signature verification failed")
	ErrDecryptFailed    = errors.New("encoding: decryption failed")
)

// sigLen is the truncated HMAC length in bytes (128 bits).
const sigLen = 16

// Encodable is implemented by snapshots that flatten themselves to a map.
type Encodable interface {
	EncodeState() map[string]any
}

// Decodable is implemented by snapshots that restore themselves from a map
// produced by Encodable.
type Decodable interface {
	DecodeState(map[string]any) error
}

// Encoder signs or seals snapshots with a single key.
type Encoder struct {
	key []byte
	gcm cipher.AEAD
}

// NewEncoder creates an encoder. Keys shorter than 32 bytes are stretched
// with SHA-256; longer keys are truncated to 32 bytes.
func NewEncoder(key []byte) (*Encoder, error) {
	switch {
	case len(key) < 32:
		h := sha256.Sum256(key)
		key = h[:]
	case len(key) > 32:
		key = key[:32]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("encoding: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("encoding: gcm: %w", err)
	}
	return &Encoder{key: key, gcm: gcm}, nil
}

// Encode packs v and returns a token. sensitive selects sealing over
// signing.
func (e *Encoder) Encode(v Encodable, sensitive bool) (string, error) {
	packed, err := msgpack.Marshal(v.EncodeState())
	if err != nil {
		return "", fmt.Errorf("encoding: marshal: %w", err)
	}
	if sensitive {
		return e.seal(packed)
	}
	return e.sign(packed), nil
}

// Decode verifies or opens token and restores it into v. Integers decode
// as int64/uint64 and floats as float64 regardless of their packed width.
func (e *Encoder) Decode(token string, sensitive bool, v Decodable) error {
	var (
		packed []byte
		err    error
	)
	if sensitive {
		packed, err = e.open(token)
	} else {
		packed, err = e.verify(token)
	}
	if err != nil {
		return err
	}

	dec := msgpack.NewDecoder(bytes.NewReader(packed))
	dec.UseLooseInterfaceDecoding(true)
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return v.DecodeState(data)
}

func (e *Encoder) mac(data []byte) []byte {
	m := hmac.New(sha256.New, e.key)
	m.Write(data)
	return m.Sum(nil)[:sigLen]
}

// sign produces "payload.signature", both base64url without padding.
func (e *Encoder) sign(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data) + "." +
		base64.RawURLEncoding.EncodeToString(e.mac(data))
}

func (e *Encoder) verify(token string) ([]byte, error) {
	payload, sig, found := strings.Cut(token, ".")
	if !found {
		return nil, ErrInvalidFormat
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if !hmac.Equal(got, e.mac(data)) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

// seal produces base64url(nonce || ciphertext).
func (e *Encoder) seal(data []byte) (string, error) {
	nonce := make([]byte, e.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("encoding: nonce: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(e.gcm.Seal(nonce, nonce, data, nil)), nil
}

func (e *Encoder) open(token string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	n := e.gcm.NonceSize()
	if len(raw) < n {
		return nil, ErrInvalidFormat
	}
	data, err := e.gcm.Open(nil, raw[:n], raw[n:], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return data, nil
}
