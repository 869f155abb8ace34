package vault

import (
	"bytes"
	"fmt"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

const (
	// Magic identifies the one supported container format.
	Magic = "KF1"
	// SaltSize is the length of the per-encryption PBKDF2 salt.
	SaltSize = 16
	// NonceSize is the length of the GCM nonce.
	NonceSize = 12
	// TagSize is the length of the GCM authentication tag.
	TagSize = 16

	// HeaderSize is the framing that precedes the ciphertext.
	HeaderSize = len(Magic) + SaltSize + NonceSize
	// MinSize is the smallest well-formed container (empty plaintext).
	MinSize = HeaderSize + TagSize
)

// Container is a parsed, read-only view of an encrypted blob. It owns copies
// of every field, so the blob it was parsed from may be reused by the caller.
type Container struct {
	salt   [SaltSize]byte
	nonce  [NonceSize]byte
	sealed []byte
}

// Parse validates the framing of blob and splits it into its fields.
// It does not touch the key or the ciphertext, so a well-framed blob with a
// bad tag parses fine and only fails later in Open.
func Parse(blob []byte) (*Container, error) {
	if len(blob) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ferrors.ErrMalformedContainer, len(blob), HeaderSize)
	}
	if !bytes.Equal(blob[:len(Magic)], []byte(Magic)) {
		return nil, fmt.Errorf("%w: unknown magic %q", ferrors.ErrMalformedContainer, blob[:len(Magic)])
	}

	c := &Container{sealed: bytes.Clone(blob[HeaderSize:])}
	copy(c.salt[:], blob[len(Magic):len(Magic)+SaltSize])
	copy(c.nonce[:], blob[len(Magic)+SaltSize:HeaderSize])
	return c, nil
}

// Salt returns a copy of the KDF salt.
func (c *Container) Salt() []byte { return bytes.Clone(c.salt[:]) }

// Nonce returns a copy of the GCM nonce.
func (c *Container) Nonce() []byte { return bytes.Clone(c.nonce[:]) }

// Sealed returns a copy of the ciphertext with its trailing tag.
func (c *Container) Sealed() []byte { return bytes.Clone(c.sealed) }

// Len is the size of the framed container in bytes.
func (c *Container) Len() int { return HeaderSize + len(c.sealed) }

// Bytes re-emits the exact framing the container was parsed from.
func (c *Container) Bytes() []byte {
	out := make([]byte, 0, c.Len())
	out = append(out, Magic...)
	out = append(out, c.salt[:]...)
	out = append(out, c.nonce[:]...)
	return append(out, c.sealed...)
}
