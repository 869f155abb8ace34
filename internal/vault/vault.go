package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	ferrors "github.com/andresmejia3/facecrypt/internal/errors"
)

const (
	// KeySize is the AES-256 key length produced by DeriveKey.
	KeySize = 32
	// DefaultIterations is the PBKDF2 work factor.
	DefaultIterations = 200_000
)

// DeriveKey stretches password into a KeySize key with PBKDF2-HMAC-SHA256.
// The password is used as its UTF-8 bytes.
func DeriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeySize, sha256.New)
}

// Sealer encrypts and decrypts containers. The zero value is not usable; use
// NewSealer. A Sealer holds no mutable state and is safe for concurrent use.
type Sealer struct {
	// Rand supplies salts and nonces. It must be a cryptographically secure
	// source; a general-purpose PRNG breaks the (key, nonce) uniqueness
	// guarantee.
	Rand io.Reader
	// Iterations is the PBKDF2 work factor. Encrypt and Decrypt must agree.
	Iterations int
}

// NewSealer returns a Sealer backed by crypto/rand with the default work factor.
func NewSealer() *Sealer {
	return &Sealer{Rand: rand.Reader, Iterations: DefaultIterations}
}

var defaultSealer = NewSealer()

// Encrypt seals plaintext under password with the default Sealer.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	return defaultSealer.Encrypt(plaintext, password)
}

// Decrypt opens a container with the default Sealer.
func Decrypt(blob []byte, password string) ([]byte, error) {
	return defaultSealer.Decrypt(blob, password)
}

// Encrypt draws a fresh salt and nonce, derives the key and returns
// Magic || salt || nonce || ciphertext || tag. The result is always
// MinSize+len(plaintext) bytes long.
func (s *Sealer) Encrypt(plaintext []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("encrypt: password: %w", ferrors.ErrEmptyInput)
	}

	out := make([]byte, HeaderSize, MinSize+len(plaintext))
	copy(out, Magic)
	salt := out[len(Magic) : len(Magic)+SaltSize]
	nonce := out[len(Magic)+SaltSize : HeaderSize]

	if _, err := io.ReadFull(s.Rand, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	if _, err := io.ReadFull(s.Rand, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	aead, err := newAEAD(DeriveKey(password, salt, s.Iterations))
	if err != nil {
		return nil, err
	}
	return aead.Seal(out, nonce, plaintext, nil), nil
}

// Decrypt validates the framing of blob, re-derives the key from the stored
// salt and opens the ciphertext. It returns ErrMalformedContainer for bad
// framing and ErrAuthenticationFailed when the tag does not verify.
func (s *Sealer) Decrypt(blob []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, fmt.Errorf("decrypt: password: %w", ferrors.ErrEmptyInput)
	}

	c, err := Parse(blob)
	if err != nil {
		return nil, err
	}
	return s.Open(c, password)
}

// Open decrypts an already parsed container.
func (s *Sealer) Open(c *Container, password string) ([]byte, error) {
	aead, err := newAEAD(DeriveKey(password, c.salt[:], s.Iterations))
	if err != nil {
		return nil, err
	}

	plaintext, err := aead.Open(nil, c.nonce[:], c.sealed, nil)
	if err != nil {
		return nil, ferrors.ErrAuthenticationFailed
	}
	if plaintext == nil {
		plaintext = []byte{}
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("creating GCM: %w", err)
	}
	return aead, nil
}
