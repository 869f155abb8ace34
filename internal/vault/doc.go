// Package vault implements the password-protected container used to keep the
// original upload encrypted at rest.
//
// A container is framed as
//
//	offset 0   len 3    magic "KF1"
//	offset 3   len 16   salt
//	offset 19  len 12   nonce
//	offset 31  len N    ciphertext || 16-byte GCM tag
//
// The key is PBKDF2-HMAC-SHA256(password, salt, 200000) and the cipher is
// AES-256-GCM without associated data. The magic doubles as the format
// version: any other value is rejected as malformed.
package vault
