// Package vaultcrypto encrypts and decrypts the seed at rest under a
// user-chosen password.
package vaultcrypto

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// Version is the only envelope format version this package writes and
// understands. A Decrypt call against any other version is refused.
const Version byte = 1

const (
	saltSize  = 16
	nonceSize = chacha20poly1305.NonceSize
	keySize   = chacha20poly1305.KeySize
)

// KDFParams are the Argon2id cost parameters, stored alongside the
// ciphertext so a vault encrypted under one cost profile can still be
// decrypted after the running defaults change.
type KDFParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDFParams are the parameters used unless the caller overrides
// them via configuration: m=64MiB, t=3, p=1.
func DefaultKDFParams() KDFParams {
	return KDFParams{MemoryKiB: 65536, Iterations: 3, Parallelism: 1}
}

// Envelope is the on-disk representation of an encrypted seed.
type Envelope struct {
	Version    byte
	Salt       []byte
	KDFParams  KDFParams
	Nonce      []byte
	Ciphertext []byte // includes the 16-byte AEAD tag
}

func deriveKey(password string, salt []byte, params KDFParams) []byte {
	return argon2.IDKey([]byte(password), salt, params.Iterations, params.MemoryKiB, params.Parallelism, keySize)
}

// Encrypt produces a fresh Envelope wrapping seedBytes under password; the
// length of seedBytes is not checked. A new random salt and nonce are generated for every call, so
// the same seed encrypted twice never reuses a salt+nonce pair.
func Encrypt(password string, seedBytes []byte, params KDFParams) (*Envelope, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	key := deriveKey(password, salt, params)
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	ciphertext := aead.Seal(nil, nonce, seedBytes, nil)

	return &Envelope{
		Version:    Version,
		Salt:       salt,
		KDFParams:  params,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}, nil
}

// Decrypt recovers the plaintext seed from env under password. A wrong
// password surfaces as vaulterr.KindWrongPassword (the AEAD tag check
// fails); an envelope with an unrecognized Version surfaces as
// vaulterr.KindVaultVersionUnsupported before any key derivation runs.
func Decrypt(password string, env *Envelope) ([]byte, error) {
	if env.Version != Version {
		return nil, vaulterr.Wrap(vaulterr.KindVaultVersionUnsupported, nil, "unsupported vault envelope version %d", env.Version)
	}

	key := deriveKey(password, env.Salt, env.KDFParams)
	defer zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}

	seedBytes, err := aead.Open(nil, env.Nonce, env.Ciphertext, nil)
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindWrongPassword, err, "wrong password")
	}

	return seedBytes, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
