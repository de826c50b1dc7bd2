// Package seed derives the BIP39 seed and chain-specific child keys from it.
package seed

import (
	"crypto/sha512"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

// Length is the size in bytes of a BIP39 seed.
const Length = 64

const pbkdf2Iterations = 2048

// New derives the 64-byte seed from an NFKD-normalized mnemonic phrase and
// an optional passphrase, via PBKDF2-HMAC-SHA512 with 2048 iterations.
func New(mnemonic string, passphrase string) []byte {
	normMnemonic := norm.NFKD.String(mnemonic)
	normPassphrase := norm.NFKD.String(passphrase)
	salt := append([]byte("mnemonic"), normPassphrase...)
	return pbkdf2.Key([]byte(normMnemonic), salt, pbkdf2Iterations, Length, sha512.New)
}
