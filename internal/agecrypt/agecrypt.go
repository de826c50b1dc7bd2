// Package agecrypt provides password-based symmetric encryption for
// ephemeral, low-stakes material such as a CLI session cache — data that
// sits outside the vault envelope's own KDF and AEAD invariants.
package agecrypt

import (
	"bytes"
	"fmt"
	"io"
	"sync/atomic"

	"filippo.io/age"
)

// scryptWorkFactor controls the scrypt work factor used by age's
// password-based recipients/identities. Default is 18 (age's secure
// default); tests lower it for speed.
var scryptWorkFactor atomic.Int32

func init() { //nolint:gochecknoinits // sets the secure default work factor
	scryptWorkFactor.Store(18)
}

// SetScryptWorkFactor sets the work factor for scrypt operations.
// Lower values are faster but less secure. Use only for testing.
// Range: 10 (fast/insecure) to 22 (very secure). Default: 18.
func SetScryptWorkFactor(factor int) {
	if factor < 10 {
		factor = 10
	} else if factor > 22 {
		factor = 22
	}
	scryptWorkFactor.Store(int32(factor))
}

// Encrypt encrypts plaintext using age with a password-based recipient.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(int(scryptWorkFactor.Load()))

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext using age with a password-based identity.
//
// The caller is responsible for zeroing the returned slice once done with
// it, the same as any other decrypted secret in this codebase.
func Decrypt(ciphertext []byte, password string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(int(scryptWorkFactor.Load()))

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}

	return plaintext, nil
}
