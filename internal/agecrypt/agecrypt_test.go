package agecrypt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/agecrypt"
)

func TestMain(m *testing.M) {
	agecrypt.SetScryptWorkFactor(10)
	m.Run()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()
	plaintext := []byte("this is secret session data")
	password := "strong-passphrase-123" // gitleaks:allow

	ciphertext, err := agecrypt.Encrypt(plaintext, password)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, ciphertext)
	assert.NotEmpty(t, ciphertext)

	decrypted, err := agecrypt.Decrypt(ciphertext, password)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptWrongPassword(t *testing.T) {
	t.Parallel()
	ciphertext, err := agecrypt.Encrypt([]byte("secret data"), "correct-password") // gitleaks:allow
	require.NoError(t, err)

	_, err = agecrypt.Decrypt(ciphertext, "wrong-password")
	assert.Error(t, err)
}

func TestEmptyPlaintext(t *testing.T) {
	t.Parallel()
	ciphertext, err := agecrypt.Encrypt([]byte{}, "password") // gitleaks:allow
	require.NoError(t, err)

	decrypted, err := agecrypt.Decrypt(ciphertext, "password") // gitleaks:allow
	require.NoError(t, err)
	assert.Empty(t, decrypted)
}

func TestEmptyPasswordRejected(t *testing.T) {
	t.Parallel()
	_, err := agecrypt.Encrypt([]byte("data"), "")
	assert.Error(t, err)
}

func TestInvalidCiphertext(t *testing.T) {
	t.Parallel()
	_, err := agecrypt.Decrypt([]byte("not valid ciphertext"), "password") // gitleaks:allow
	assert.Error(t, err)
}
