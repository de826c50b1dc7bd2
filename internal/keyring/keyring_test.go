package keyring_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/keyring"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// testKDFParams trades Argon2id cost for test speed, the same way the
// teacher's age package exposes a lowered scrypt work factor for tests.
var testKDFParams = vaultcrypto.KDFParams{MemoryKiB: 8 * 1024, Iterations: 1, Parallelism: 1}

func newTestKeyring(opts ...keyring.Option) *keyring.Keyring {
	return keyring.New(append([]keyring.Option{keyring.WithKDFParams(testKDFParams)}, opts...)...)
}

func testSeed() []byte {
	s := make([]byte, seed.Length)
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

func TestCreateUnlocksImmediately(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	require.False(t, k.IsUnlocked())

	seedBytes := testSeed()
	err := k.Create(context.Background(), "password123", seedBytes)
	require.NoError(t, err)
	assert.True(t, k.IsUnlocked())

	got, err := k.Seed()
	require.NoError(t, err)
	assert.Equal(t, seedBytes, got)
}

func TestLockClearsSeed(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	require.NoError(t, k.Create(context.Background(), "password123", testSeed()))

	k.Lock()
	assert.False(t, k.IsUnlocked())

	_, err := k.Seed()
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindWalletLocked))
}

func TestUnlockRoundTrip(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	seedBytes := testSeed()
	require.NoError(t, k.Create(context.Background(), "correct horse", seedBytes))
	env := k.Envelope()
	k.Lock()

	k2 := newTestKeyring()
	require.NoError(t, k2.Unlock(context.Background(), "correct horse", env))
	got, err := k2.Seed()
	require.NoError(t, err)
	assert.Equal(t, seedBytes, got)
}

func TestUnlockWrongPassword(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	require.NoError(t, k.Create(context.Background(), "correct horse", testSeed()))
	env := k.Envelope()
	k.Lock()

	err := k.Unlock(context.Background(), "wrong password", env)
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindWrongPassword))
	assert.False(t, k.IsUnlocked())
}

func TestResetClearsEnvelopeToo(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	require.NoError(t, k.Create(context.Background(), "pw", testSeed()))
	require.NotNil(t, k.Envelope())

	k.Reset()
	assert.False(t, k.IsUnlocked())
	assert.Nil(t, k.Envelope())
}

func TestAutoLockExpiresSeed(t *testing.T) {
	t.Parallel()
	k := newTestKeyring(keyring.WithAutoLock(30 * time.Millisecond))
	require.NoError(t, k.Create(context.Background(), "pw", testSeed()))
	assert.True(t, k.IsUnlocked())

	assert.Eventually(t, func() bool {
		return !k.IsUnlocked()
	}, 500*time.Millisecond, 10*time.Millisecond)
}

func TestWithSeedTouchesAutoLockTimer(t *testing.T) {
	t.Parallel()
	k := newTestKeyring(keyring.WithAutoLock(80 * time.Millisecond))
	require.NoError(t, k.Create(context.Background(), "pw", testSeed()))

	// Keep touching the timer for longer than the auto-lock window; the
	// keyring must stay unlocked the whole time.
	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		err := k.WithSeed(func(seedBytes []byte) error {
			assert.Len(t, seedBytes, seed.Length)
			return nil
		})
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, k.IsUnlocked())
}

func TestCreateRejectsWrongSeedLength(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	err := k.Create(context.Background(), "pw", []byte{1, 2, 3})
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindInvalidInput))
}

func TestUnlockCachedSeedSkipsPasswordDerivation(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	seedBytes := testSeed()

	require.NoError(t, k.UnlockCachedSeed(seedBytes, nil))
	assert.True(t, k.IsUnlocked())

	got, err := k.Seed()
	require.NoError(t, err)
	assert.Equal(t, seedBytes, got)
	assert.Nil(t, k.Envelope())
}

func TestUnlockCachedSeedPreservesSuppliedEnvelope(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	seedBytes := testSeed()
	require.NoError(t, k.Create(context.Background(), "pw", seedBytes))
	env := k.Envelope()
	k.Lock()

	require.NoError(t, k.UnlockCachedSeed(seedBytes, env))
	assert.Same(t, env, k.Envelope())
}

func TestUnlockCachedSeedRejectsWrongLength(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	err := k.UnlockCachedSeed([]byte{1, 2, 3}, nil)
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindInvalidInput))
}

func TestChangePasswordRequiresUnlocked(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	err := k.ChangePassword(context.Background(), "new-pw")
	require.Error(t, err)
	assert.True(t, vaulterr.Is(err, vaulterr.KindWalletLocked))
}

func TestChangePasswordReEncryptsUnderNewPassword(t *testing.T) {
	t.Parallel()
	k := newTestKeyring()
	seedBytes := testSeed()
	require.NoError(t, k.Create(context.Background(), "old-pw", seedBytes))

	require.NoError(t, k.ChangePassword(context.Background(), "new-pw"))
	env := k.Envelope()
	k.Lock()

	err := k.Unlock(context.Background(), "old-pw", env)
	require.Error(t, err)

	require.NoError(t, k.Unlock(context.Background(), "new-pw", env))
	got, err := k.Seed()
	require.NoError(t, err)
	assert.Equal(t, seedBytes, got)
}
