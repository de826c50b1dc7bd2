package backup_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/backup"
	"github.com/duskvault/duskvault/internal/seed"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	return seed.New("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "")
}

// --- manifest.go tests ---

func TestNewManifest(t *testing.T) {
	t.Parallel()

	s := testSeed(t)
	before := time.Now().UTC()
	manifest := backup.NewManifest("w1", 3, 5, s)
	after := time.Now().UTC()

	assert.Equal(t, "w1", manifest.WalletID)
	assert.Equal(t, 3, manifest.Threshold)
	assert.Equal(t, 5, manifest.TotalShares)
	assert.Equal(t, backup.FormatVersion, manifest.Version)
	assert.True(t, !manifest.CreatedAt.Before(before) && !manifest.CreatedAt.After(after))
}

func TestManifestVerifySeed(t *testing.T) {
	t.Parallel()

	s := testSeed(t)
	manifest := backup.NewManifest("w1", 3, 5, s)

	assert.NoError(t, manifest.VerifySeed(s))

	other := make([]byte, len(s))
	copy(other, s)
	other[0] ^= 0xFF
	assert.ErrorIs(t, manifest.VerifySeed(other), backup.ErrSeedCorrupted)
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid manifest passes", func(t *testing.T) {
		t.Parallel()
		m := backup.NewManifest("w1", 2, 3, testSeed(t))
		assert.NoError(t, m.Validate())
	})

	t.Run("wrong version fails", func(t *testing.T) {
		t.Parallel()
		m := backup.NewManifest("w1", 2, 3, testSeed(t))
		m.Version = 999
		err := m.Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
		assert.Contains(t, err.Error(), "unsupported manifest version")
	})

	t.Run("missing wallet id fails", func(t *testing.T) {
		t.Parallel()
		m := backup.NewManifest("", 2, 3, testSeed(t))
		err := m.Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
	})

	t.Run("threshold above total shares fails", func(t *testing.T) {
		t.Parallel()
		m := backup.NewManifest("w1", 4, 3, testSeed(t))
		err := m.Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
	})

	t.Run("threshold below two fails", func(t *testing.T) {
		t.Parallel()
		m := backup.NewManifest("w1", 1, 3, testSeed(t))
		err := m.Validate()
		require.ErrorIs(t, err, backup.ErrInvalidFormat)
	})
}

// --- backup.go Service tests ---

func TestServiceSplitAndReconstruct(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	svc := backup.NewService(tmpDir)
	s := testSeed(t)

	shares, manifest, err := svc.Split("w1", s, 3, 5)
	require.NoError(t, err)
	assert.Len(t, shares, 5)
	assert.Equal(t, 3, manifest.Threshold)

	info, err := os.Stat(filepath.Join(tmpDir, "w1"+backup.ManifestExtension))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	recovered, err := svc.Reconstruct("w1", shares[:3])
	require.NoError(t, err)
	assert.Equal(t, s, recovered)
}

func TestServiceSplitRejectsWrongSeedLength(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(t.TempDir())
	_, _, err := svc.Split("w1", []byte("too-short"), 2, 3)
	require.ErrorIs(t, err, backup.ErrInvalidFormat)
}

func TestServiceReconstructInsufficientSharesFails(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	svc := backup.NewService(tmpDir)
	s := testSeed(t)

	shares, _, err := svc.Split("w1", s, 3, 5)
	require.NoError(t, err)

	_, err = svc.Reconstruct("w1", shares[:2])
	require.Error(t, err)
}

func TestServiceReconstructMissingManifestFails(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(t.TempDir())
	_, err := svc.Reconstruct("missing", []string{"anything"})
	assert.ErrorIs(t, err, backup.ErrManifestNotFound)
}

func TestServiceReconstructDetectsForeignShares(t *testing.T) {
	t.Parallel()

	svc := backup.NewService(t.TempDir())
	_, _, err := svc.Split("w1", testSeed(t), 2, 3)
	require.NoError(t, err)

	otherSeed := testSeed(t)
	otherSeed[0] ^= 0xFF
	otherSvc := backup.NewService(t.TempDir())
	foreignShares, _, err := otherSvc.Split("w2", otherSeed, 2, 3)
	require.NoError(t, err)

	_, err = svc.Reconstruct("w1", foreignShares[:2])
	assert.ErrorIs(t, err, backup.ErrSeedCorrupted)
}

func TestServiceManifest(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	svc := backup.NewService(tmpDir)

	_, _, err := svc.Split("w1", testSeed(t), 2, 3)
	require.NoError(t, err)

	manifest, err := svc.Manifest("w1")
	require.NoError(t, err)
	assert.Equal(t, "w1", manifest.WalletID)
}

func TestServiceList(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	svc := backup.NewService(tmpDir)

	t.Run("empty directory", func(t *testing.T) {
		wallets, err := svc.List()
		require.NoError(t, err)
		assert.Empty(t, wallets)
	})

	t.Run("lists split wallets and ignores unrelated files", func(t *testing.T) {
		_, _, err := svc.Split("w1", testSeed(t), 2, 3)
		require.NoError(t, err)
		_, _, err = svc.Split("w2", testSeed(t), 2, 3)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "readme.txt"), []byte("hi"), 0o600))

		wallets, err := svc.List()
		require.NoError(t, err)
		assert.Len(t, wallets, 2)
		assert.Contains(t, wallets, "w1")
		assert.Contains(t, wallets, "w2")
	})
}
