package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duskvault/duskvault/internal/backup/shamir"
	"github.com/duskvault/duskvault/internal/seed"
)

const (
	// ManifestExtension is the file extension for a split's manifest file.
	ManifestExtension = ".duskvault-manifest"

	// BackupDirPermissions is the permission mode for the backup directory.
	BackupDirPermissions = 0o750

	// BackupFilePermissions is the permission mode for manifest files.
	BackupFilePermissions = 0o600
)

// Service splits wallet seeds into Shamir shares for social recovery and
// reconstructs seeds from a threshold subset of shares. It never persists
// a share itself; callers are responsible for distributing returned share
// strings to trustees. Only the manifest, which carries no secret
// material, is written to disk.
type Service struct {
	backupDir string
}

// NewService creates a Service that writes manifests under backupDir.
func NewService(backupDir string) *Service {
	return &Service{backupDir: backupDir}
}

// Split divides seedBytes into totalShares Shamir shares, threshold of
// which are later required to reconstruct it. It persists a manifest
// alongside the shares' metadata and returns the share strings for the
// caller to distribute; the Service keeps no copy of them.
func (s *Service) Split(walletID string, seedBytes []byte, threshold, totalShares int) ([]string, *Manifest, error) {
	if len(seedBytes) != seed.Length {
		return nil, nil, fmt.Errorf("%w: seed must be %d bytes", ErrInvalidFormat, seed.Length)
	}

	shares, err := shamir.Split(seedBytes, totalShares, threshold)
	if err != nil {
		return nil, nil, fmt.Errorf("splitting seed: %w", err)
	}

	manifest := NewManifest(walletID, threshold, totalShares, seedBytes)
	if err := s.writeManifest(walletID, &manifest); err != nil {
		return nil, nil, fmt.Errorf("writing manifest: %w", err)
	}

	return shares, &manifest, nil
}

// Reconstruct recombines a threshold subset of shares into the original
// seed and verifies it against the wallet's stored manifest.
func (s *Service) Reconstruct(walletID string, shares []string) ([]byte, error) {
	manifest, err := s.readManifest(walletID)
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}

	seedBytes, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("combining shares: %w", err)
	}
	if err := manifest.VerifySeed(seedBytes); err != nil {
		return nil, err
	}

	return seedBytes, nil
}

// Manifest returns the persisted manifest for walletID without touching
// any shares.
func (s *Service) Manifest(walletID string) (*Manifest, error) {
	manifest, err := s.readManifest(walletID)
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// List returns the wallet IDs with a persisted split manifest.
func (s *Service) List() ([]string, error) {
	if err := os.MkdirAll(s.backupDir, BackupDirPermissions); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return nil, fmt.Errorf("reading backup directory: %w", err)
	}

	var wallets []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) == ManifestExtension {
			wallets = append(wallets, entry.Name()[:len(entry.Name())-len(ManifestExtension)])
		}
	}

	return wallets, nil
}

func (s *Service) manifestPath(walletID string) string {
	return filepath.Join(s.backupDir, walletID+ManifestExtension)
}

func (s *Service) writeManifest(walletID string, manifest *Manifest) error {
	if err := os.MkdirAll(s.backupDir, BackupDirPermissions); err != nil {
		return fmt.Errorf("creating backup directory: %w", err)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing manifest: %w", err)
	}

	if err := os.WriteFile(s.manifestPath(walletID), data, BackupFilePermissions); err != nil {
		return fmt.Errorf("writing manifest file: %w", err)
	}

	return nil
}

func (s *Service) readManifest(walletID string) (*Manifest, error) {
	// #nosec G304 -- walletID is a store-internal id, not arbitrary user input
	data, err := os.ReadFile(s.manifestPath(walletID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrManifestNotFound
		}
		return nil, fmt.Errorf("reading manifest file: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	return &manifest, nil
}
