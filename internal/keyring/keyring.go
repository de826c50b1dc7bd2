// Package keyring implements the in-memory lifecycle of the unlocked seed:
// a Locked/Unlocked state machine with an auto-lock timer and guaranteed
// zeroization of key material on every exit path.
package keyring

import (
	"context"
	"sync"
	"time"

	"github.com/duskvault/duskvault/internal/keyring/kdfpool"
	"github.com/duskvault/duskvault/internal/keyring/securebuf"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/internal/vaultcrypto"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// State is the keyring's coarse lifecycle state.
type State int

const (
	// Locked is the initial and resting state: no seed material resides in
	// memory.
	Locked State = iota
	// Unlocked means the seed is held in a locked, zeroizable buffer and
	// available to Seed.
	Unlocked
)

// String renders the state for logging.
func (s State) String() string {
	switch s {
	case Unlocked:
		return "unlocked"
	default:
		return "locked"
	}
}

// defaultMaxConcurrentDerivations bounds how many Argon2id derivations can
// run at once; unlock/create attempts beyond this queue behind the pool.
const defaultMaxConcurrentDerivations = 2

// Keyring holds an optionally-unlocked seed and the envelope it was loaded
// from or will be persisted to. The zero value is not usable; construct
// with New.
type Keyring struct {
	mu    sync.RWMutex
	state State

	envelope *vaultcrypto.Envelope
	seedBuf  *securebuf.Buf

	autoLock time.Duration
	pool     *kdfpool.Pool

	// timerMu guards lockTimer independently of mu, since touch is called
	// from Seed/WithSeed while only holding mu for reading.
	timerMu   sync.Mutex
	lockTimer *time.Timer

	kdfParams vaultcrypto.KDFParams
}

// Option configures a Keyring at construction time.
type Option func(*Keyring)

// WithAutoLock sets the idle duration after which the keyring locks itself.
// A duration of 0 disables the auto-lock timer.
func WithAutoLock(d time.Duration) Option {
	return func(k *Keyring) { k.autoLock = d }
}

// WithKDFParams overrides the Argon2id cost parameters used by Create and
// Import.
func WithKDFParams(p vaultcrypto.KDFParams) Option {
	return func(k *Keyring) { k.kdfParams = p }
}

// New constructs a Locked Keyring.
func New(opts ...Option) *Keyring {
	k := &Keyring{
		state:     Locked,
		pool:      kdfpool.New(defaultMaxConcurrentDerivations),
		kdfParams: vaultcrypto.DefaultKDFParams(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// State reports the current lifecycle state.
func (k *Keyring) State() State {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state
}

// IsUnlocked reports whether a seed currently resides in memory.
func (k *Keyring) IsUnlocked() bool {
	return k.State() == Unlocked
}

// Envelope returns the envelope backing this keyring, or nil if none has
// been created or loaded yet.
func (k *Keyring) Envelope() *vaultcrypto.Envelope {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.envelope
}

// Create encrypts the caller-supplied seedBytes under password and
// transitions to Unlocked. The Keyring keeps its own copy of the seed in
// locked memory; seedBytes stays owned by the caller.
func (k *Keyring) Create(ctx context.Context, password string, seedBytes []byte) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	env, err := k.deriveAndEncrypt(ctx, password, seedBytes)
	if err != nil {
		return err
	}

	k.setUnlockedLocked(env, seedBytes)
	return nil
}

// Import loads an externally-supplied seed (e.g. recovered from a mnemonic
// or Shamir shares) and encrypts it under password, transitioning to
// Unlocked.
func (k *Keyring) Import(ctx context.Context, password string, seedBytes []byte) error {
	return k.Create(ctx, password, seedBytes)
}

// Unlock decrypts env under password and transitions to Unlocked. Returns
// vaulterr.KindWrongPassword on an incorrect password and
// vaulterr.KindVaultVersionUnsupported if env carries an envelope version
// this build does not understand.
func (k *Keyring) Unlock(ctx context.Context, password string, env *vaultcrypto.Envelope) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	result, err := k.pool.Derive(ctx, func() ([]byte, error) {
		return vaultcrypto.Decrypt(password, env)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	k.setUnlockedLocked(env, result)
	zero(result)
	return nil
}

// UnlockCachedSeed transitions to Unlocked using seedBytes recovered from an
// outer session cache (see internal/session), bypassing password
// derivation entirely. env, if non-nil, is kept so a later ChangePassword
// or Envelope caller still sees the backing envelope; it may be nil when
// the caller has no envelope on hand.
func (k *Keyring) UnlockCachedSeed(seedBytes []byte, env *vaultcrypto.Envelope) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(seedBytes) != seed.Length {
		return vaulterr.New(vaulterr.KindInvalidInput, "seed must be %d bytes, got %d", seed.Length, len(seedBytes))
	}

	if env == nil {
		env = k.envelope
	}
	k.setUnlockedLocked(env, seedBytes)
	return nil
}

// Lock discards the in-memory seed, zeroizing it, and transitions to
// Locked. Safe to call when already Locked.
func (k *Keyring) Lock() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lockLocked()
}

// Reset discards both the in-memory seed and the stored envelope, returning
// the Keyring to its just-constructed state. Used when replacing a wallet
// outright (e.g. after a destructive re-import).
func (k *Keyring) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.lockLocked()
	k.envelope = nil
}

// Seed returns a read view of the unlocked seed. The returned slice aliases
// keyring-owned memory and must not be retained past the call; copy it if
// the caller needs to hold onto it. Returns vaulterr.KindWalletLocked if no
// seed is currently unlocked.
func (k *Keyring) Seed() ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.state != Unlocked || k.seedBuf == nil {
		return nil, vaulterr.New(vaulterr.KindWalletLocked, "keyring is locked")
	}

	k.touch()
	return k.seedBuf.Bytes(), nil
}

// WithSeed runs fn with a read view of the unlocked seed held for the
// duration of the call, then returns fn's error. This is the preferred way
// to use the seed for a single derivation, since it keeps the lock held
// across the callback and refreshes the auto-lock timer exactly once.
func (k *Keyring) WithSeed(fn func(seedBytes []byte) error) error {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.state != Unlocked || k.seedBuf == nil {
		return vaulterr.New(vaulterr.KindWalletLocked, "keyring is locked")
	}

	k.touch()
	return fn(k.seedBuf.Bytes())
}

// ChangePassword re-encrypts the current seed under newPassword. The
// keyring must already be Unlocked.
func (k *Keyring) ChangePassword(ctx context.Context, newPassword string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.state != Unlocked || k.seedBuf == nil {
		return vaulterr.New(vaulterr.KindWalletLocked, "keyring is locked")
	}

	env, err := k.deriveAndEncrypt(ctx, newPassword, k.seedBuf.Bytes())
	if err != nil {
		return err
	}
	k.envelope = env
	return nil
}

func (k *Keyring) deriveAndEncrypt(ctx context.Context, password string, seedBytes []byte) (*vaultcrypto.Envelope, error) {
	if len(seedBytes) != seed.Length {
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "seed must be %d bytes, got %d", seed.Length, len(seedBytes))
	}

	var env *vaultcrypto.Envelope
	_, err := k.pool.Derive(ctx, func() ([]byte, error) {
		var encErr error
		env, encErr = vaultcrypto.Encrypt(password, seedBytes, k.kdfParams)
		return nil, encErr
	})
	if err != nil {
		return nil, err
	}
	return env, nil
}

func (k *Keyring) setUnlockedLocked(env *vaultcrypto.Envelope, seedBytes []byte) {
	if k.seedBuf != nil {
		k.seedBuf.Destroy()
	}
	k.seedBuf = securebuf.FromBytes(seedBytes)
	k.envelope = env
	k.state = Unlocked
	k.touch()
}

func (k *Keyring) lockLocked() {
	k.timerMu.Lock()
	if k.lockTimer != nil {
		k.lockTimer.Stop()
		k.lockTimer = nil
	}
	k.timerMu.Unlock()

	if k.seedBuf != nil {
		k.seedBuf.Destroy()
		k.seedBuf = nil
	}
	k.state = Locked
}

// touch resets the auto-lock timer. It guards lockTimer with its own mutex
// rather than k.mu, since Seed and WithSeed call it while only holding k.mu
// for reading — two concurrent readers touching the timer at once would
// otherwise race on lockTimer's nil-check and assignment.
func (k *Keyring) touch() {
	if k.autoLock <= 0 {
		return
	}

	k.timerMu.Lock()
	defer k.timerMu.Unlock()

	if k.lockTimer == nil {
		k.lockTimer = time.AfterFunc(k.autoLock, k.Lock)
		return
	}
	k.lockTimer.Reset(k.autoLock)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
