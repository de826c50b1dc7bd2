// Package solana implements the chainkit.Adapter for Solana.
package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

func init() {
	chainkit.Register(adapter{})
}

type adapter struct{}

func (adapter) ID() chainkit.ID { return chainkit.Solana }

// DefaultPath returns m/44'/501'/<index>'/0', all components hardened, as
// required by SLIP-0010's ed25519 derivation.
func (adapter) DefaultPath(index uint32) seed.Path {
	return seed.Path{
		{Index: 44, Hardened: true},
		{Index: 501, Hardened: true},
		{Index: index, Hardened: true},
		{Index: 0, Hardened: true},
	}
}

func (a adapter) DeriveAccount(seedBytes []byte, index uint32) (pubKey, address string, err error) {
	priv, err := seed.DeriveEd25519(seedBytes, a.DefaultPath(index))
	if err != nil {
		return "", "", err
	}
	pub := priv.Public().(ed25519.PublicKey)
	return base58.Encode(pub), base58.Encode(pub), nil
}

// ValidateAddress reports true iff s base58-decodes to exactly 32 bytes,
// the size of an ed25519 public key.
func (adapter) ValidateAddress(s string) (bool, error) {
	decoded, err := base58.Decode(s)
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.KindAddressMalformed, err, "address %q is not valid base58", s)
	}
	return len(decoded) == ed25519.PublicKeySize, nil
}

// SignTransaction signs the caller-serialized message bytes in tx.Data with
// a detached ed25519 signature. This adapter does not assemble Solana
// transaction structure; the caller is responsible for building the
// message to be signed.
func (a adapter) SignTransaction(priv []byte, tx chainkit.TxRequest) ([]byte, error) {
	return a.SignMessage(priv, tx.Data)
}

func (adapter) SignMessage(priv []byte, msg []byte) ([]byte, error) {
	if len(priv) != ed25519.SeedSize && len(priv) != ed25519.PrivateKeySize {
		return nil, vaulterr.New(vaulterr.KindDerivationInvalid, "invalid ed25519 private key length %d", len(priv))
	}
	var key ed25519.PrivateKey
	if len(priv) == ed25519.SeedSize {
		key = ed25519.NewKeyFromSeed(priv)
	} else {
		key = ed25519.PrivateKey(priv)
	}
	return ed25519.Sign(key, msg), nil
}

// VerifyMessage reports whether sig is address's detached ed25519
// signature over msg. address is the base58 encoding of the public key
// itself, matching DeriveAccount.
func (adapter) VerifyMessage(address string, msg, sig []byte) (bool, error) {
	pub, err := base58.Decode(address)
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.KindAddressMalformed, err, "address %q is not valid base58", address)
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, vaulterr.New(vaulterr.KindAddressMalformed, "address %q is not a %d-byte ed25519 public key", address, ed25519.PublicKeySize)
	}
	if len(sig) != ed25519.SignatureSize {
		return false, vaulterr.New(vaulterr.KindInvalidInput, "signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig))
	}
	return ed25519.Verify(pub, msg, sig), nil
}
