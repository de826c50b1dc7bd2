package seed

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/hdkeychain/v3"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// hdNetParams satisfies hdkeychain.NetworkParams. The version bytes only
// affect the serialized extended-key string form, which this package never
// produces; Bitcoin mainnet's values are used for concreteness.
type hdNetParams struct{}

func (hdNetParams) HDPrivKeyVersion() [4]byte { return [4]byte{0x04, 0x88, 0xAD, 0xE4} }
func (hdNetParams) HDPubKeyVersion() [4]byte  { return [4]byte{0x04, 0x88, 0xB2, 0x1E} }

// DeriveSecp256k1 walks path from the BIP32 master key for seed, deriving
// hardened children for indices with Hardened set and normal children
// otherwise, per BIP32. A child index >= 2^31 is always hardened regardless
// of Path.Hardened, matching hdkeychain's own HardenedKeyStart convention.
func DeriveSecp256k1(seedBytes []byte, path Path) (*secp256k1.PrivateKey, error) {
	key, err := hdkeychain.NewMaster(seedBytes, hdNetParams{})
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindDerivationOutOfRange, err, "failed to create secp256k1 master key")
	}

	for _, c := range path {
		childIndex := c.Index
		if c.Hardened && childIndex < hdkeychain.HardenedKeyStart {
			childIndex += hdkeychain.HardenedKeyStart
		}
		key, err = key.ChildBIP32Std(childIndex)
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindDerivationOutOfRange, err, "child derivation failed at index %d", c.Index)
		}
	}

	priv, err := key.SerializedPrivKey()
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindDerivationOutOfRange, err, "failed to extract private scalar")
	}

	return secp256k1.PrivKeyFromBytes(priv), nil
}
