package seed

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/duskvault/duskvault/pkg/vaulterr"
)

// slip10Seed is the HMAC key SLIP-0010 fixes for ed25519 master-node
// derivation; see https://github.com/satoshilabs/slips/blob/master/slip-0010.md.
const slip10Seed = "ed25519 seed"

// firstHardenedIndex is 2^31, the BIP32 boundary between normal and
// hardened child indices.
const firstHardenedIndex = uint32(0x80000000)

type slip10Node struct {
	key       [32]byte
	chainCode [32]byte
}

func slip10Master(seedBytes []byte) slip10Node {
	mac := hmac.New(sha512.New, []byte(slip10Seed))
	mac.Write(seedBytes)
	sum := mac.Sum(nil)

	var n slip10Node
	copy(n.key[:], sum[:32])
	copy(n.chainCode[:], sum[32:])
	return n
}

func (n slip10Node) deriveHardened(index uint32) slip10Node {
	data := make([]byte, 0, 37)
	data = append(data, 0x00)
	data = append(data, n.key[:]...)
	var idxBuf [4]byte
	binary.BigEndian.PutUint32(idxBuf[:], index+firstHardenedIndex)
	data = append(data, idxBuf[:]...)

	mac := hmac.New(sha512.New, n.chainCode[:])
	mac.Write(data)
	sum := mac.Sum(nil)

	var child slip10Node
	copy(child.key[:], sum[:32])
	copy(child.chainCode[:], sum[32:])
	return child
}

// DeriveEd25519 walks path from the SLIP-0010 ed25519 master node. Every
// component must be hardened; a non-hardened component is rejected since
// ed25519 has no defined normal (non-hardened) child derivation.
func DeriveEd25519(seedBytes []byte, path Path) (ed25519.PrivateKey, error) {
	node := slip10Master(seedBytes)

	for _, c := range path {
		if !c.Hardened {
			return nil, vaulterr.New(vaulterr.KindDerivationInvalid, "ed25519 derivation requires every path component to be hardened, got non-hardened index %d", c.Index)
		}
		node = node.deriveHardened(c.Index)
	}

	return ed25519.NewKeyFromSeed(node.key[:]), nil
}
