// Package ethereum implements the chainkit.Adapter for Ethereum.
package ethereum

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/duskvault/duskvault/internal/chainkit"
	ethcrypto "github.com/duskvault/duskvault/internal/chainkit/ethereum/crypto"
	ethtypes "github.com/duskvault/duskvault/internal/chainkit/ethereum/txtypes"
	"github.com/duskvault/duskvault/internal/seed"
	"github.com/duskvault/duskvault/pkg/vaulterr"
)

func init() {
	chainkit.Register(adapter{})
}

type adapter struct{}

func (adapter) ID() chainkit.ID { return chainkit.Ethereum }

// DefaultPath returns m/44'/60'/0'/0/<index>, per BIP44 convention for
// Ethereum's single-account external chain.
func (adapter) DefaultPath(index uint32) seed.Path {
	return seed.Path{
		{Index: 44, Hardened: true},
		{Index: 60, Hardened: true},
		{Index: 0, Hardened: true},
		{Index: 0, Hardened: false},
		{Index: index, Hardened: false},
	}
}

func (a adapter) DeriveAccount(seedBytes []byte, index uint32) (pubKey, address string, err error) {
	priv, err := seed.DeriveSecp256k1(seedBytes, a.DefaultPath(index))
	if err != nil {
		return "", "", err
	}
	privBytes := priv.Serialize()
	defer zero(privBytes)

	pub, err := ethcrypto.PrivateKeyToPublicKey(privBytes)
	if err != nil {
		return "", "", vaulterr.Wrap(vaulterr.KindDerivationInvalid, err, "failed to derive Ethereum public key")
	}
	addrBytes, err := ethcrypto.PublicKeyToAddress(pub)
	if err != nil {
		return "", "", vaulterr.Wrap(vaulterr.KindDerivationInvalid, err, "failed to derive Ethereum address")
	}

	return hex.EncodeToString(pub[1:]), ethcrypto.ToChecksumAddress("0x" + hex.EncodeToString(addrBytes)), nil
}

// ValidateAddress accepts "0x" + 40 hex characters. All-lowercase and
// all-uppercase hex bodies are accepted unconditionally; a mixed-case body
// is accepted only if it is an exact EIP-55 checksum match, otherwise
// AddressChecksumMismatch is returned.
func (adapter) ValidateAddress(s string) (bool, error) {
	if !strings.HasPrefix(s, "0x") || len(s) != 42 {
		return false, vaulterr.New(vaulterr.KindAddressMalformed, "address %q must be 0x followed by 40 hex characters", s)
	}
	body := s[2:]
	if _, err := hex.DecodeString(strings.ToLower(body)); err != nil {
		return false, vaulterr.Wrap(vaulterr.KindAddressMalformed, err, "address %q is not valid hex", s)
	}

	isAllLower := body == strings.ToLower(body)
	isAllUpper := body == strings.ToUpper(body)
	if isAllLower || isAllUpper {
		return true, nil
	}

	checksummed := ethcrypto.ToChecksumAddress(s)
	if checksummed != s {
		return false, vaulterr.New(vaulterr.KindAddressChecksumMismatch, "address %q does not match its EIP-55 checksum %q", s, checksummed)
	}
	return true, nil
}

// SignTransaction selects a legacy (type-0) or EIP-1559 transaction shape
// based on which fee fields are populated: GasPrice selects legacy,
// MaxFeePerGas/MaxPriorityFeePerGas selects EIP-1559. Populating both is
// rejected.
func (a adapter) SignTransaction(priv []byte, tx chainkit.TxRequest) ([]byte, error) {
	hasLegacy := len(tx.GasPrice) > 0
	hasDynamic := len(tx.MaxFeePerGas) > 0 || len(tx.MaxPriorityFeePerGas) > 0
	if hasLegacy == hasDynamic {
		return nil, vaulterr.New(vaulterr.KindInvalidInput, "transaction request must set exactly one of gas_price or max_fee_per_gas/max_priority_fee_per_gas")
	}

	var to []byte
	if tx.To != "" {
		addr, err := hex.DecodeString(strings.TrimPrefix(tx.To, "0x"))
		if err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindAddressMalformed, err, "invalid recipient address %q", tx.To)
		}
		to = addr
	}
	value := new(big.Int).SetBytes(tx.Amount)

	if hasLegacy {
		chainID := new(big.Int).SetBytes(tx.ChainID)
		legacy := ethtypes.NewLegacyTx(tx.Nonce, to, value, tx.GasLimit, new(big.Int).SetBytes(tx.GasPrice), tx.Data)
		if err := legacy.Sign(priv, chainID); err != nil {
			return nil, vaulterr.Wrap(vaulterr.KindDerivationInvalid, err, "failed to sign legacy transaction")
		}
		return legacy.RawBytes(), nil
	}

	chainID := new(big.Int).SetBytes(tx.ChainID)
	dynamic := ethtypes.NewDynamicFeeTx(chainID, tx.Nonce, to, value, tx.GasLimit,
		new(big.Int).SetBytes(tx.MaxPriorityFeePerGas), new(big.Int).SetBytes(tx.MaxFeePerGas), tx.Data)
	if err := dynamic.Sign(priv); err != nil {
		return nil, vaulterr.Wrap(vaulterr.KindDerivationInvalid, err, "failed to sign EIP-1559 transaction")
	}
	return dynamic.RawBytes(), nil
}

func (adapter) SignMessage(priv []byte, msg []byte) ([]byte, error) {
	hash := ethcrypto.Keccak256(msg)
	return ethcrypto.Sign(hash, priv)
}

// VerifyMessage recovers the signer of sig over Keccak256(msg) and reports
// whether it matches address.
func (adapter) VerifyMessage(address string, msg, sig []byte) (bool, error) {
	if len(sig) != 65 {
		return false, vaulterr.New(vaulterr.KindInvalidInput, "signature must be 65 bytes, got %d", len(sig))
	}

	hash := ethcrypto.Keccak256(msg)
	pub, err := ethcrypto.Recover(hash, sig)
	if err != nil {
		return false, vaulterr.Wrap(vaulterr.KindInvalidInput, err, "recovering signer from signature")
	}

	addrBytes, err := ethcrypto.PublicKeyToAddress(pub)
	if err != nil {
		return false, err
	}
	recovered := ethcrypto.ToChecksumAddress("0x" + hex.EncodeToString(addrBytes))
	return recovered == ethcrypto.ToChecksumAddress(address), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
