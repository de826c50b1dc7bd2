package ethtypes

import (
	"encoding/hex"
	"math/big"

	ethcrypto "github.com/duskvault/duskvault/internal/chainkit/ethereum/crypto"
	"github.com/duskvault/duskvault/internal/chainkit/ethereum/rlp"
)

// dynamicFeeTxType is the EIP-2718 envelope type byte for EIP-1559 transactions.
const dynamicFeeTxType = 0x02

// DynamicFeeTx represents an EIP-1559 transaction. Access lists are not
// populated by this implementation; they are always encoded as an empty
// list, which is valid per EIP-1559 and accepted by every client.
type DynamicFeeTx struct {
	ChainID              *big.Int
	Nonce                uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
	GasLimit             uint64
	To                   []byte // 20 bytes, nil for contract creation
	Value                *big.Int
	Data                 []byte

	// Signature values (set after signing). YParity is 0 or 1.
	YParity byte
	R       *big.Int
	S       *big.Int
}

// NewDynamicFeeTx creates a new EIP-1559 transaction.
func NewDynamicFeeTx(chainID *big.Int, nonce uint64, to []byte, value *big.Int, gasLimit uint64, maxPriorityFeePerGas, maxFeePerGas *big.Int, data []byte) *DynamicFeeTx {
	return &DynamicFeeTx{
		ChainID:              chainID,
		Nonce:                nonce,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
		MaxFeePerGas:         maxFeePerGas,
		GasLimit:             gasLimit,
		To:                   to,
		Value:                value,
		Data:                 data,
	}
}

func (tx *DynamicFeeTx) payload(withSignature bool) []byte {
	items := []any{
		tx.ChainID,
		tx.Nonce,
		tx.MaxPriorityFeePerGas,
		tx.MaxFeePerGas,
		tx.GasLimit,
		tx.To,
		tx.Value,
		tx.Data,
		[]any{}, // empty access list
	}
	if withSignature {
		items = append(items, uint64(tx.YParity), tx.R, tx.S)
	}
	return rlp.Encode(items)
}

// SigningHash returns the hash to be signed, per EIP-1559: keccak256(0x02 || rlp(payload)).
func (tx *DynamicFeeTx) SigningHash() []byte {
	return ethcrypto.Keccak256(append([]byte{dynamicFeeTxType}, tx.payload(false)...))
}

// Sign signs the transaction with the given private key.
func (tx *DynamicFeeTx) Sign(privateKey []byte) error {
	hash := tx.SigningHash()

	sig, err := ethcrypto.Sign(hash, privateKey)
	if err != nil {
		return err
	}

	tx.R = new(big.Int).SetBytes(sig[0:32])
	tx.S = new(big.Int).SetBytes(sig[32:64])
	tx.YParity = sig[64]

	return nil
}

// RawBytes returns the EIP-2718 typed transaction envelope, ready for broadcast.
func (tx *DynamicFeeTx) RawBytes() []byte {
	return append([]byte{dynamicFeeTxType}, tx.payload(true)...)
}

// Hash returns the transaction hash (keccak256 of the typed envelope).
func (tx *DynamicFeeTx) Hash() []byte {
	return ethcrypto.Keccak256(tx.RawBytes())
}

// HashHex returns the transaction hash as a hex string with 0x prefix.
func (tx *DynamicFeeTx) HashHex() string {
	return "0x" + hex.EncodeToString(tx.Hash())
}

// IsSigned returns true if the transaction has been signed.
func (tx *DynamicFeeTx) IsSigned() bool {
	return tx.R != nil && tx.S != nil
}
