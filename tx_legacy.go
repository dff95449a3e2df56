package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// LegacyTx is the pre-EIP-2718 transaction. ChainID is not a wire field: when
// present it is folded into V at signing time (EIP-155) and derived back from
// V after decoding.
type LegacyTx struct {
	ChainID  *big.Int // replay protection only, never encoded directly
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *common.Address // nil means contract creation
	Value    *big.Int
	Data     []byte

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *LegacyTx) copy() TxData {
	return &LegacyTx{
		ChainID:  copyBig(tx.ChainID),
		Nonce:    tx.Nonce,
		GasPrice: copyBig(tx.GasPrice),
		Gas:      tx.Gas,
		To:       copyAddressPtr(tx.To),
		Value:    copyBig(tx.Value),
		Data:     common.CopyBytes(tx.Data),
		V:        copyBig(tx.V),
		R:        copyBig(tx.R),
		S:        copyBig(tx.S),
	}
}

func (tx *LegacyTx) TxType() byte { return LegacyTxType }

func (tx *LegacyTx) chainID() *big.Int {
	if tx.ChainID != nil {
		return tx.ChainID
	}
	if tx.V != nil && isProtectedV(tx.V) {
		return deriveChainId(tx.V)
	}
	return nil
}

func (tx *LegacyTx) accessList() AccessList       { return nil }
func (tx *LegacyTx) authList() AuthList           { return nil }
func (tx *LegacyTx) data() []byte                 { return tx.Data }
func (tx *LegacyTx) gas() uint64                  { return tx.Gas }
func (tx *LegacyTx) gasPrice() *big.Int           { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *big.Int          { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *big.Int          { return tx.GasPrice }
func (tx *LegacyTx) blobGasFeeCap() *big.Int      { return nil }
func (tx *LegacyTx) blobHashes() []common.Hash    { return nil }
func (tx *LegacyTx) value() *big.Int              { return tx.Value }
func (tx *LegacyTx) nonce() uint64                { return tx.Nonce }
func (tx *LegacyTx) to() *common.Address          { return tx.To }

func (tx *LegacyTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *LegacyTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *LegacyTx) payload(withSig bool) []interface{} {
	fields := []interface{}{
		tx.Nonce,
		tx.GasPrice,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
	}
	if withSig {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return fields
}
