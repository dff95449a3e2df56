package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// DynamicFeeTx is the EIP-1559 fee market transaction.
type DynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	Gas        uint64
	To         *common.Address // nil means contract creation
	Value      *big.Int
	Data       []byte
	AccessList AccessList

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *DynamicFeeTx) copy() TxData {
	return &DynamicFeeTx{
		ChainID:    copyBig(tx.ChainID),
		Nonce:      tx.Nonce,
		GasTipCap:  copyBig(tx.GasTipCap),
		GasFeeCap:  copyBig(tx.GasFeeCap),
		Gas:        tx.Gas,
		To:         copyAddressPtr(tx.To),
		Value:      copyBig(tx.Value),
		Data:       common.CopyBytes(tx.Data),
		AccessList: tx.AccessList.deepCopy(),
		V:          copyBig(tx.V),
		R:          copyBig(tx.R),
		S:          copyBig(tx.S),
	}
}

func (tx *DynamicFeeTx) TxType() byte                 { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *big.Int            { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList       { return tx.AccessList }
func (tx *DynamicFeeTx) authList() AuthList           { return nil }
func (tx *DynamicFeeTx) data() []byte                 { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64                  { return tx.Gas }
func (tx *DynamicFeeTx) gasPrice() *big.Int           { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *big.Int          { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasFeeCap() *big.Int          { return tx.GasFeeCap }
func (tx *DynamicFeeTx) blobGasFeeCap() *big.Int      { return nil }
func (tx *DynamicFeeTx) blobHashes() []common.Hash    { return nil }
func (tx *DynamicFeeTx) value() *big.Int              { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64                { return tx.Nonce }
func (tx *DynamicFeeTx) to() *common.Address          { return tx.To }

func (tx *DynamicFeeTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *DynamicFeeTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *DynamicFeeTx) payload(withSig bool) []interface{} {
	fields := []interface{}{
		tx.ChainID,
		tx.Nonce,
		tx.GasTipCap,
		tx.GasFeeCap,
		tx.Gas,
		tx.To,
		tx.Value,
		tx.Data,
		tx.AccessList,
	}
	if withSig {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return fields
}
