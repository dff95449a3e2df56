package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// SetCodeTx is the EIP-7702 authorization list transaction. Like blob
// transactions it cannot create contracts.
type SetCodeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	AuthList   AuthList

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *SetCodeTx) copy() TxData {
	return &SetCodeTx{
		ChainID:    copyBig(tx.ChainID),
		Nonce:      tx.Nonce,
		GasTipCap:  copyBig(tx.GasTipCap),
		GasFeeCap:  copyBig(tx.GasFeeCap),
		Gas:        tx.Gas,
		To:         tx.To,
		Value:      copyBig(tx.Value),
		Data:       common.CopyBytes(tx.Data),
		AccessList: tx.AccessList.deepCopy(),
		AuthList:   tx.AuthList.deepCopy(),
		V:          copyBig(tx.V),
		R:          copyBig(tx.R),
		S:          copyBig(tx.S),
	}
}

func (tx *SetCodeTx) TxType() byte                 { return SetCodeTxType }
func (tx *SetCodeTx) chainID() *big.Int            { return tx.ChainID }
func (tx *SetCodeTx) accessList() AccessList       { return tx.AccessList }
func (tx *SetCodeTx) authList() AuthList           { return tx.AuthList }
func (tx *SetCodeTx) data() []byte                 { return tx.Data }
func (tx *SetCodeTx) gas() uint64                  { return tx.Gas }
func (tx *SetCodeTx) gasPrice() *big.Int           { return tx.GasFeeCap }
func (tx *SetCodeTx) gasTipCap() *big.Int          { return tx.GasTipCap }
func (tx *SetCodeTx) gasFeeCap() *big.Int          { return tx.GasFeeCap }
func (tx *SetCodeTx) blobGasFeeCap() *big.Int      { return nil }
func (tx *SetCodeTx) blobHashes() []common.Hash    { return nil }
func (tx *SetCodeTx) value() *big.Int              { return tx.Value }
func (tx *SetCodeTx) nonce() uint64                { return tx.Nonce }

func (tx *SetCodeTx) to() *common.Address {
	tmp := tx.To
	return &tmp
}

func (tx *SetCodeTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *SetCodeTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *SetCodeTx) payload(withSig bool) []interface{} {
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
		tx.AuthList,
	}
	if withSig {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return fields
}
