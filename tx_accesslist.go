package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// AccessListTx is the EIP-2930 access list transaction.
type AccessListTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasPrice   *big.Int
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
func (tx *AccessListTx) copy() TxData {
	return &AccessListTx{
		ChainID:    copyBig(tx.ChainID),
		Nonce:      tx.Nonce,
		GasPrice:   copyBig(tx.GasPrice),
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

func (tx *AccessListTx) TxType() byte                 { return AccessListTxType }
func (tx *AccessListTx) chainID() *big.Int            { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList       { return tx.AccessList }
func (tx *AccessListTx) authList() AuthList           { return nil }
func (tx *AccessListTx) data() []byte                 { return tx.Data }
func (tx *AccessListTx) gas() uint64                  { return tx.Gas }
func (tx *AccessListTx) gasPrice() *big.Int           { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *big.Int          { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *big.Int          { return tx.GasPrice }
func (tx *AccessListTx) blobGasFeeCap() *big.Int      { return nil }
func (tx *AccessListTx) blobHashes() []common.Hash    { return nil }
func (tx *AccessListTx) value() *big.Int              { return tx.Value }
func (tx *AccessListTx) nonce() uint64                { return tx.Nonce }
func (tx *AccessListTx) to() *common.Address          { return tx.To }

func (tx *AccessListTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *AccessListTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *AccessListTx) payload(withSig bool) []interface{} {
	fields := []interface{}{
		tx.ChainID,
		tx.Nonce,
		tx.GasPrice,
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
