package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// BlobTx is the EIP-4844 blob transaction (consensus form, without sidecar).
// Blob transactions cannot create contracts, so To is a plain address.
type BlobTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int // maxPriorityFeePerGas
	GasFeeCap  *big.Int // maxFeePerGas
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList AccessList
	BlobFeeCap *big.Int // maxFeePerBlobGas
	BlobHashes []common.Hash

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// copy creates a deep copy of the transaction data and initializes all fields.
func (tx *BlobTx) copy() TxData {
	return &BlobTx{
		ChainID:    copyBig(tx.ChainID),
		Nonce:      tx.Nonce,
		GasTipCap:  copyBig(tx.GasTipCap),
		GasFeeCap:  copyBig(tx.GasFeeCap),
		Gas:        tx.Gas,
		To:         tx.To,
		Value:      copyBig(tx.Value),
		Data:       common.CopyBytes(tx.Data),
		AccessList: tx.AccessList.deepCopy(),
		BlobFeeCap: copyBig(tx.BlobFeeCap),
		BlobHashes: copyHashes(tx.BlobHashes),
		V:          copyBig(tx.V),
		R:          copyBig(tx.R),
		S:          copyBig(tx.S),
	}
}

func (tx *BlobTx) TxType() byte                 { return BlobTxType }
func (tx *BlobTx) chainID() *big.Int            { return tx.ChainID }
func (tx *BlobTx) accessList() AccessList       { return tx.AccessList }
func (tx *BlobTx) authList() AuthList           { return nil }
func (tx *BlobTx) data() []byte                 { return tx.Data }
func (tx *BlobTx) gas() uint64                  { return tx.Gas }
func (tx *BlobTx) gasPrice() *big.Int           { return tx.GasFeeCap }
func (tx *BlobTx) gasTipCap() *big.Int          { return tx.GasTipCap }
func (tx *BlobTx) gasFeeCap() *big.Int          { return tx.GasFeeCap }
func (tx *BlobTx) blobGasFeeCap() *big.Int      { return tx.BlobFeeCap }
func (tx *BlobTx) blobHashes() []common.Hash    { return tx.BlobHashes }
func (tx *BlobTx) value() *big.Int              { return tx.Value }
func (tx *BlobTx) nonce() uint64                { return tx.Nonce }

func (tx *BlobTx) to() *common.Address {
	tmp := tx.To
	return &tmp
}

func (tx *BlobTx) rawSignatureValues() (v, r, s *big.Int) {
	return tx.V, tx.R, tx.S
}

func (tx *BlobTx) setSignatureValues(chainID, v, r, s *big.Int) {
	tx.ChainID, tx.V, tx.R, tx.S = chainID, v, r, s
}

func (tx *BlobTx) payload(withSig bool) []interface{} {
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
		tx.BlobFeeCap,
		tx.BlobHashes,
	}
	if withSig {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return fields
}
