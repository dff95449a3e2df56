package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-common"
)

// TxData is the consensus content of one transaction version. It is
// implemented by LegacyTx, AccessListTx, DynamicFeeTx, BlobTx and SetCodeTx.
// A transaction built as one version can never be read through another
// version's field set: every accessor dispatches on the concrete type.
type TxData interface {
	TxType() byte // returns the type ID
	copy() TxData // creates a deep copy and initializes all fields

	chainID() *big.Int
	accessList() AccessList
	authList() AuthList
	data() []byte
	gas() uint64
	gasPrice() *big.Int
	gasTipCap() *big.Int
	gasFeeCap() *big.Int
	blobGasFeeCap() *big.Int
	blobHashes() []common.Hash
	value() *big.Int
	nonce() uint64
	to() *common.Address

	rawSignatureValues() (v, r, s *big.Int)
	setSignatureValues(chainID, v, r, s *big.Int)

	// payload returns the canonical ordered field list fed to the RLP codec,
	// with the signature fields stripped when withSig is false. For the
	// legacy version the EIP-155 replay-protection triple is not part of the
	// payload; the signer appends it when building the signing preimage.
	payload(withSig bool) []interface{}
}

func copyBig(i *big.Int) *big.Int {
	if i == nil {
		return nil
	}
	return new(big.Int).Set(i)
}

func bigOrZero(i *big.Int) *big.Int {
	if i == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i)
}
