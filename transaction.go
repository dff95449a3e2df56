package ethtx

import (
	"math/big"
	"sync/atomic"

	"github.com/ThinkiumGroup/go-cipher"
	"github.com/ThinkiumGroup/go-common"
)

// Transaction is one account-layer transaction of any envelope version. The
// consensus content lives in inner; every state-changing operation deep-copies
// inner and returns a fresh Transaction, so an instance never mutates after
// construction.
type Transaction struct {
	inner TxData // Consensus contents of a transaction

	// caches
	hash atomic.Value
	from atomic.Value
}

// NewTx creates a new transaction.
func NewTx(inner TxData) *Transaction {
	tx := new(Transaction)
	tx.setDecoded(inner.copy())
	return tx
}

// setDecoded sets the inner transaction after decoding.
func (tx *Transaction) setDecoded(inner TxData) {
	tx.inner = inner
}

// Type returns the transaction type.
func (tx *Transaction) Type() byte {
	return tx.inner.TxType()
}

// IsSigned reports whether both halves of the signature are present.
func (tx *Transaction) IsSigned() bool {
	_, r, s := tx.inner.rawSignatureValues()
	return r != nil && s != nil
}

// ChainId returns the chain id of the transaction, nil for legacy
// transactions without replay protection.
func (tx *Transaction) ChainId() *big.Int {
	return copyBig(tx.inner.chainID())
}

// Data returns the input data of the transaction.
func (tx *Transaction) Data() []byte { return tx.inner.data() }

// AccessList returns the access list of the transaction.
func (tx *Transaction) AccessList() AccessList { return tx.inner.accessList() }

// AuthorizationList returns the set-code authorizations of the transaction.
func (tx *Transaction) AuthorizationList() AuthList { return tx.inner.authList() }

// Gas returns the gas limit of the transaction.
func (tx *Transaction) Gas() uint64 { return tx.inner.gas() }

// GasPrice returns the gas price of the transaction.
func (tx *Transaction) GasPrice() *big.Int { return copyBig(tx.inner.gasPrice()) }

// GasTipCap returns the maxPriorityFeePerGas of the transaction.
func (tx *Transaction) GasTipCap() *big.Int { return copyBig(tx.inner.gasTipCap()) }

// GasFeeCap returns the maxFeePerGas of the transaction.
func (tx *Transaction) GasFeeCap() *big.Int { return copyBig(tx.inner.gasFeeCap()) }

// BlobGasFeeCap returns the maxFeePerBlobGas of the transaction, nil for
// non-blob versions.
func (tx *Transaction) BlobGasFeeCap() *big.Int { return copyBig(tx.inner.blobGasFeeCap()) }

// BlobHashes returns the versioned hashes of the transaction's blobs.
func (tx *Transaction) BlobHashes() []common.Hash { return tx.inner.blobHashes() }

// Value returns the ether amount of the transaction.
func (tx *Transaction) Value() *big.Int { return copyBig(tx.inner.value()) }

// Nonce returns the sender account nonce of the transaction.
func (tx *Transaction) Nonce() uint64 { return tx.inner.nonce() }

// To returns the recipient address of the transaction.
// For contract-creation transactions, To returns nil.
func (tx *Transaction) To() *common.Address {
	return copyAddressPtr(tx.inner.to())
}

func (tx *Transaction) RawSignatureValues() (v, r, s *big.Int) {
	return tx.inner.rawSignatureValues()
}

// Protected says whether the transaction is replay-protected.
func (tx *Transaction) Protected() bool {
	switch tx := tx.inner.(type) {
	case *LegacyTx:
		return tx.V != nil && isProtectedV(tx.V)
	default:
		return true
	}
}

// YParity returns the recovery bit of the signature, for legacy transactions
// derived from V.
func (tx *Transaction) YParity() (uint64, error) {
	v, r, s := tx.inner.rawSignatureValues()
	if v == nil || r == nil || s == nil {
		return 0, ErrNotSigned
	}
	if tx.Type() != LegacyTxType {
		return v.Uint64(), nil
	}
	if !isProtectedV(v) {
		u := v.Uint64()
		if u >= 27 {
			u -= 27
		}
		return u, nil
	}
	parity := new(big.Int).Sub(v, big.NewInt(35))
	return uint64(parity.Bit(0)), nil
}

// Hash returns the transaction hash: the keccak of the signed wire envelope.
// Unsigned transactions have no hash.
func (tx *Transaction) Hash() (common.Hash, error) {
	if !tx.IsSigned() {
		return common.Hash{}, ErrNotSigned
	}
	if h := tx.hash.Load(); h != nil {
		return h.(common.Hash), nil
	}
	var h common.Hash
	if tx.Type() == LegacyTxType {
		h = common.RlpHash(tx.inner.payload(true))
	} else {
		h = common.PrefixedRlpHash(tx.Type(), tx.inner.payload(true))
	}
	tx.hash.Store(h)
	return h, nil
}

// SigHash returns the hash signed by the sender's key, i.e. the signing
// preimage of the current envelope version.
func (tx *Transaction) SigHash() common.Hash {
	return LatestSigner().Hash(tx)
}

// SignBy signs the transaction with prv and returns the signed copy. The
// receiver is left untouched; signing an already signed transaction fails.
func (tx *Transaction) SignBy(prv cipher.ECCPrivateKey) (*Transaction, error) {
	if tx.IsSigned() {
		return nil, ErrAlreadySigned
	}
	signed, err := SignTx(tx, LatestSigner(), prv)
	if err != nil {
		return nil, err
	}
	if err := checkInner(signed.inner); err != nil {
		return nil, err
	}
	return signed, nil
}

// RemoveSignature returns a fresh unsigned copy of the transaction.
func (tx *Transaction) RemoveSignature() *Transaction {
	cpy := tx.inner.copy()
	cpy.setSignatureValues(copyBig(tx.inner.chainID()), nil, nil, nil)
	return &Transaction{inner: cpy}
}

// RecoverSender recovers the signing key from the signature and returns the
// compressed public key together with the address derived from it.
// Signatures with s in the upper half of the curve order are rejected.
func (tx *Transaction) RecoverSender() (pub []byte, addr common.Address, err error) {
	if !tx.IsSigned() {
		return nil, common.Address{}, ErrNotSigned
	}
	_, uncompressed, err := LatestSigner().RecoverSigAndPub(tx)
	if err != nil {
		return nil, common.Address{}, err
	}
	copy(addr[:], common.SystemHash256(uncompressed[1:])[12:])
	tx.from.Store(addr)
	return compressPub(uncompressed), addr, nil
}

// From returns the cached sender address, recovering it on first use. Nil
// when the transaction is unsigned or carries a bad signature.
func (tx *Transaction) From() *common.Address {
	if from := tx.from.Load(); from != nil {
		addr := from.(common.Address)
		return &addr
	}
	_, addr, err := tx.RecoverSender()
	if err != nil {
		return nil
	}
	return &addr
}

// VerifySignature recomputes the sender and checks r,s against the signing
// hash and the recovered key. Used as an internal consistency check.
func (tx *Transaction) VerifySignature() bool {
	if !tx.IsSigned() {
		return false
	}
	signer := LatestSigner()
	sig, pub, err := signer.RecoverSigAndPub(tx)
	if err != nil {
		return false
	}
	h := signer.Hash(tx)
	return common.RealCipher.Verify(pub, h.Bytes(), sig)
}

// Fee returns the maximum fee the transaction can spend: gas limit times the
// gas price for legacy and access-list versions, gas limit times maxFeePerGas
// for the fee-market versions. The realized fee depends on the block base fee
// and can only be lower.
func (tx *Transaction) Fee() *big.Int {
	gas := new(big.Int).SetUint64(tx.inner.gas())
	switch tx.Type() {
	case LegacyTxType, AccessListTxType:
		return gas.Mul(gas, bigOrZero(tx.inner.gasPrice()))
	default:
		return gas.Mul(gas, bigOrZero(tx.inner.gasFeeCap()))
	}
}

// SetWholeAmount returns a copy of the transaction spending the entire
// balance: value is set to balance minus the maximum fee. For fee-market
// versions burnRemaining additionally raises maxPriorityFeePerGas to
// maxFeePerGas so the whole fee budget is consumed whatever the block base
// fee turns out to be; otherwise part of the fee returns to the sender and
// the final balance is not deterministic.
func (tx *Transaction) SetWholeAmount(balance *big.Int, burnRemaining bool) (*Transaction, error) {
	fee := tx.Fee()
	if balance == nil || balance.Cmp(fee) <= 0 {
		return nil, ErrInvalidAmount
	}
	value := new(big.Int).Sub(balance, fee)
	cpy := tx.inner.copy()
	switch in := cpy.(type) {
	case *LegacyTx:
		in.Value = value
	case *AccessListTx:
		in.Value = value
	case *DynamicFeeTx:
		in.Value = value
		if burnRemaining {
			in.GasTipCap = copyBig(in.GasFeeCap)
		}
	case *BlobTx:
		in.Value = value
		if burnRemaining {
			in.GasTipCap = copyBig(in.GasFeeCap)
		}
	case *SetCodeTx:
		in.Value = value
		if burnRemaining {
			in.GasTipCap = copyBig(in.GasFeeCap)
		}
	}
	return &Transaction{inner: cpy}, nil
}
