package ethtx

import (
	"fmt"
	"math/big"

	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/rlp"
)

// Field counts of the unsigned payload per version; the signed payload has
// three more elements (v or yParity, r, s).
const (
	legacyFieldCount     = 6
	accessListFieldCount = 8
	dynamicFeeFieldCount = 9
	blobFieldCount       = 11
	setCodeFieldCount    = 10
)

// EncodeRaw returns the wire bytes of the transaction: the bare RLP list for
// the legacy version, the discriminator byte followed by the RLP list for the
// typed versions. With withSig the signature fields are included and the
// transaction must be signed; without it the output is exactly the unsigned
// field layout the signature hash is built over (minus the legacy
// replay-protection triple, which only exists in the signing preimage).
func (tx *Transaction) EncodeRaw(withSig bool) ([]byte, error) {
	if withSig && !tx.IsSigned() {
		return nil, ErrNotSigned
	}
	body, err := rlp.EncodeToBytes(tx.inner.payload(withSig))
	if err != nil {
		return nil, err
	}
	if tx.Type() == LegacyTxType {
		return body, nil
	}
	return append([]byte{tx.Type()}, body...), nil
}

// MarshalBinary encodes the transaction in its current state: signed
// envelope when a signature is attached, unsigned layout otherwise.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	return tx.EncodeRaw(tx.IsSigned())
}

// DecodeTx decodes a transaction of any envelope version from its wire bytes.
func DecodeTx(b []byte) (*Transaction, error) {
	tx := new(Transaction)
	if err := tx.UnmarshalBinary(b); err != nil {
		return nil, err
	}
	return tx, nil
}

func (tx *Transaction) UnmarshalBinary(b []byte) error {
	if len(b) > 0 && b[0] > 0x7f {
		// It's a legacy transaction.
		inner, err := decodeLegacy(b)
		if err != nil {
			return err
		}
		tx.setDecoded(inner)
		return nil
	}
	// It's an EIP2718 typed transaction envelope.
	inner, err := decodeTyped(b)
	if err != nil {
		return err
	}
	tx.setDecoded(inner)
	return nil
}

// decodeTyped decodes a typed transaction from the canonical format.
func decodeTyped(b []byte) (TxData, error) {
	if len(b) == 0 {
		return nil, errEmptyTypedTx
	}
	switch b[0] {
	case AccessListTxType:
		return decodeAccessListTx(b[1:])
	case DynamicFeeTxType:
		return decodeDynamicFeeTx(b[1:])
	case BlobTxType:
		return decodeBlobTx(b[1:])
	case SetCodeTxType:
		return decodeSetCodeTx(b[1:])
	default:
		return nil, ErrTxTypeNotSupported
	}
}

func decodeLegacy(b []byte) (TxData, error) {
	r, signed, err := newFieldReader(b, legacyFieldCount)
	if err != nil {
		return nil, err
	}
	inner := &LegacyTx{
		Nonce:    r.uint64("nonce"),
		GasPrice: r.bigInt("gasPrice"),
		Gas:      r.uint64("gasLimit"),
		To:       r.optionalAddress("to"),
		Value:    r.bigInt("value"),
		Data:     r.bytes("data"),
	}
	if signed {
		inner.V = r.bigInt("v")
		inner.R = r.bigInt("r")
		inner.S = r.bigInt("s")
	}
	return inner, r.err
}

func decodeAccessListTx(b []byte) (TxData, error) {
	r, signed, err := newFieldReader(b, accessListFieldCount)
	if err != nil {
		return nil, err
	}
	inner := &AccessListTx{
		ChainID:    r.bigInt("chainId"),
		Nonce:      r.uint64("nonce"),
		GasPrice:   r.bigInt("gasPrice"),
		Gas:        r.uint64("gasLimit"),
		To:         r.optionalAddress("to"),
		Value:      r.bigInt("value"),
		Data:       r.bytes("data"),
		AccessList: r.accessList("accessList"),
	}
	if signed {
		inner.V = r.bigInt("yParity")
		inner.R = r.bigInt("r")
		inner.S = r.bigInt("s")
	}
	return inner, r.err
}

func decodeDynamicFeeTx(b []byte) (TxData, error) {
	r, signed, err := newFieldReader(b, dynamicFeeFieldCount)
	if err != nil {
		return nil, err
	}
	inner := &DynamicFeeTx{
		ChainID:    r.bigInt("chainId"),
		Nonce:      r.uint64("nonce"),
		GasTipCap:  r.bigInt("maxPriorityFeePerGas"),
		GasFeeCap:  r.bigInt("maxFeePerGas"),
		Gas:        r.uint64("gasLimit"),
		To:         r.optionalAddress("to"),
		Value:      r.bigInt("value"),
		Data:       r.bytes("data"),
		AccessList: r.accessList("accessList"),
	}
	if signed {
		inner.V = r.bigInt("yParity")
		inner.R = r.bigInt("r")
		inner.S = r.bigInt("s")
	}
	return inner, r.err
}

func decodeBlobTx(b []byte) (TxData, error) {
	r, signed, err := newFieldReader(b, blobFieldCount)
	if err != nil {
		return nil, err
	}
	inner := &BlobTx{
		ChainID:    r.bigInt("chainId"),
		Nonce:      r.uint64("nonce"),
		GasTipCap:  r.bigInt("maxPriorityFeePerGas"),
		GasFeeCap:  r.bigInt("maxFeePerGas"),
		Gas:        r.uint64("gasLimit"),
		To:         r.address("to"),
		Value:      r.bigInt("value"),
		Data:       r.bytes("data"),
		AccessList: r.accessList("accessList"),
		BlobFeeCap: r.bigInt("maxFeePerBlobGas"),
		BlobHashes: r.hashList("blobVersionedHashes"),
	}
	if signed {
		inner.V = r.bigInt("yParity")
		inner.R = r.bigInt("r")
		inner.S = r.bigInt("s")
	}
	return inner, r.err
}

func decodeSetCodeTx(b []byte) (TxData, error) {
	r, signed, err := newFieldReader(b, setCodeFieldCount)
	if err != nil {
		return nil, err
	}
	inner := &SetCodeTx{
		ChainID:    r.bigInt("chainId"),
		Nonce:      r.uint64("nonce"),
		GasTipCap:  r.bigInt("maxPriorityFeePerGas"),
		GasFeeCap:  r.bigInt("maxFeePerGas"),
		Gas:        r.uint64("gasLimit"),
		To:         r.address("to"),
		Value:      r.bigInt("value"),
		Data:       r.bytes("data"),
		AccessList: r.accessList("accessList"),
		AuthList:   r.authList("authorizationList"),
	}
	if signed {
		inner.V = r.bigInt("yParity")
		inner.R = r.bigInt("r")
		inner.S = r.bigInt("s")
	}
	return inner, r.err
}

// fieldReader walks the raw items of the decoded payload list positionally,
// remembering the first failure.
type fieldReader struct {
	elems []rlp.RawValue
	pos   int
	err   error
}

// newFieldReader splits b into its top-level list items and checks the item
// count against the unsigned field count of the version; the count plus the
// signature triple selects the signed layout.
func newFieldReader(b []byte, unsignedCount int) (r *fieldReader, signed bool, err error) {
	var elems []rlp.RawValue
	if err := rlp.DecodeBytes(b, &elems); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	switch len(elems) {
	case unsignedCount:
		return &fieldReader{elems: elems}, false, nil
	case unsignedCount + 3:
		return &fieldReader{elems: elems}, true, nil
	default:
		return nil, false, fmt.Errorf("%w: %d fields, want %d or %d",
			ErrMalformedEncoding, len(elems), unsignedCount, unsignedCount+3)
	}
}

func (r *fieldReader) decode(name string, val interface{}) {
	if r.err != nil {
		return
	}
	if r.pos >= len(r.elems) {
		r.err = fieldError(ErrMalformedEncoding, name)
		return
	}
	if err := rlp.DecodeBytes(r.elems[r.pos], val); err != nil {
		r.err = fieldError(ErrMalformedEncoding, name)
		return
	}
	r.pos++
}

func (r *fieldReader) uint64(name string) uint64 {
	var v uint64
	r.decode(name, &v)
	return v
}

func (r *fieldReader) bigInt(name string) *big.Int {
	v := new(big.Int)
	r.decode(name, v)
	return v
}

func (r *fieldReader) bytes(name string) []byte {
	var v []byte
	r.decode(name, &v)
	return v
}

// optionalAddress accepts the empty string as a nil recipient (contract
// creation) and otherwise requires exactly 20 bytes.
func (r *fieldReader) optionalAddress(name string) *common.Address {
	var v []byte
	r.decode(name, &v)
	if r.err != nil || len(v) == 0 {
		return nil
	}
	if len(v) != common.AddressLength {
		r.err = fieldError(ErrMalformedEncoding, name)
		return nil
	}
	addr := common.BytesToAddress(v)
	return &addr
}

func (r *fieldReader) address(name string) common.Address {
	var v common.Address
	r.decode(name, &v)
	return v
}

func (r *fieldReader) hashList(name string) []common.Hash {
	var v []common.Hash
	r.decode(name, &v)
	return v
}

func (r *fieldReader) accessList(name string) AccessList {
	var v AccessList
	r.decode(name, &v)
	return v
}

func (r *fieldReader) authList(name string) AuthList {
	var v AuthList
	r.decode(name, &v)
	return v
}
