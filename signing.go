package ethtx

import (
	"errors"
	"math/big"

	"github.com/ThinkiumGroup/go-cipher"
	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/hexutil"
	"github.com/ThinkiumGroup/go-common/log"
	"github.com/ThinkiumGroup/go-ecrypto/sha3"
)

// Signer encapsulates transaction signature handling. The name of this type is
// slightly misleading because Signers don't actually sign, they're just for
// validating and processing of signatures.
type Signer interface {
	// Sender returns the sender address of the transaction.
	Sender(tx *Transaction) (common.Address, error)

	// SignatureValues returns the raw R, S, V values corresponding to the
	// given signature.
	SignatureValues(tx *Transaction, sig []byte) (r, s, v *big.Int, err error)

	// Hash returns 'signature hash', i.e. the transaction hash that is signed
	// by the private key. This hash does not uniquely identify the
	// transaction.
	Hash(tx *Transaction) common.Hash

	// Equal returns true if the given signer is the same as the receiver.
	Equal(Signer) bool

	RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error)
}

// LatestSigner returns the signer accepting every known envelope version.
func LatestSigner() Signer {
	return NewPragueSigner()
}

// SignTx computes the signing preimage hash of tx with the given signer,
// signs it with prv and returns a new signed transaction. tx itself is not
// modified.
func SignTx(tx *Transaction, signer Signer, prv cipher.ECCPrivateKey) (*Transaction, error) {
	h := signer.Hash(tx)
	if h == (common.Hash{}) {
		return nil, ErrTxTypeNotSupported
	}
	sig, err := common.RealCipher.Sign(prv.ToBytes(), h.Bytes())
	if err != nil {
		return nil, err
	}
	r, s, v, err := signer.SignatureValues(tx, sig)
	if err != nil {
		return nil, err
	}
	cpy := tx.inner.copy()
	cpy.setSignatureValues(copyBig(tx.inner.chainID()), v, r, s)
	return &Transaction{inner: cpy}, nil
}

// PrivateKeyFromBytes wraps a raw secp256k1 private key.
func PrivateKeyFromBytes(b []byte) (cipher.ECCPrivateKey, error) {
	return common.RealCipher.BytesToPriv(b)
}

// PrivateKeyFromHex parses a private key from a hex string, with or without
// the 0x prefix.
func PrivateKeyFromHex(s string) (cipher.ECCPrivateKey, error) {
	if len(s) < 2 || (s[:2] != "0x" && s[:2] != "0X") {
		s = "0x" + s
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	return common.RealCipher.BytesToPriv(b)
}

type pragueSigner struct{ cancunSigner }

// NewPragueSigner returns a signer accepting set-code transactions on top of
// everything the cancun signer accepts.
func NewPragueSigner() Signer {
	return pragueSigner{cancunSigner{londonSigner{eip2930Signer{NewEIP155Signer()}}}}
}

func (s pragueSigner) Equal(s2 Signer) bool {
	_, ok := s2.(pragueSigner)
	return ok
}

func (s pragueSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != SetCodeTxType {
		return s.cancunSigner.Sender(tx)
	}
	return typedSender(tx)
}

func (s pragueSigner) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != SetCodeTxType {
		return s.cancunSigner.RecoverSigAndPub(tx)
	}
	return typedSigAndPub(tx)
}

func (s pragueSigner) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if _, ok := tx.inner.(*SetCodeTx); !ok {
		return s.cancunSigner.SignatureValues(tx, sig)
	}
	return typedSignatureValues(sig)
}

func (s pragueSigner) Hash(tx *Transaction) common.Hash {
	if tx.Type() != SetCodeTxType {
		return s.cancunSigner.Hash(tx)
	}
	return typedHash(tx)
}

type cancunSigner struct{ londonSigner }

// NewCancunSigner returns a signer accepting blob transactions on top of
// everything the london signer accepts.
func NewCancunSigner() Signer {
	return cancunSigner{londonSigner{eip2930Signer{NewEIP155Signer()}}}
}

func (s cancunSigner) Equal(s2 Signer) bool {
	_, ok := s2.(cancunSigner)
	return ok
}

func (s cancunSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != BlobTxType {
		return s.londonSigner.Sender(tx)
	}
	return typedSender(tx)
}

func (s cancunSigner) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != BlobTxType {
		return s.londonSigner.RecoverSigAndPub(tx)
	}
	return typedSigAndPub(tx)
}

func (s cancunSigner) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if _, ok := tx.inner.(*BlobTx); !ok {
		return s.londonSigner.SignatureValues(tx, sig)
	}
	return typedSignatureValues(sig)
}

func (s cancunSigner) Hash(tx *Transaction) common.Hash {
	if tx.Type() != BlobTxType {
		return s.londonSigner.Hash(tx)
	}
	return typedHash(tx)
}

type londonSigner struct{ eip2930Signer }

// NewLondonSigner returns a signer that accepts
// - EIP-1559 dynamic fee transactions
// - EIP-2930 access list transactions,
// - EIP-155 replay protected transactions, and
// - legacy Homestead transactions.
func NewLondonSigner() Signer {
	return londonSigner{eip2930Signer{NewEIP155Signer()}}
}

func (s londonSigner) Equal(s2 Signer) bool {
	_, ok := s2.(londonSigner)
	return ok
}

func (s londonSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != DynamicFeeTxType {
		return s.eip2930Signer.Sender(tx)
	}
	return typedSender(tx)
}

func (s londonSigner) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != DynamicFeeTxType {
		return s.eip2930Signer.RecoverSigAndPub(tx)
	}
	return typedSigAndPub(tx)
}

func (s londonSigner) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if _, ok := tx.inner.(*DynamicFeeTx); !ok {
		return s.eip2930Signer.SignatureValues(tx, sig)
	}
	return typedSignatureValues(sig)
}

func (s londonSigner) Hash(tx *Transaction) common.Hash {
	if tx.Type() != DynamicFeeTxType {
		return s.eip2930Signer.Hash(tx)
	}
	return typedHash(tx)
}

type eip2930Signer struct{ EIP155Signer }

// NewEIP2930Signer returns a signer that accepts EIP-2930 access list
// transactions, EIP-155 replay protected transactions, and legacy Homestead
// transactions.
func NewEIP2930Signer() Signer {
	return eip2930Signer{NewEIP155Signer()}
}

func (s eip2930Signer) Equal(s2 Signer) bool {
	_, ok := s2.(eip2930Signer)
	return ok
}

func (s eip2930Signer) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != AccessListTxType {
		return s.EIP155Signer.Sender(tx)
	}
	return typedSender(tx)
}

func (s eip2930Signer) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != AccessListTxType {
		return s.EIP155Signer.RecoverSigAndPub(tx)
	}
	return typedSigAndPub(tx)
}

func (s eip2930Signer) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if _, ok := tx.inner.(*AccessListTx); !ok {
		return s.EIP155Signer.SignatureValues(tx, sig)
	}
	return typedSignatureValues(sig)
}

func (s eip2930Signer) Hash(tx *Transaction) common.Hash {
	if tx.Type() != AccessListTxType {
		return s.EIP155Signer.Hash(tx)
	}
	return typedHash(tx)
}

// EIP155Signer implements Signer using the EIP-155 rules. This accepts
// transactions which are replay-protected as well as unprotected homestead
// transactions.
type EIP155Signer struct{}

func NewEIP155Signer() EIP155Signer {
	return EIP155Signer{}
}

func (s EIP155Signer) Equal(s2 Signer) bool {
	_, ok := s2.(EIP155Signer)
	return ok
}

var big8 = big.NewInt(8)

func (s EIP155Signer) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != LegacyTxType {
		return common.Address{}, ErrTxTypeNotSupported
	}
	if !tx.Protected() {
		return HomesteadSigner{}.Sender(tx)
	}
	V, R, S := tx.RawSignatureValues()
	V = recoverV(V, tx.ChainId())
	_, _, addr, err := recoverPlain(s.Hash(tx), R, S, V, true)
	return addr, err
}

func (s EIP155Signer) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != LegacyTxType {
		return nil, nil, ErrTxTypeNotSupported
	}
	if !tx.Protected() {
		return HomesteadSigner{}.RecoverSigAndPub(tx)
	}
	V, R, S := tx.RawSignatureValues()
	V = recoverV(V, tx.ChainId())
	sig, pub, _, err = recoverPlain(s.Hash(tx), R, S, V, true)
	return sig, pub, err
}

// SignatureValues returns signature values. This signature needs to be in the
// [R || S || V] format where V is 0 or 1.
func (s EIP155Signer) SignatureValues(tx *Transaction, sig []byte) (R, S, V *big.Int, err error) {
	if tx.Type() != LegacyTxType {
		return nil, nil, nil, ErrTxTypeNotSupported
	}
	R, S, V = DecodeSignature(sig)
	if R == nil {
		return nil, nil, nil, ErrInvalidSig
	}
	txchainid := tx.ChainId()
	if txchainid != nil && txchainid.Sign() != 0 {
		V = big.NewInt(int64(sig[64] + 35))
		V.Add(V, new(big.Int).Mul(txchainid, big.NewInt(2)))
	}
	return R, S, V, nil
}

// Hash returns the hash to be signed by the sender. With a chain id present
// the EIP-155 replay-protection triple is appended to the unsigned payload;
// without one the pre-protection layout is used.
func (s EIP155Signer) Hash(tx *Transaction) common.Hash {
	chainid := tx.ChainId()
	if chainid == nil {
		return HomesteadSigner{}.Hash(tx)
	}
	return common.RlpHash(append(tx.inner.payload(false), chainid, uint(0), uint(0)))
}

// HomesteadSigner implements Signer using the homestead rules.
type HomesteadSigner struct{ FrontierSigner }

func (h HomesteadSigner) ChainID() *big.Int {
	return nil
}

func (h HomesteadSigner) Equal(s2 Signer) bool {
	_, ok := s2.(HomesteadSigner)
	return ok
}

// SignatureValues returns signature values. This signature needs to be in the
// [R || S || V] format where V is 0 or 1.
func (h HomesteadSigner) SignatureValues(tx *Transaction, sig []byte) (r, s, v *big.Int, err error) {
	return h.FrontierSigner.SignatureValues(tx, sig)
}

func (h HomesteadSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != LegacyTxType {
		return common.Address{}, ErrTxTypeNotSupported
	}
	v, r, s := tx.RawSignatureValues()
	_, _, addr, err := recoverPlain(h.Hash(tx), r, s, v, true)
	return addr, err
}

func (h HomesteadSigner) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != LegacyTxType {
		return nil, nil, ErrTxTypeNotSupported
	}
	v, r, s := tx.RawSignatureValues()
	sig, pub, _, err = recoverPlain(h.Hash(tx), r, s, v, true)
	return sig, pub, err
}

type FrontierSigner struct{}

func (f FrontierSigner) ChainID() *big.Int {
	return nil
}

func (f FrontierSigner) Equal(s2 Signer) bool {
	_, ok := s2.(FrontierSigner)
	return ok
}

func (f FrontierSigner) Sender(tx *Transaction) (common.Address, error) {
	if tx.Type() != LegacyTxType {
		return common.Address{}, ErrTxTypeNotSupported
	}
	v, r, s := tx.RawSignatureValues()
	_, _, addr, err := recoverPlain(f.Hash(tx), r, s, v, false)
	return addr, err
}

func (f FrontierSigner) RecoverSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	if tx.Type() != LegacyTxType {
		return nil, nil, ErrTxTypeNotSupported
	}
	v, r, s := tx.RawSignatureValues()
	sig, pub, _, err = recoverPlain(f.Hash(tx), r, s, v, false)
	return sig, pub, err
}

// SignatureValues returns signature values. This signature needs to be in the
// [R || S || V] format where V is 0 or 1.
func (f FrontierSigner) SignatureValues(tx *Transaction, sig []byte) (r, s, v *big.Int, err error) {
	if tx.Type() != LegacyTxType {
		return nil, nil, nil, ErrTxTypeNotSupported
	}
	r, s, v = DecodeSignature(sig)
	if r == nil {
		return nil, nil, nil, ErrInvalidSig
	}
	return r, s, v, nil
}

// Hash returns the hash to be signed by the sender. It does not uniquely
// identify the transaction.
func (f FrontierSigner) Hash(tx *Transaction) common.Hash {
	return common.RlpHash(tx.inner.payload(false))
}

// typedHash is the signing preimage hash shared by every EIP-2718 envelope:
// keccak(type || rlp(unsigned payload)).
func typedHash(tx *Transaction) common.Hash {
	return common.PrefixedRlpHash(tx.Type(), tx.inner.payload(false))
}

// Typed transactions are defined to use 0 and 1 as their recovery id, add 27
// to become equivalent to unprotected Homestead signatures.
func typedSender(tx *Transaction) (common.Address, error) {
	V, R, S := tx.RawSignatureValues()
	if V == nil {
		return common.Address{}, ErrInvalidSig
	}
	V = new(big.Int).Add(V, big.NewInt(27))
	_, _, addr, err := recoverPlain(typedHash(tx), R, S, V, true)
	return addr, err
}

func typedSigAndPub(tx *Transaction) (sig, pub []byte, err error) {
	V, R, S := tx.RawSignatureValues()
	if V == nil {
		return nil, nil, ErrInvalidSig
	}
	V = new(big.Int).Add(V, big.NewInt(27))
	sig, pub, _, err = recoverPlain(typedHash(tx), R, S, V, true)
	return sig, pub, err
}

func typedSignatureValues(sig []byte) (R, S, V *big.Int, err error) {
	R, S, _ = DecodeSignature(sig)
	if R == nil {
		return nil, nil, nil, ErrInvalidSig
	}
	V = big.NewInt(int64(sig[64]))
	return R, S, V, nil
}

func DecodeSignature(sig []byte) (r, s, v *big.Int) {
	if len(sig) != common.RealCipher.LengthOfSignature() {
		log.Errorf("wrong size for signature: got %d, want %d", len(sig), common.RealCipher.LengthOfSignature())
		return nil, nil, nil
	}
	r = new(big.Int).SetBytes(sig[:32])
	s = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes([]byte{sig[64] + 27})
	return r, s, v
}

func recoverPlain(sighash common.Hash, R, S, Vb *big.Int, homestead bool) (sig, pub []byte, addr common.Address, err error) {
	if R == nil || S == nil || Vb == nil {
		return nil, nil, common.Address{}, ErrInvalidSig
	}
	if Vb.BitLen() > 8 {
		return nil, nil, common.Address{}, ErrInvalidSig
	}
	V := byte(Vb.Uint64() - 27)
	if !sha3.ValidateSignatureValues(V, R, S, homestead) {
		return nil, nil, common.Address{}, ErrInvalidSig
	}
	// encode the signature in uncompressed format
	r, s := R.Bytes(), S.Bytes()
	sig = make([]byte, common.RealCipher.LengthOfSignature())
	copy(sig[32-len(r):32], r)
	copy(sig[64-len(s):64], s)
	sig[64] = V
	// recover the public key from the signature
	pub, err = cipher.Ecrecover(sighash[:], sig)
	if err != nil {
		return nil, nil, common.Address{}, err
	}
	if len(pub) == 0 || pub[0] != 4 {
		return nil, nil, common.Address{}, errors.New("invalid public key")
	}
	copy(addr[:], common.SystemHash256(pub[1:])[12:])
	return sig, pub, addr, nil
}

// compressPub converts an uncompressed 65-byte secp256k1 public key into the
// 33-byte compressed form.
func compressPub(pub []byte) []byte {
	if len(pub) != 65 || pub[0] != 4 {
		return nil
	}
	out := make([]byte, 33)
	out[0] = 2 | pub[64]&1
	copy(out[1:], pub[1:33])
	return out
}

// deriveChainId derives the chain id from the given v parameter
func deriveChainId(v *big.Int) *big.Int {
	if v.BitLen() <= 64 {
		v := v.Uint64()
		if v == 27 || v == 28 {
			return new(big.Int)
		}
		return new(big.Int).SetUint64((v - 35) / 2)
	}
	v = new(big.Int).Sub(v, big.NewInt(35))
	return v.Div(v, big.NewInt(2))
}

func recoverV(v *big.Int, chainId *big.Int) *big.Int {
	chainIdMul := new(big.Int).Mul(chainId, big.NewInt(2))
	vv := new(big.Int).Sub(v, chainIdMul)
	vv.Sub(vv, big8)
	return vv
}

func isProtectedV(V *big.Int) bool {
	if V.BitLen() <= 8 {
		v := V.Uint64()
		return v != 27 && v != 28 && v != 1 && v != 0
	}
	// anything not 27 or 28 is considered protected
	return true
}
