// Copyright 2020 Thinkium
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ethtx

import (
	"math/big"

	"github.com/ThinkiumGroup/go-cipher"
	"github.com/ThinkiumGroup/go-common"
)

// AuthorizationMagic is the domain separation byte of the EIP-7702
// authorization signing hash.
const AuthorizationMagic = byte(0x05)

// AuthList is the authorizationList field of a set-code transaction.
type AuthList []Authorization

func (al AuthList) deepCopy() AuthList {
	if al == nil {
		return nil
	}
	cpy := make(AuthList, len(al))
	for i, a := range al {
		cpy[i] = Authorization{
			ChainID: copyBig(a.ChainID),
			Address: a.Address,
			Nonce:   a.Nonce,
			V:       copyBig(a.V),
			R:       copyBig(a.R),
			S:       copyBig(a.S),
		}
	}
	return cpy
}

// Authorization is one signed delegation statement: the signer authorizes
// Address to act as its account code. It is signed independently of the
// enclosing transaction and the authority can differ from the transaction
// sender. The field order is the wire order inside a set-code transaction.
type Authorization struct {
	ChainID *big.Int
	Address common.Address
	Nonce   uint64

	// Signature values
	V *big.Int
	R *big.Int
	S *big.Int
}

// IsSigned reports whether both halves of the signature are present.
func (a *Authorization) IsSigned() bool {
	return a.R != nil && a.S != nil
}

// SigHash returns the hash signed by the authority:
// keccak(0x05 || rlp([chainId, address, nonce])).
func (a *Authorization) SigHash() common.Hash {
	return common.PrefixedRlpHash(AuthorizationMagic, []interface{}{
		a.ChainID,
		a.Address,
		a.Nonce,
	})
}

// SignBy signs the authorization with prv and returns the signed copy. An
// authorization is signed once; re-signing fails.
func (a *Authorization) SignBy(prv cipher.ECCPrivateKey) (*Authorization, error) {
	if a.IsSigned() {
		return nil, ErrAlreadySigned
	}
	h := a.SigHash()
	sig, err := common.RealCipher.Sign(prv.ToBytes(), h.Bytes())
	if err != nil {
		return nil, err
	}
	r, s, _ := DecodeSignature(sig)
	if r == nil {
		return nil, ErrInvalidSig
	}
	return &Authorization{
		ChainID: copyBig(a.ChainID),
		Address: a.Address,
		Nonce:   a.Nonce,
		V:       big.NewInt(int64(sig[64])),
		R:       r,
		S:       s,
	}, nil
}

// Authority recovers the address that signed the authorization.
func (a *Authorization) Authority() (common.Address, error) {
	if !a.IsSigned() {
		return common.Address{}, ErrNotSigned
	}
	if a.V == nil {
		return common.Address{}, ErrInvalidSig
	}
	V := new(big.Int).Add(a.V, big.NewInt(27))
	_, _, addr, err := recoverPlain(a.SigHash(), a.R, a.S, V, true)
	return addr, err
}
