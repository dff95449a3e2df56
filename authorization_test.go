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
	"errors"
	"math/big"
	"testing"

	"github.com/ThinkiumGroup/go-common"
)

func TestAuthorizationSignAndRecover(t *testing.T) {
	sk, addr := genKey(t)
	auth := &Authorization{
		ChainID: big.NewInt(1),
		Address: common.BytesToAddress([]byte{0x44}),
		Nonce:   3,
	}
	signed, err := auth.SignBy(sk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if auth.IsSigned() {
		t.Errorf("SignBy modified the receiver")
	}
	if !signed.IsSigned() {
		t.Errorf("signed authorization reports unsigned")
	}
	if v := signed.V.Uint64(); v > 1 {
		t.Errorf("v: got %d want 0 or 1", v)
	}
	authority, err := signed.Authority()
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if authority != addr {
		t.Errorf("authority %x want %x", authority[:], addr[:])
	}
	if signed.SigHash() != auth.SigHash() {
		t.Errorf("signing changed the authorization hash")
	}
}

func TestAuthorizationSignTwice(t *testing.T) {
	sk, _ := genKey(t)
	auth := &Authorization{ChainID: big.NewInt(1), Address: common.BytesToAddress([]byte{0x44})}
	signed, err := auth.SignBy(sk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := signed.SignBy(sk); !errors.Is(err, ErrAlreadySigned) {
		t.Errorf("got %v want %v", err, ErrAlreadySigned)
	}
}

func TestAuthorityUnsigned(t *testing.T) {
	auth := &Authorization{ChainID: big.NewInt(1), Address: common.BytesToAddress([]byte{0x44})}
	if _, err := auth.Authority(); !errors.Is(err, ErrNotSigned) {
		t.Errorf("got %v want %v", err, ErrNotSigned)
	}
}

func TestAuthorityHighS(t *testing.T) {
	sk, _ := genKey(t)
	auth := &Authorization{ChainID: big.NewInt(1), Address: common.BytesToAddress([]byte{0x44})}
	signed, err := auth.SignBy(sk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	bad := &Authorization{
		ChainID: signed.ChainID,
		Address: signed.Address,
		Nonce:   signed.Nonce,
		V:       new(big.Int).Sub(big.NewInt(1), signed.V),
		R:       signed.R,
		S:       new(big.Int).Sub(secp256k1N, signed.S),
	}
	if _, err := bad.Authority(); !errors.Is(err, ErrInvalidSig) {
		t.Errorf("high-s authority: got %v want %v", err, ErrInvalidSig)
	}
}

func TestAuthorizationHashDependsOnFields(t *testing.T) {
	a := &Authorization{ChainID: big.NewInt(1), Address: common.BytesToAddress([]byte{0x44}), Nonce: 1}
	b := &Authorization{ChainID: big.NewInt(2), Address: a.Address, Nonce: 1}
	c := &Authorization{ChainID: big.NewInt(1), Address: a.Address, Nonce: 2}
	if a.SigHash() == b.SigHash() || a.SigHash() == c.SigHash() {
		t.Errorf("authorization hash ignores fields")
	}
}

// The authorization signer and the transaction sender are independent keys.
func TestSetCodeTxWithAuthorizations(t *testing.T) {
	txKey, txAddr := genKey(t)
	authKey, authAddr := genKey(t)

	auth := &Authorization{
		ChainID: big.NewInt(1),
		Address: common.BytesToAddress([]byte{0x44}),
		Nonce:   7,
	}
	signedAuth, err := auth.SignBy(authKey)
	if err != nil {
		t.Fatalf("sign authorization: %v", err)
	}

	to := common.BytesToAddress([]byte{0x99})
	tx := NewTx(&SetCodeTx{
		ChainID:   big.NewInt(1),
		Nonce:     1,
		GasTipCap: big.NewInt(2),
		GasFeeCap: big.NewInt(50),
		Gas:       60000,
		To:        to,
		Value:     big.NewInt(0),
		AuthList:  AuthList{*signedAuth},
	})
	signed, err := tx.SignBy(txKey)
	if err != nil {
		t.Fatalf("sign transaction: %v", err)
	}
	bs, err := signed.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := DecodeTx(bs)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	_, sender, err := decoded.RecoverSender()
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if sender != txAddr {
		t.Errorf("sender %x want %x", sender[:], txAddr[:])
	}
	list := decoded.AuthorizationList()
	if len(list) != 1 {
		t.Fatalf("authorization list length %d", len(list))
	}
	authority, err := list[0].Authority()
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if authority != authAddr {
		t.Errorf("authority %x want %x", authority[:], authAddr[:])
	}
	if authority == sender {
		t.Errorf("test keys collided")
	}
}
