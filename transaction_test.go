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

func TestFee(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	legacy := NewTx(&LegacyTx{GasPrice: big.NewInt(5), Gas: 21000, To: &to})
	if fee := legacy.Fee(); fee.Cmp(big.NewInt(105000)) != 0 {
		t.Errorf("legacy fee: got %v want 105000", fee)
	}
	dynamic := NewTx(&DynamicFeeTx{GasTipCap: big.NewInt(1), GasFeeCap: big.NewInt(7), Gas: 30000, To: &to})
	if fee := dynamic.Fee(); fee.Cmp(big.NewInt(210000)) != 0 {
		t.Errorf("dynamic fee: got %v want 210000", fee)
	}
	// missing fee fields count as zero
	empty := NewTx(&DynamicFeeTx{Gas: 30000, To: &to})
	if fee := empty.Fee(); fee.Sign() != 0 {
		t.Errorf("fee without price fields: got %v want 0", fee)
	}
}

func TestSetWholeAmount(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	tx := NewTx(&DynamicFeeTx{
		ChainID:   big.NewInt(1),
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	fee := tx.Fee() // 42000

	whole, err := tx.SetWholeAmount(big.NewInt(100000), false)
	if err != nil {
		t.Fatalf("set whole amount: %v", err)
	}
	want := new(big.Int).Sub(big.NewInt(100000), fee)
	if whole.Value().Cmp(want) != 0 {
		t.Errorf("value: got %v want %v", whole.Value(), want)
	}
	if whole.GasTipCap().Cmp(big.NewInt(1)) != 0 {
		t.Errorf("tip should be untouched without burnRemaining: %v", whole.GasTipCap())
	}
	if tx.Value().Cmp(big.NewInt(1)) != 0 {
		t.Errorf("original transaction modified: value %v", tx.Value())
	}

	burned, err := tx.SetWholeAmount(big.NewInt(100000), true)
	if err != nil {
		t.Fatalf("set whole amount: %v", err)
	}
	if burned.GasTipCap().Cmp(burned.GasFeeCap()) != 0 {
		t.Errorf("burnRemaining should raise tip to fee cap: %v / %v",
			burned.GasTipCap(), burned.GasFeeCap())
	}

	if _, err := tx.SetWholeAmount(fee, false); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("balance equal to fee: got %v want %v", err, ErrInvalidAmount)
	}
	if _, err := tx.SetWholeAmount(nil, false); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("nil balance: got %v want %v", err, ErrInvalidAmount)
	}
}

func TestHashRequiresSignature(t *testing.T) {
	for _, tx := range sampleTxs() {
		if _, err := tx.Hash(); !errors.Is(err, ErrNotSigned) {
			t.Errorf("type %d: got %v want %v", tx.Type(), err, ErrNotSigned)
		}
	}
}

func TestYParity(t *testing.T) {
	sk, _ := genKey(t)
	for _, tx := range sampleTxs() {
		if _, err := tx.YParity(); !errors.Is(err, ErrNotSigned) {
			t.Errorf("type %d unsigned yParity: got %v want %v", tx.Type(), err, ErrNotSigned)
		}
		signed, err := tx.SignBy(sk)
		if err != nil {
			t.Fatalf("type %d sign error: %v", tx.Type(), err)
		}
		parity, err := signed.YParity()
		if err != nil {
			t.Fatalf("type %d yParity error: %v", tx.Type(), err)
		}
		if parity > 1 {
			t.Errorf("type %d: parity %d out of range", tx.Type(), parity)
		}
	}
}

func TestAccessorCopies(t *testing.T) {
	tx := sampleTxs()[2]
	tx.Value().SetInt64(9999)
	if tx.Value().Cmp(big.NewInt(300)) != 0 {
		t.Errorf("Value() exposes internal state")
	}
	tx.GasFeeCap().SetInt64(9999)
	if tx.GasFeeCap().Cmp(big.NewInt(50)) != 0 {
		t.Errorf("GasFeeCap() exposes internal state")
	}
	to := tx.To()
	to[0] = 0xff
	if tx.To()[0] == 0xff {
		t.Errorf("To() exposes internal state")
	}
}

func TestNewTxCopiesInner(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	inner := &LegacyTx{GasPrice: big.NewInt(5), Gas: 21000, To: &to, Value: big.NewInt(1)}
	tx := NewTx(inner)
	inner.Value.SetInt64(777)
	inner.Gas = 1
	if tx.Value().Cmp(big.NewInt(1)) != 0 || tx.Gas() != 21000 {
		t.Errorf("NewTx shares state with the caller's struct")
	}
}
