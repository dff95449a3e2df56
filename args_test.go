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
	"github.com/ThinkiumGroup/go-common/hexutil"
)

func u64p(v uint64) *hexutil.Uint64 {
	u := hexutil.Uint64(v)
	return &u
}

func bigp(v int64) *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(v))
}

func TestPrepareDefaults(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	args := &Args{To: &to, Value: bigp(100)}
	tx, err := Prepare(args)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if tx.Type() != DynamicFeeTxType {
		t.Errorf("default type: got %d want %d", tx.Type(), DynamicFeeTxType)
	}
	if cid := tx.ChainId(); cid == nil || cid.Cmp(DefaultChainID) != 0 {
		t.Errorf("default chainId: got %v want %v", cid, DefaultChainID)
	}
	if tx.Gas() != DefaultGasLimit {
		t.Errorf("default gas: got %d want %d", tx.Gas(), DefaultGasLimit)
	}
	if tip := tx.GasTipCap(); tip == nil || tip.Cmp(DefaultGasTipCap) != 0 {
		t.Errorf("default tip: got %v want %v", tip, DefaultGasTipCap)
	}
	if tx.IsSigned() {
		t.Errorf("prepared transaction must be unsigned")
	}
	if args.ChainID != nil || args.Gas != nil || args.Data != nil {
		t.Errorf("prepare modified the caller's args")
	}
	if tx.To() == nil || *tx.To() != to {
		t.Errorf("to: got %v want %x", tx.To(), to[:])
	}
}

func TestPrepareDefaultsNotShared(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	tx1, err := Prepare(&Args{To: &to})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	tx2, err := Prepare(&Args{To: &to})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	tx1.inner.(*DynamicFeeTx).GasTipCap.SetInt64(777)
	if tx2.GasTipCap().Cmp(DefaultGasTipCap) != 0 {
		t.Errorf("default values shared between prepared transactions")
	}
	if DefaultGasTipCap.Cmp(big.NewInt(1000000000)) != 0 {
		t.Errorf("default table modified: %v", DefaultGasTipCap)
	}
}

func TestPrepareEachType(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	cases := []struct {
		name string
		args *Args
		typ  byte
	}{
		{"legacy", &Args{Type: u64p(0), GasPrice: bigp(30), To: &to}, LegacyTxType},
		{"accessList", &Args{Type: u64p(1), GasPrice: bigp(30), To: &to}, AccessListTxType},
		{"dynamicFee", &Args{Type: u64p(2), MaxFeePerGas: bigp(50), To: &to}, DynamicFeeTxType},
		{"blob", &Args{
			Type:                u64p(3),
			MaxFeePerGas:        bigp(50),
			MaxFeePerBlobGas:    bigp(10),
			To:                  &to,
			BlobVersionedHashes: &[]common.Hash{common.BytesToHash([]byte{0x33})},
		}, BlobTxType},
		{"setCode", &Args{
			Type:              u64p(4),
			MaxFeePerGas:      bigp(50),
			To:                &to,
			AuthorizationList: &AuthList{},
		}, SetCodeTxType},
	}
	for _, c := range cases {
		tx, err := Prepare(c.args)
		if err != nil {
			t.Errorf("%s: prepare error: %v", c.name, err)
			continue
		}
		if tx.Type() != c.typ {
			t.Errorf("%s: type %d want %d", c.name, tx.Type(), c.typ)
		}
	}
}

func TestPrepareRejectsForeignFields(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	// gasPrice does not belong to a fee-market transaction
	if _, err := Prepare(&Args{To: &to, GasPrice: bigp(30)}); !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("gasPrice on dynamic fee: got %v want %v", err, ErrUnexpectedField)
	}
	// and the fee-market caps do not belong to a legacy transaction
	if _, err := Prepare(&Args{Type: u64p(0), To: &to, MaxFeePerGas: bigp(50)}); !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("maxFeePerGas on legacy: got %v want %v", err, ErrUnexpectedField)
	}
	if _, err := Prepare(&Args{Type: u64p(0), To: &to, BlobVersionedHashes: &[]common.Hash{{}}}); !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("blob hashes on legacy: got %v want %v", err, ErrUnexpectedField)
	}
	// signature values cannot be smuggled into a new transaction
	if _, err := Prepare(&Args{To: &to, V: bigp(1), R: bigp(2), S: bigp(3)}); !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("signature in args: got %v want %v", err, ErrUnexpectedField)
	}
}

func TestPrepareUnknownType(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	for _, typ := range []uint64{5, 0x20, 0x7f, 0x1234} {
		if _, err := Prepare(&Args{Type: u64p(typ), To: &to}); !errors.Is(err, ErrTxTypeNotSupported) {
			t.Errorf("type %#x: got %v want %v", typ, err, ErrTxTypeNotSupported)
		}
	}
}

func TestPrepareBlobRequirements(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	hashes := []common.Hash{common.BytesToHash([]byte{0x33})}
	if _, err := Prepare(&Args{Type: u64p(3), To: &to, BlobVersionedHashes: &hashes}); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing maxFeePerBlobGas: got %v want %v", err, ErrMissingField)
	}
	if _, err := Prepare(&Args{Type: u64p(3), To: &to, MaxFeePerBlobGas: bigp(10)}); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing blob hashes: got %v want %v", err, ErrMissingField)
	}
	if _, err := Prepare(&Args{Type: u64p(3), MaxFeePerBlobGas: bigp(10), BlobVersionedHashes: &hashes}); !errors.Is(err, ErrMissingField) {
		t.Errorf("missing to: got %v want %v", err, ErrMissingField)
	}
	empty := []common.Hash{}
	if _, err := Prepare(&Args{Type: u64p(3), To: &to, MaxFeePerBlobGas: bigp(10), BlobVersionedHashes: &empty}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("empty blob hashes: got %v want %v", err, ErrInvalidFieldValue)
	}
}

func TestValidateValues(t *testing.T) {
	to := common.BytesToAddress([]byte{0x99})
	neg := (*hexutil.Big)(big.NewInt(-1))
	if _, err := Prepare(&Args{To: &to, Value: neg}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("negative value: got %v want %v", err, ErrInvalidFieldValue)
	}
	if _, err := Prepare(&Args{To: &to, Gas: u64p(0)}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("zero gas: got %v want %v", err, ErrInvalidFieldValue)
	}
	huge := (*hexutil.Big)(new(big.Int).Lsh(big.NewInt(1), 256))
	if _, err := Prepare(&Args{To: &to, Value: huge}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("value over 256 bits: got %v want %v", err, ErrInvalidFieldValue)
	}
}

func TestValidateLenient(t *testing.T) {
	// lenient mode skips completeness and schema membership, keeps value checks
	args := &Args{GasPrice: bigp(30)}
	if err := Validate(DynamicFeeTxType, args, false, false); err != nil {
		t.Errorf("lenient foreign field: %v", err)
	}
	bad := &Args{Value: (*hexutil.Big)(big.NewInt(-5))}
	if err := Validate(DynamicFeeTxType, bad, false, false); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("lenient negative value: got %v want %v", err, ErrInvalidFieldValue)
	}
	sig := &Args{V: bigp(1)}
	if err := Validate(DynamicFeeTxType, sig, false, false); !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("signature without allowSig: got %v want %v", err, ErrUnexpectedField)
	}
	if err := Validate(DynamicFeeTxType, sig, false, true); err != nil {
		t.Errorf("signature with allowSig: %v", err)
	}
}

func TestPreparedCanBeSigned(t *testing.T) {
	sk, addr := genKey(t)
	to := common.BytesToAddress([]byte{0x99})
	tx, err := Prepare(&Args{To: &to, Value: bigp(100), MaxFeePerGas: bigp(50)})
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	signed, err := tx.SignBy(sk)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, sender, err := signed.RecoverSender()
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	if sender != addr {
		t.Errorf("sender %x want %x", sender[:], addr[:])
	}
}
