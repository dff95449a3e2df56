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

	"github.com/ThinkiumGroup/go-common"
	"github.com/ThinkiumGroup/go-common/hexutil"
	"github.com/holiman/uint256"
)

// Args represents the arguments to construct a new transaction. A nil field
// is an omitted field; Prepare fills defaults for the omitted fields the
// resolved version knows about.
type Args struct {
	Type                 *hexutil.Uint64 `json:"type,omitempty"`
	ChainID              *hexutil.Big    `json:"chainId,omitempty"`
	Nonce                *hexutil.Uint64 `json:"nonce,omitempty"`
	GasPrice             *hexutil.Big    `json:"gasPrice,omitempty"`
	MaxPriorityFeePerGas *hexutil.Big    `json:"maxPriorityFeePerGas,omitempty"`
	MaxFeePerGas         *hexutil.Big    `json:"maxFeePerGas,omitempty"`
	MaxFeePerBlobGas     *hexutil.Big    `json:"maxFeePerBlobGas,omitempty"`
	Gas                  *hexutil.Uint64 `json:"gas,omitempty"`
	To                   *common.Address `json:"to,omitempty"`
	Value                *hexutil.Big    `json:"value,omitempty"`
	Data                 *hexutil.Bytes  `json:"data,omitempty"`
	AccessList           *AccessList     `json:"accessList,omitempty"`
	AuthorizationList    *AuthList       `json:"authorizationList,omitempty"`
	BlobVersionedHashes  *[]common.Hash  `json:"blobVersionedHashes,omitempty"`

	// Signature values, only accepted when reassembling a signed transaction.
	V *hexutil.Big `json:"v,omitempty"`
	R *hexutil.Big `json:"r,omitempty"`
	S *hexutil.Big `json:"s,omitempty"`
}

// Default field table applied by Prepare. List values are copied fresh on
// every use so no two transactions share a backing array.
var (
	DefaultChainID   = big.NewInt(1)
	DefaultGasLimit  = uint64(21000)
	DefaultGasTipCap = big.NewInt(1000000000) // 1 gwei
)

type argRule struct {
	required    bool
	defaultable bool
}

// txSchemas maps each version to its canonical field set. Any Args field not
// named here is version-inappropriate for that type.
var txSchemas = map[byte]map[string]argRule{
	LegacyTxType: {
		"chainId":  {defaultable: true},
		"nonce":    {},
		"gasPrice": {},
		"gas":      {defaultable: true},
		"to":       {},
		"value":    {},
		"data":     {defaultable: true},
	},
	AccessListTxType: {
		"chainId":    {required: true, defaultable: true},
		"nonce":      {},
		"gasPrice":   {},
		"gas":        {required: true, defaultable: true},
		"to":         {},
		"value":      {},
		"data":       {defaultable: true},
		"accessList": {defaultable: true},
	},
	DynamicFeeTxType: {
		"chainId":              {required: true, defaultable: true},
		"nonce":                {},
		"maxPriorityFeePerGas": {defaultable: true},
		"maxFeePerGas":         {},
		"gas":                  {required: true, defaultable: true},
		"to":                   {},
		"value":                {},
		"data":                 {defaultable: true},
		"accessList":           {defaultable: true},
	},
	BlobTxType: {
		"chainId":              {required: true, defaultable: true},
		"nonce":                {},
		"maxPriorityFeePerGas": {defaultable: true},
		"maxFeePerGas":         {},
		"gas":                  {required: true, defaultable: true},
		"to":                   {required: true},
		"value":                {},
		"data":                 {defaultable: true},
		"accessList":           {defaultable: true},
		"maxFeePerBlobGas":     {required: true},
		"blobVersionedHashes":  {required: true},
	},
	SetCodeTxType: {
		"chainId":              {required: true, defaultable: true},
		"nonce":                {},
		"maxPriorityFeePerGas": {defaultable: true},
		"maxFeePerGas":         {},
		"gas":                  {required: true, defaultable: true},
		"to":                   {required: true},
		"value":                {},
		"data":                 {defaultable: true},
		"accessList":           {defaultable: true},
		"authorizationList":    {defaultable: true},
	},
}

type argField struct {
	name         string
	present      func(*Args) bool
	check        func(*Args) error
	applyDefault func(*Args)
}

var argFields = []argField{
	{
		name:    "chainId",
		present: func(a *Args) bool { return a.ChainID != nil },
		check:   func(a *Args) error { return checkUnsigned256("chainId", a.ChainID.ToInt()) },
		applyDefault: func(a *Args) {
			a.ChainID = (*hexutil.Big)(new(big.Int).Set(DefaultChainID))
		},
	},
	{
		name:    "nonce",
		present: func(a *Args) bool { return a.Nonce != nil },
	},
	{
		name:    "gasPrice",
		present: func(a *Args) bool { return a.GasPrice != nil },
		check:   func(a *Args) error { return checkUnsigned256("gasPrice", a.GasPrice.ToInt()) },
	},
	{
		name:    "maxPriorityFeePerGas",
		present: func(a *Args) bool { return a.MaxPriorityFeePerGas != nil },
		check: func(a *Args) error {
			return checkUnsigned256("maxPriorityFeePerGas", a.MaxPriorityFeePerGas.ToInt())
		},
		applyDefault: func(a *Args) {
			a.MaxPriorityFeePerGas = (*hexutil.Big)(new(big.Int).Set(DefaultGasTipCap))
		},
	},
	{
		name:    "maxFeePerGas",
		present: func(a *Args) bool { return a.MaxFeePerGas != nil },
		check:   func(a *Args) error { return checkUnsigned256("maxFeePerGas", a.MaxFeePerGas.ToInt()) },
	},
	{
		name:    "maxFeePerBlobGas",
		present: func(a *Args) bool { return a.MaxFeePerBlobGas != nil },
		check: func(a *Args) error {
			return checkUnsigned256("maxFeePerBlobGas", a.MaxFeePerBlobGas.ToInt())
		},
	},
	{
		name:    "gas",
		present: func(a *Args) bool { return a.Gas != nil },
		check: func(a *Args) error {
			if uint64(*a.Gas) == 0 {
				return fieldError(ErrInvalidFieldValue, "gas")
			}
			return nil
		},
		applyDefault: func(a *Args) {
			gas := hexutil.Uint64(DefaultGasLimit)
			a.Gas = &gas
		},
	},
	{
		name:    "to",
		present: func(a *Args) bool { return a.To != nil },
	},
	{
		name:    "value",
		present: func(a *Args) bool { return a.Value != nil },
		check:   func(a *Args) error { return checkUnsigned256("value", a.Value.ToInt()) },
	},
	{
		name:    "data",
		present: func(a *Args) bool { return a.Data != nil },
		applyDefault: func(a *Args) {
			data := hexutil.Bytes{}
			a.Data = &data
		},
	},
	{
		name:    "accessList",
		present: func(a *Args) bool { return a.AccessList != nil },
		applyDefault: func(a *Args) {
			al := AccessList{}
			a.AccessList = &al
		},
	},
	{
		name:    "authorizationList",
		present: func(a *Args) bool { return a.AuthorizationList != nil },
		applyDefault: func(a *Args) {
			al := AuthList{}
			a.AuthorizationList = &al
		},
	},
	{
		name:    "blobVersionedHashes",
		present: func(a *Args) bool { return a.BlobVersionedHashes != nil },
		check: func(a *Args) error {
			if len(*a.BlobVersionedHashes) == 0 {
				return fieldError(ErrInvalidFieldValue, "blobVersionedHashes")
			}
			return nil
		},
	},
}

var sigArgFields = []struct {
	name    string
	present func(*Args) bool
	check   func(*Args) error
}{
	{
		name:    "v",
		present: func(a *Args) bool { return a.V != nil },
		check:   func(a *Args) error { return checkUnsigned256("v", a.V.ToInt()) },
	},
	{
		name:    "r",
		present: func(a *Args) bool { return a.R != nil },
		check:   func(a *Args) error { return checkUnsigned256("r", a.R.ToInt()) },
	},
	{
		name:    "s",
		present: func(a *Args) bool { return a.S != nil },
		check:   func(a *Args) error { return checkUnsigned256("s", a.S.ToInt()) },
	},
}

// checkUnsigned256 rejects negative values and values that do not fit into
// 256 bits.
func checkUnsigned256(name string, i *big.Int) error {
	if i == nil {
		return nil
	}
	if i.Sign() < 0 {
		return fieldError(ErrInvalidFieldValue, name)
	}
	if _, overflow := uint256.FromBig(i); overflow {
		return fieldError(ErrInvalidFieldValue, name)
	}
	return nil
}

// Validate checks args against the field schema of the given version.
// In strict mode every required field must be present and fields outside the
// schema are rejected; in lenient mode only the values of the present fields
// are checked. With allowSig false any signature field present fails, which
// keeps user input from smuggling a signature into an unsigned transaction.
func Validate(typ byte, args *Args, strict, allowSig bool) error {
	schema, ok := txSchemas[typ]
	if !ok {
		return ErrTxTypeNotSupported
	}
	for _, f := range argFields {
		rule, inSchema := schema[f.name]
		if !f.present(args) {
			if strict && inSchema && rule.required {
				return fieldError(ErrMissingField, f.name)
			}
			continue
		}
		if !inSchema {
			if strict {
				return fieldError(ErrUnexpectedField, f.name)
			}
			continue
		}
		if f.check != nil {
			if err := f.check(args); err != nil {
				return err
			}
		}
	}
	for _, f := range sigArgFields {
		if !f.present(args) {
			continue
		}
		if !allowSig {
			return fieldError(ErrUnexpectedField, f.name)
		}
		if err := f.check(args); err != nil {
			return err
		}
	}
	return nil
}

// Prepare resolves the version of args, fills the omitted defaultable fields
// of that version, validates the result strictly and builds the unsigned
// transaction. args is never modified and the default table is copied per
// call.
func Prepare(args *Args) (*Transaction, error) {
	typ := byte(DefaultTxType)
	if args.Type != nil {
		if uint64(*args.Type) > 0xff {
			return nil, ErrTxTypeNotSupported
		}
		typ = byte(*args.Type)
	}
	schema, ok := txSchemas[typ]
	if !ok {
		return nil, ErrTxTypeNotSupported
	}
	a := *args
	for _, f := range argFields {
		rule, inSchema := schema[f.name]
		if inSchema && rule.defaultable && !f.present(&a) {
			f.applyDefault(&a)
		}
	}
	if err := Validate(typ, &a, true, false); err != nil {
		return nil, err
	}
	return NewTx(a.toTxData(typ)), nil
}

func (args *Args) bigOf(h *hexutil.Big) *big.Int {
	if h == nil {
		return nil
	}
	return new(big.Int).Set(h.ToInt())
}

func (args *Args) uint64Of(h *hexutil.Uint64) uint64 {
	if h == nil {
		return 0
	}
	return uint64(*h)
}

func (args *Args) bytesOf(h *hexutil.Bytes) []byte {
	if h == nil {
		return nil
	}
	return common.CopyBytes(*h)
}

// toTxData projects the args onto the concrete field struct of the version.
// Callers validate first; the projection itself does not fail.
func (args *Args) toTxData(typ byte) TxData {
	var accessList AccessList
	if args.AccessList != nil {
		accessList = args.AccessList.deepCopy()
	}
	switch typ {
	case LegacyTxType:
		return &LegacyTx{
			ChainID:  args.bigOf(args.ChainID),
			Nonce:    args.uint64Of(args.Nonce),
			GasPrice: args.bigOf(args.GasPrice),
			Gas:      args.uint64Of(args.Gas),
			To:       copyAddressPtr(args.To),
			Value:    args.bigOf(args.Value),
			Data:     args.bytesOf(args.Data),
			V:        args.bigOf(args.V),
			R:        args.bigOf(args.R),
			S:        args.bigOf(args.S),
		}
	case AccessListTxType:
		return &AccessListTx{
			ChainID:    args.bigOf(args.ChainID),
			Nonce:      args.uint64Of(args.Nonce),
			GasPrice:   args.bigOf(args.GasPrice),
			Gas:        args.uint64Of(args.Gas),
			To:         copyAddressPtr(args.To),
			Value:      args.bigOf(args.Value),
			Data:       args.bytesOf(args.Data),
			AccessList: accessList,
			V:          args.bigOf(args.V),
			R:          args.bigOf(args.R),
			S:          args.bigOf(args.S),
		}
	case DynamicFeeTxType:
		return &DynamicFeeTx{
			ChainID:    args.bigOf(args.ChainID),
			Nonce:      args.uint64Of(args.Nonce),
			GasTipCap:  args.bigOf(args.MaxPriorityFeePerGas),
			GasFeeCap:  args.bigOf(args.MaxFeePerGas),
			Gas:        args.uint64Of(args.Gas),
			To:         copyAddressPtr(args.To),
			Value:      args.bigOf(args.Value),
			Data:       args.bytesOf(args.Data),
			AccessList: accessList,
			V:          args.bigOf(args.V),
			R:          args.bigOf(args.R),
			S:          args.bigOf(args.S),
		}
	case BlobTxType:
		inner := &BlobTx{
			ChainID:    args.bigOf(args.ChainID),
			Nonce:      args.uint64Of(args.Nonce),
			GasTipCap:  args.bigOf(args.MaxPriorityFeePerGas),
			GasFeeCap:  args.bigOf(args.MaxFeePerGas),
			Gas:        args.uint64Of(args.Gas),
			Value:      args.bigOf(args.Value),
			Data:       args.bytesOf(args.Data),
			AccessList: accessList,
			BlobFeeCap: args.bigOf(args.MaxFeePerBlobGas),
			V:          args.bigOf(args.V),
			R:          args.bigOf(args.R),
			S:          args.bigOf(args.S),
		}
		if args.To != nil {
			inner.To = *args.To
		}
		if args.BlobVersionedHashes != nil {
			inner.BlobHashes = copyHashes(*args.BlobVersionedHashes)
		}
		return inner
	case SetCodeTxType:
		inner := &SetCodeTx{
			ChainID:    args.bigOf(args.ChainID),
			Nonce:      args.uint64Of(args.Nonce),
			GasTipCap:  args.bigOf(args.MaxPriorityFeePerGas),
			GasFeeCap:  args.bigOf(args.MaxFeePerGas),
			Gas:        args.uint64Of(args.Gas),
			Value:      args.bigOf(args.Value),
			Data:       args.bytesOf(args.Data),
			AccessList: accessList,
			V:          args.bigOf(args.V),
			R:          args.bigOf(args.R),
			S:          args.bigOf(args.S),
		}
		if args.To != nil {
			inner.To = *args.To
		}
		if args.AuthorizationList != nil {
			inner.AuthList = args.AuthorizationList.deepCopy()
		}
		return inner
	}
	return nil
}

// checkInner is the lenient internal validation applied to machine-produced
// transactions, e.g. right after signing: only the values present are
// checked, completeness is not.
func checkInner(inner TxData) error {
	if inner.gas() == 0 {
		return fieldError(ErrInvalidFieldValue, "gas")
	}
	numerics := []struct {
		name string
		val  *big.Int
	}{
		{"chainId", inner.chainID()},
		{"gasPrice", inner.gasPrice()},
		{"maxPriorityFeePerGas", inner.gasTipCap()},
		{"maxFeePerGas", inner.gasFeeCap()},
		{"maxFeePerBlobGas", inner.blobGasFeeCap()},
		{"value", inner.value()},
	}
	for _, n := range numerics {
		if err := checkUnsigned256(n.name, n.val); err != nil {
			return err
		}
	}
	v, r, s := inner.rawSignatureValues()
	for _, n := range []struct {
		name string
		val  *big.Int
	}{{"v", v}, {"r", r}, {"s", s}} {
		if err := checkUnsigned256(n.name, n.val); err != nil {
			return err
		}
	}
	return nil
}
