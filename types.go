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

// Package ethtx builds, validates, encodes, hashes, signs and recovers
// ethereum account-layer transactions of all historical envelope versions,
// together with the detached EIP-7702 authorization tuple.
package ethtx

import (
	"github.com/ThinkiumGroup/go-common"
)

// Transaction envelope versions. The legacy version has no discriminator
// byte on the wire; the others are EIP-2718 typed envelopes.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
	SetCodeTxType    = 0x04
)

// DefaultTxType is the version used by Prepare when the caller does not name
// one.
const DefaultTxType = DynamicFeeTxType

// AccessList is an EIP-2930 access list.
type AccessList []AccessTuple

// AccessTuple is the element type of an access list.
type AccessTuple struct {
	Address     common.Address
	StorageKeys []common.Hash
}

// StorageKeys returns the total number of storage keys in the access list.
func (al AccessList) StorageKeys() int {
	sum := 0
	for _, tuple := range al {
		sum += len(tuple.StorageKeys)
	}
	return sum
}

func (al AccessList) deepCopy() AccessList {
	if al == nil {
		return nil
	}
	cpy := make(AccessList, len(al))
	for i, tuple := range al {
		cpy[i].Address = tuple.Address
		cpy[i].StorageKeys = make([]common.Hash, len(tuple.StorageKeys))
		copy(cpy[i].StorageKeys, tuple.StorageKeys)
	}
	return cpy
}

func copyHashes(hs []common.Hash) []common.Hash {
	if hs == nil {
		return nil
	}
	cpy := make([]common.Hash, len(hs))
	copy(cpy, hs)
	return cpy
}

func copyAddressPtr(a *common.Address) *common.Address {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}
