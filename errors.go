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
	"fmt"
)

var (
	ErrInvalidSig         = errors.New("invalid transaction v, r, s values")
	ErrTxTypeNotSupported = errors.New("transaction type not supported")
	ErrMalformedEncoding  = errors.New("malformed transaction encoding")
	ErrMissingField       = errors.New("missing required field")
	ErrUnexpectedField    = errors.New("unexpected field")
	ErrInvalidFieldValue  = errors.New("invalid field value")
	ErrAlreadySigned      = errors.New("transaction already signed")
	ErrNotSigned          = errors.New("transaction not signed")
	ErrInvalidAmount      = errors.New("invalid amount")

	errEmptyTypedTx = errors.New("empty typed transaction bytes")
)

func fieldError(kind error, name string) error {
	return fmt.Errorf("%w: %s", kind, name)
}
