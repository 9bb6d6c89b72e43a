// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package pauli

import "fmt"

// Basis identifies a single-qubit Pauli operator using two bits: bit 0 is the X
// component and bit 1 is the Z component.  Multiplication (ignoring phase) is
// therefore just XOR.
type Basis uint8

// I is the identity.  It never appears as an entry of a String.
const I Basis = 0

// X is the Pauli X operator.
const X Basis = 1

// Z is the Pauli Z operator.
const Z Basis = 2

// Y is the Pauli Y operator, equal to XZ up to phase.
const Y Basis = 3

// NewBasis constructs a basis from its X and Z components.
func NewBasis(x bool, z bool) Basis {
	var b Basis
	//
	if x {
		b |= X
	}
	//
	if z {
		b |= Z
	}
	//
	return b
}

// ParseBasis parses one of the characters 'X', 'Y', 'Z' or '_' (identity).
func ParseBasis(c rune) (Basis, error) {
	switch c {
	case 'X', 'x':
		return X, nil
	case 'Y', 'y':
		return Y, nil
	case 'Z', 'z':
		return Z, nil
	case '_', 'I':
		return I, nil
	}
	//
	return I, fmt.Errorf("unknown pauli basis '%c'", c)
}

// HasX checks whether this operator has an X component (i.e. is X or Y).
func (b Basis) HasX() bool {
	return b&X != 0
}

// HasZ checks whether this operator has a Z component (i.e. is Z or Y).
func (b Basis) HasZ() bool {
	return b&Z != 0
}

// Mul returns the product of two single-qubit operators, ignoring phase.
func (b Basis) Mul(o Basis) Basis {
	return b ^ o
}

// Commutes checks whether two single-qubit operators commute.
func (b Basis) Commutes(o Basis) bool {
	return b == I || o == I || b == o
}

func (b Basis) String() string {
	return "_XZY"[b&3 : b&3+1]
}
