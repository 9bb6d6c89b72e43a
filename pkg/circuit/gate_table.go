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
package circuit

import (
	"github.com/consensys/go-qflow/pkg/pauli"
)

// gateTable maps every mnemonic (including aliases) to its gate.
var gateTable = map[string]*Gate{}

// gateOrder lists canonical mnemonics in table order.
var gateOrder []string

// Each unitary row lists the images of X and Z on each target, written one
// character per target ('_' for identity).
func init() {
	// Paulis & identity
	unitary("I", "I", "X", "Z")
	unitary("X", "X", "X", "Z")
	unitary("Y", "Y", "X", "Z")
	unitary("Z", "Z", "X", "Z")
	// Hadamard-like
	unitary("H", "H", "Z", "X", "H_XZ")
	unitary("H_XY", "H_XY", "Y", "Z")
	unitary("H_YZ", "H_YZ", "X", "Y")
	// Square roots
	unitary("S", "S_DAG", "Y", "Z", "SQRT_Z")
	unitary("S_DAG", "S", "Y", "Z", "SQRT_Z_DAG")
	unitary("SQRT_X", "SQRT_X_DAG", "X", "Y")
	unitary("SQRT_X_DAG", "SQRT_X", "X", "Y")
	unitary("SQRT_Y", "SQRT_Y_DAG", "Z", "X")
	unitary("SQRT_Y_DAG", "SQRT_Y", "Z", "X")
	// Axis cycles
	unitary("C_XYZ", "C_ZYX", "Y", "X")
	unitary("C_ZYX", "C_XYZ", "Z", "Y")
	// Controlled Paulis (images of X0, Z0, X1, Z1)
	unitary("CX", "CX", "XX", "Z_", "_X", "ZZ", "ZCX", "CNOT").withFeedback(pauli.I, pauli.X)
	unitary("CY", "CY", "XY", "Z_", "ZX", "ZZ", "ZCY").withFeedback(pauli.I, pauli.Y)
	unitary("CZ", "CZ", "XZ", "Z_", "ZX", "_Z", "ZCZ").withFeedback(pauli.Z, pauli.Z)
	unitary("XCX", "XCX", "X_", "ZX", "_X", "XZ")
	unitary("XCY", "XCY", "X_", "ZY", "XX", "XZ")
	unitary("XCZ", "XCZ", "X_", "ZZ", "XX", "_Z").withFeedback(pauli.X, pauli.I)
	unitary("YCX", "YCX", "XX", "ZX", "_X", "YZ")
	unitary("YCY", "YCY", "XY", "ZY", "YX", "YZ")
	unitary("YCZ", "YCZ", "XZ", "ZZ", "YX", "_Z").withFeedback(pauli.Y, pauli.I)
	// Swaps
	unitary("SWAP", "SWAP", "_X", "_Z", "X_", "Z_")
	unitary("ISWAP", "ISWAP_DAG", "ZY", "_Z", "YZ", "Z_")
	unitary("ISWAP_DAG", "ISWAP", "ZY", "_Z", "YZ", "Z_")
	unitary("CXSWAP", "SWAPCX", "XX", "_Z", "X_", "ZZ")
	unitary("SWAPCX", "CXSWAP", "_X", "ZZ", "XX", "Z_")
	unitary("CZSWAP", "CZSWAP", "ZX", "_Z", "XZ", "Z_", "SWAPCZ")
	// Two-qubit square roots
	unitary("SQRT_XX", "SQRT_XX_DAG", "X_", "YX", "_X", "XY")
	unitary("SQRT_XX_DAG", "SQRT_XX", "X_", "YX", "_X", "XY")
	unitary("SQRT_YY", "SQRT_YY_DAG", "ZY", "XY", "YZ", "YX")
	unitary("SQRT_YY_DAG", "SQRT_YY", "ZY", "XY", "YZ", "YX")
	unitary("SQRT_ZZ", "SQRT_ZZ_DAG", "YZ", "Z_", "ZY", "_Z")
	unitary("SQRT_ZZ_DAG", "SQRT_ZZ", "YZ", "Z_", "ZY", "_Z")
	// Collapsing gates
	collapsing("M", MEASURE, pauli.Z, "MZ")
	collapsing("MX", MEASURE, pauli.X)
	collapsing("MY", MEASURE, pauli.Y)
	collapsing("R", RESET, pauli.Z, "RZ")
	collapsing("RX", RESET, pauli.X)
	collapsing("RY", RESET, pauli.Y)
	collapsing("MR", MEASURE_RESET, pauli.Z, "MRZ")
	collapsing("MRX", MEASURE_RESET, pauli.X)
	collapsing("MRY", MEASURE_RESET, pauli.Y)
	// Annotations
	annotation("TICK")
	annotation("DETECTOR")
	annotation("OBSERVABLE_INCLUDE")
	annotation("QUBIT_COORDS")
	annotation("SHIFT_COORDS")
}

// unitary registers a Clifford gate.  The images are followed by any aliases.
func unitary(name string, inverse string, items ...string) *Gate {
	var (
		arity   = uint(len(items[0]))
		images  = make([]uint8, 2*arity)
		aliases = items[2*arity:]
	)
	//
	for i := range images {
		images[i] = parseImage(items[i])
	}
	//
	return register(&Gate{Name: name, Kind: UNITARY, Arity: arity, Inverse: inverse, images: images}, aliases...)
}

func collapsing(name string, kind Kind, basis pauli.Basis, aliases ...string) {
	register(&Gate{Name: name, Kind: kind, Arity: 1, Basis: basis, Inverse: name}, aliases...)
}

func annotation(name string) {
	register(&Gate{Name: name, Kind: ANNOTATION, Inverse: name})
}

func register(gate *Gate, aliases ...string) *Gate {
	gateTable[gate.Name] = gate
	gateOrder = append(gateOrder, gate.Name)
	//
	for _, alias := range aliases {
		gateTable[alias] = gate
	}
	//
	return gate
}

func (g *Gate) withFeedback(first pauli.Basis, second pauli.Basis) {
	g.feedback = [2]pauli.Basis{first, second}
}

// parseImage converts a string such as "ZX" into a bitmask.
func parseImage(text string) uint8 {
	var mask uint8
	//
	for q, c := range text {
		b, err := pauli.ParseBasis(c)
		if err != nil {
			panic(err)
		}
		//
		mask |= uint8(b) << (2 * q)
	}
	//
	return mask
}
