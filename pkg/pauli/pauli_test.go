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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Pauli_00(t *testing.T) {
	p := MustParse("X(0,0)*Z(1,0)")
	require.Equal(t, 2, p.Len())
	require.Equal(t, X, p.Get(0))
	require.Equal(t, Z, p.Get(1))
	require.Equal(t, I, p.Get(2))
	require.Equal(t, "X(0,0)*Z(1,0)", p.String())
}

func Test_Pauli_01(t *testing.T) {
	// Order of terms in the text is irrelevant.
	p := MustParse("Z(1,0)*X(0,0)")
	q := MustParse("X(0,0)*Z(1,0)")
	require.True(t, p.Equal(q))
	require.Equal(t, p.Key(), q.Key())
}

func Test_Pauli_02(t *testing.T) {
	p := MustParse("X(0,0)*Z(1,0)")
	q := MustParse("Z(0,0)*Z(1,0)*X(2,0)")
	// X*Z = Y on qubit 0, Z*Z cancels on qubit 1.
	require.Equal(t, "Y(0,0)*X(2,0)", p.Mul(q).String())
	require.True(t, p.Mul(p).IsEmpty())
}

func Test_Pauli_03(t *testing.T) {
	// one disagreement: anticommute
	require.False(t, MustParse("X(0,0)").Commutes(MustParse("Z(0,0)")))
	// two disagreements: commute
	require.True(t, MustParse("X(0,0)*X(1,0)").Commutes(MustParse("Z(0,0)*Z(1,0)")))
	// disjoint support: commute
	require.True(t, MustParse("X(0,0)").Commutes(MustParse("Z(1,0)")))
	// identical operators: commute
	require.True(t, MustParse("Y(0,0)").Commutes(MustParse("Y(0,0)")))
}

func Test_Pauli_04(t *testing.T) {
	p := New(map[complex128]Basis{1i: Y, 0: I, 2 + 1i: X})
	require.Equal(t, 2, p.Len())
	require.Equal(t, []complex128{1i, 2 + 1i}, p.Qubits())
	require.Equal(t, "Y(0,1)*X(2,1)", p.String())
}

func Test_Pauli_05(t *testing.T) {
	for _, text := range []string{"", "1", " "} {
		p, err := Parse(text)
		require.NoError(t, err)
		require.True(t, p.IsEmpty())
	}
	//
	for _, text := range []string{"Q(0,0)", "X0", "X(0,0,0)", "X(a,b)", "X(0,0)*"} {
		_, err := Parse(text)
		require.Error(t, err, text)
	}
}

func Test_Pauli_06(t *testing.T) {
	p := MustParse("X(0,0)*Y(1,0)*Z(2,0)")
	require.Equal(t, "X(0,0)*Z(2,0)", p.Without(1).String())
	require.Equal(t, "Y(1,0)", p.Keep(func(q complex128) bool { return real(q) == 1 }).String())
	require.Equal(t, "X(1,1)*Y(2,1)*Z(3,1)", p.Map(func(q complex128) complex128 { return q + 1 + 1i }).String())
}

func Test_Basis_00(t *testing.T) {
	for _, a := range []Basis{I, X, Y, Z} {
		for _, b := range []Basis{I, X, Y, Z} {
			expected := a == I || b == I || a == b
			require.Equal(t, expected, a.Commutes(b), "%s vs %s", a, b)
		}
	}
	//
	require.Equal(t, Y, X.Mul(Z))
	require.Equal(t, X, Y.Mul(Z))
	require.Equal(t, Y, NewBasis(true, true))
}
