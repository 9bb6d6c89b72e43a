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
package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	single  = map[complex128]uint{0: 0}
	data    = map[complex128]uint{0: 0, 1: 1}
	ancilla = map[complex128]uint{0: 0, 1: 1, 2: 2}
)

// Chunk preparing Z(0,0)*Z(1,0)
func prepChunk(t *testing.T) *chunk.Chunk {
	return newChunk(t, "R 0 1", data, explicitFlow("", "Z(0,0)*Z(1,0)"))
}

// Chunk measuring Z(0,0)*Z(1,0) via an ancilla
func roundChunk(t *testing.T) *chunk.Chunk {
	return newChunk(t, "R 2\nCX 0 2 1 2\nM 2", ancilla,
		explicitFlow("Z(0,0)*Z(1,0)", "", 0),
		explicitFlow("", "Z(0,0)*Z(1,0)", 0))
}

// Chunk measuring out the data qubits
func finalChunk(t *testing.T) *chunk.Chunk {
	return newChunk(t, "M 0 1", data, explicitFlow("Z(0,0)*Z(1,0)", "", 0, 1))
}

func Test_Compiler_00(t *testing.T) {
	// Two rounds give exactly one detector
	first := newChunk(t, "R 2\nCX 0 2 1 2\nM 2", ancilla, explicitFlow("", "Z(0,0)*Z(1,0)", 0))
	second := newChunk(t, "R 2\nCX 0 2 1 2\nM 2", ancilla, explicitFlow("Z(0,0)*Z(1,0)", "", 0))
	//
	check_Compile(t, []chunk.Node{first, second}, `QUBIT_COORDS(0, 0) 0
QUBIT_COORDS(1, 0) 1
QUBIT_COORDS(2, 0) 2
R 2
CX 0 2 1 2
M 2
TICK
R 2
CX 0 2 1 2
M 2
DETECTOR(0.5, 0, 0) rec[-2] rec[-1]
SHIFT_COORDS(0, 0, 1)
`)
}

func Test_Compiler_01(t *testing.T) {
	check_Compile(t, []chunk.Node{prepChunk(t), roundChunk(t), finalChunk(t)}, `QUBIT_COORDS(0, 0) 0
QUBIT_COORDS(1, 0) 1
QUBIT_COORDS(2, 0) 2
R 0 1
TICK
R 2
CX 0 2 1 2
M 2
DETECTOR(0.5, 0, 0) rec[-1]
SHIFT_COORDS(0, 0, 1)
TICK
M 0 1
DETECTOR(0.5, 0, 0) rec[-3] rec[-2] rec[-1]
SHIFT_COORDS(0, 0, 1)
`)
}

func Test_Compiler_02(t *testing.T) {
	// Loops are equivalent to their unrolling
	for n := uint(0); n < 7; n++ {
		loop, err := chunk.NewLoop(n, roundChunk(t))
		require.NoError(t, err)
		//
		folded, err := Compile([]chunk.Node{prepChunk(t), loop, finalChunk(t)})
		require.NoError(t, err)
		//
		nodes := []chunk.Node{prepChunk(t)}
		for i := uint(0); i < n; i++ {
			nodes = append(nodes, roundChunk(t))
		}
		//
		unrolled, err := Compile(append(nodes, finalChunk(t)))
		require.NoError(t, err)
		//
		require.Equal(t, instructionStrings(unrolled), instructionStrings(folded), "n=%d", n)
		require.Equal(t, n >= 3, strings.Contains(folded.String(), "REPEAT"), "n=%d", n)
	}
}

func Test_Compiler_03(t *testing.T) {
	loop, err := chunk.NewLoop(100, roundChunk(t))
	require.NoError(t, err)
	//
	check_Compile(t, []chunk.Node{prepChunk(t), loop, finalChunk(t)}, `QUBIT_COORDS(0, 0) 0
QUBIT_COORDS(1, 0) 1
QUBIT_COORDS(2, 0) 2
R 0 1
TICK
R 2
CX 0 2 1 2
M 2
DETECTOR(0.5, 0, 0) rec[-1]
SHIFT_COORDS(0, 0, 1)
REPEAT 99 {
    TICK
    R 2
    CX 0 2 1 2
    M 2
    DETECTOR(0.5, 0, 0) rec[-2] rec[-1]
    SHIFT_COORDS(0, 0, 1)
}
TICK
M 0 1
DETECTOR(0.5, 0, 0) rec[-3] rec[-2] rec[-1]
SHIFT_COORDS(0, 0, 1)
`)
}

func Test_Compiler_04(t *testing.T) {
	// Nested loops
	inner, err := chunk.NewLoop(3, roundChunk(t))
	require.NoError(t, err)
	outer, err := chunk.NewLoop(4, inner, roundChunk(t))
	require.NoError(t, err)
	folded, err := Compile([]chunk.Node{prepChunk(t), outer, finalChunk(t)})
	require.NoError(t, err)
	//
	nodes := []chunk.Node{prepChunk(t)}
	for i := 0; i < 16; i++ {
		nodes = append(nodes, roundChunk(t))
	}
	//
	unrolled, err := Compile(append(nodes, finalChunk(t)))
	require.NoError(t, err)
	require.Equal(t, instructionStrings(unrolled), instructionStrings(folded))
}

func Test_Compiler_05(t *testing.T) {
	// Observables are included as soon as they have measurements
	x := pauli.MustParse("X(0,0)")
	prep := newChunk(t, "RX 0", single, flow.MustNew(pauli.String{}, x, flow.Explicit(), flow.WithObservable(0)))
	mid := newChunk(t, "MX 0", single, flow.MustNew(x, x, flow.Explicit(0), flow.WithObservable(0)))
	end := newChunk(t, "MX 0", single, flow.MustNew(x, pauli.String{}, flow.Explicit(0), flow.WithObservable(0)))
	//
	check_Compile(t, []chunk.Node{prep, mid, end}, `QUBIT_COORDS(0, 0) 0
RX 0
TICK
MX 0
OBSERVABLE_INCLUDE(0) rec[-1]
TICK
MX 0
OBSERVABLE_INCLUDE(0) rec[-1]
`)
}

func Test_Compiler_06(t *testing.T) {
	// Discarded outputs propagate, discarded inputs absorb.
	z := flow.Port{Pauli: pauli.MustParse("Z(0,0)*Z(1,0)")}
	prep, err := chunk.New(circuit.MustParse("R 0"), data, nil, chunk.DiscardedOutputs(z))
	require.NoError(t, err)
	//
	_, err = Compile([]chunk.Node{prep, roundChunk(t), finalChunk(t)})
	require.NoError(t, err)
	// Consuming a discarded port emits no detector
	c, err := Compile([]chunk.Node{prep, finalChunk(t)})
	require.NoError(t, err)
	require.NotContains(t, c.String(), "DETECTOR")
	//
	absorb, err := chunk.New(circuit.MustParse("M 0"), data, nil, chunk.DiscardedInputs(z))
	require.NoError(t, err)
	_, err = Compile([]chunk.Node{prepChunk(t), absorb})
	require.NoError(t, err)
}

func Test_Compiler_07(t *testing.T) {
	var (
		missing *chunk.MissingFlowInputError
		unused  *chunk.UnusedFlowOutputError
	)
	//
	_, err := Compile([]chunk.Node{finalChunk(t)})
	require.True(t, errors.As(err, &missing))
	require.Empty(t, missing.Available)
	//
	_, err = Compile([]chunk.Node{prepChunk(t)})
	require.True(t, errors.As(err, &unused))
	// Chunk which does not consume an open flow
	_, err = Compile([]chunk.Node{prepChunk(t), newChunk(t, "H 0", data)})
	require.True(t, errors.As(err, &unused))
	// Ignoring errors
	_, err = Compile([]chunk.Node{finalChunk(t), prepChunk(t)}, WithIgnoreErrors())
	require.NoError(t, err)
}

func Test_Compiler_08(t *testing.T) {
	// Metadata and postselection
	round := roundChunk(t).WithPostselection(func(f flow.Flow) bool { return f.End().IsEmpty() })
	metadata := WithMetadata(func(f flow.Flow) []float64 { return []float64{float64(f.Measurements().Len())} })
	c, err := Compile([]chunk.Node{prepChunk(t), round, finalChunk(t)}, metadata)
	require.NoError(t, err)
	//
	require.Contains(t, c.String(), "DETECTOR(0.5, 0, 0, 1, 999) rec[-1]\n")
	require.Contains(t, c.String(), "DETECTOR(0.5, 0, 0, 3) rec[-3] rec[-2] rec[-1]\n")
}

func Test_Compiler_09(t *testing.T) {
	// Detectors at the same position within a chunk get distinct coordinates.
	twice := newChunk(t, "M 0 1", data, explicitFlow("", "", 0), explicitFlow("", "", 1))
	c, err := Compile([]chunk.Node{twice, twice})
	require.NoError(t, err)
	require.Equal(t, `QUBIT_COORDS(0, 0) 0
QUBIT_COORDS(1, 0) 1
M 0 1
DETECTOR(0, 0, 0) rec[-2]
DETECTOR(0, 0, 1) rec[-1]
SHIFT_COORDS(0, 0, 2)
TICK
M 0 1
DETECTOR(0, 0, 0) rec[-2]
DETECTOR(0, 0, 1) rec[-1]
SHIFT_COORDS(0, 0, 2)
`, c.String())
}

func Test_Compiler_10(t *testing.T) {
	// Reflows re-express ports as products
	prep := newChunk(t, "R 0 1", data, explicitFlow("", "Z(0,0)"), explicitFlow("", "Z(1,0)"))
	end, err := prep.EndInterface()
	require.NoError(t, err)
	//
	z0 := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	z1 := flow.Port{Pauli: pauli.MustParse("Z(1,0)")}
	z01 := flow.Port{Pauli: pauli.MustParse("Z(0,0)*Z(1,0)")}
	//
	reflow, err := chunk.NewReflow([]chunk.Output{{Port: z01, Inputs: []flow.Port{z0, z1}}})
	require.NoError(t, err)
	require.NoError(t, reflow.Verify())
	//
	c, err := Compile([]chunk.Node{prep, reflow, finalChunk(t)})
	require.NoError(t, err)
	require.Contains(t, c.String(), "DETECTOR(0.5, 0, 0) rec[-2] rec[-1]\n")
	// Identity reflow changes nothing
	measure := newChunk(t, "M 0 1", data, explicitFlow("Z(0,0)", "", 0), explicitFlow("Z(1,0)", "", 1))
	with, err := Compile([]chunk.Node{prep, chunk.Identity(end), measure})
	require.NoError(t, err)
	without, err := Compile([]chunk.Node{prep, measure})
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(without.String(), with.String()))
	// Reflow missing an input
	var missing *chunk.MissingFlowInputError
	//
	x0 := flow.Port{Pauli: pauli.MustParse("X(0,0)")}
	bad, err := chunk.NewReflow([]chunk.Output{{Port: x0, Inputs: []flow.Port{x0}}}, z0, z1)
	require.NoError(t, err)
	_, err = Compile([]chunk.Node{prep, bad})
	require.True(t, errors.As(err, &missing))
}

func newChunk(t *testing.T, text string, q2i map[complex128]uint, flows ...flow.Flow) *chunk.Chunk {
	t.Helper()
	//
	c, err := chunk.New(circuit.MustParse(text), q2i, flows)
	require.NoError(t, err)
	//
	return c
}

func explicitFlow(start string, end string, records ...int) flow.Flow {
	return flow.MustNew(pauli.MustParse(start), pauli.MustParse(end), flow.Explicit(records...))
}

func instructionStrings(c *circuit.Circuit) []string {
	var items []string
	//
	for _, insn := range c.Flattened() {
		items = append(items, insn.String())
	}
	//
	return items
}

func check_Compile(t *testing.T, nodes []chunk.Node, expected string) {
	t.Helper()
	//
	c, err := Compile(nodes)
	require.NoError(t, err)
	//
	if diff := cmp.Diff(expected, c.String()); diff != "" {
		t.Errorf("unexpected circuit (-want +got):\n%s", diff)
	}
}
