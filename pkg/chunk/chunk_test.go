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
package chunk

import (
	"errors"
	"testing"

	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	"github.com/stretchr/testify/require"
)

var pair = map[complex128]uint{0: 0, 1: 1}

func Test_Chunk_00(t *testing.T) {
	// Pending measurements are solved on construction.
	f := flow.MustNew(pauli.MustParse("Z(0,0)"), pauli.String{}, flow.Pending())
	c := newChunk(t, "M 0", pair, f)
	require.Equal(t, []int{0}, c.Flows()[0].Measurements().Indices())
	require.NoError(t, c.Verify())
}

func Test_Chunk_01(t *testing.T) {
	var err *PortCollisionError
	//
	f := explicitFlow("Z(0,0)", "")
	g := explicitFlow("Z(0,0)", "Z(0,0)")
	_, e := New(circuit.MustParse("M 0"), pair, []flow.Flow{f, g})
	require.True(t, errors.As(e, &err))
	require.Len(t, err.Flows, 2)
	// Flows on unknown qubits
	_, e = New(circuit.MustParse("M 0"), pair, []flow.Flow{explicitFlow("Z(3,0)", "")})
	require.Error(t, e)
	// Circuits on unknown qubits
	_, e = New(circuit.MustParse("M 5"), pair, nil)
	require.Error(t, e)
	// Used and discarded
	port := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	_, e = New(circuit.MustParse("M 0"), pair, []flow.Flow{f}, DiscardedInputs(port))
	require.True(t, errors.As(e, &err))
}

func Test_Chunk_02(t *testing.T) {
	a := newChunk(t, "R 0", pair, explicitFlow("", "Z(0,0)"))
	b := newChunk(t, "M 0", pair, explicitFlow("Z(0,0)", "", 0))
	ab, err := a.Then(b)
	require.NoError(t, err)
	require.Equal(t, "R 0\nM 0\n", ab.Circuit().String())
	require.Len(t, ab.Flows(), 1)
	require.Equal(t, []int{0}, ab.Flows()[0].Measurements().Indices())
	require.NoError(t, ab.Verify())
	// Measurement records of the second chunk are shifted
	bb, err := b.Then(newChunk(t, "M 0", pair, explicitFlow("", "Z(0,0)", 0)))
	require.NoError(t, err)
	require.Equal(t, []int{1}, bb.Flows()[1].Measurements().Indices())
	require.NoError(t, bb.Verify())
}

func Test_Chunk_03(t *testing.T) {
	var (
		missing *MissingFlowInputError
		unused  *UnusedFlowOutputError
	)
	//
	a := newChunk(t, "R 0", pair, explicitFlow("", "Z(0,0)"))
	b := newChunk(t, "M 0", pair, explicitFlow("Z(0,0)", "", 0))
	//
	_, err := b.Then(b)
	require.True(t, errors.As(err, &missing))
	_, err = a.Then(a)
	require.True(t, errors.As(err, &unused))
	// Discards absorb unmatched flows on either side
	port := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	discarding := newChunk(t, "R 0", pair, explicitFlow("", "Z(0,0)")).
		withOptions(t, DiscardedInputs(port))
	c, err := a.Then(discarding)
	require.NoError(t, err)
	require.Len(t, c.Flows(), 1)
}

func Test_Chunk_04(t *testing.T) {
	// Composition is associative
	a := newChunk(t, "R 0 1", pair, explicitFlow("", "Z(0,0)"), explicitFlow("", "Z(1,0)"))
	b := newChunk(t, "CX 0 1", pair, explicitFlow("Z(0,0)", "Z(0,0)"), explicitFlow("Z(1,0)", "Z(0,0)*Z(1,0)"))
	c := newChunk(t, "M 0 1", pair, explicitFlow("Z(0,0)", "", 0), explicitFlow("Z(0,0)*Z(1,0)", "", 0, 1))
	//
	ab, err := a.Then(b)
	require.NoError(t, err)
	abc1, err := ab.Then(c)
	require.NoError(t, err)
	//
	bc, err := b.Then(c)
	require.NoError(t, err)
	abc2, err := a.Then(bc)
	require.NoError(t, err)
	//
	require.True(t, abc1.Circuit().Equal(abc2.Circuit()))
	require.Equal(t, flowStrings(abc1), flowStrings(abc2))
	require.NoError(t, abc1.Verify())
	require.NoError(t, abc2.Verify())
}

func Test_Chunk_05(t *testing.T) {
	// Qubits are merged into a shared index space
	a := newChunk(t, "R 0", map[complex128]uint{1i: 0}, explicitFlow("", "Z(0,1)"))
	b := newChunk(t, "CX 0 1", map[complex128]uint{0: 0, 1i: 1}, explicitFlow("Z(0,1)", "Z(0,0)*Z(0,1)"))
	ab, err := a.Then(b)
	require.NoError(t, err)
	require.Equal(t, []complex128{0, 1i}, ab.Qubits())
	require.Equal(t, "R 1\nCX 0 1\n", ab.Circuit().String())
	require.NoError(t, ab.Verify())
}

func Test_Reverse_00(t *testing.T) {
	c := newChunk(t, "R 0\nH 0", pair, explicitFlow("", "X(0,0)"))
	r, err := c.TimeReversed()
	require.NoError(t, err)
	require.Equal(t, "H 0\nM 0\n", r.Circuit().String())
	require.Equal(t, "X(0,0) -> 1 xor rec[0]", r.Flows()[0].String())
	require.NoError(t, r.Verify())
	// Reversing twice gets back to where we started
	rr, err := r.TimeReversed()
	require.NoError(t, err)
	require.True(t, rr.Circuit().Equal(c.Circuit()))
	require.Equal(t, flowStrings(c), flowStrings(rr))
}

func Test_Reverse_01(t *testing.T) {
	c := newChunk(t, "R 0 1\nCX 0 1\nM 0 1", pair, explicitFlow("", "", 0), explicitFlow("", "", 0, 1))
	r, err := c.TimeReversed()
	require.NoError(t, err)
	require.Equal(t, "R 1 0\nCX 0 1\nM 1 0\n", r.Circuit().String())
	require.NoError(t, r.Verify())
	//
	rr, err := r.TimeReversed()
	require.NoError(t, err)
	require.NoError(t, rr.Verify())
	require.Len(t, rr.Flows(), 2)
	require.Equal(t, c.NumMeasurements(), rr.NumMeasurements())
}

func Test_Reverse_02(t *testing.T) {
	// Non-destructive measurements stay as measurements.
	c := newChunk(t, "M 0", pair, explicitFlow("", "Z(0,0)", 0))
	r, err := c.TimeReversed()
	require.NoError(t, err)
	require.Equal(t, "M 0\n", r.Circuit().String())
	require.Equal(t, "Z(0,0) -> 1 xor rec[0]", r.Flows()[0].String())
	require.NoError(t, r.Verify())
	// Measure-resets
	c = newChunk(t, "MRX 0", pair, explicitFlow("X(0,0)", "", 0), explicitFlow("", "X(0,0)"))
	r, err = c.TimeReversed()
	require.NoError(t, err)
	require.Equal(t, "MRX 0\n", r.Circuit().String())
	require.NoError(t, r.Verify())
	// Classically controlled gates cannot be reversed
	c = newChunk(t, "M 0\nCX rec[-1] 1", pair, explicitFlow("Z(1,0)", "Z(1,0)", 0))
	_, err = c.TimeReversed()
	require.Error(t, err)
}

func Test_Chunk_06(t *testing.T) {
	c := newChunk(t, "M 0", pair, explicitFlow("Z(0,0)", "", 0), explicitFlow("", "Z(0,0)", 0))
	p := c.WithPostselection(func(f flow.Flow) bool { return f.Start().IsEmpty() })
	require.False(t, p.Flows()[0].HasFlag(POSTSELECT))
	require.True(t, p.Flows()[1].HasFlag(POSTSELECT))
	// Original unchanged
	require.False(t, c.Flows()[1].HasFlag(POSTSELECT))
	//
	f := c.WithFlagAdded("x")
	require.True(t, f.Flows()[0].HasFlag("x"))
	require.True(t, f.Flows()[1].HasFlag("x"))
	//
	w := c.WithoutFlows(func(f flow.Flow) bool { return f.Start().IsEmpty() })
	require.Len(t, w.Flows(), 1)
	require.Len(t, c.Flows(), 2)
}

func Test_Chunk_07(t *testing.T) {
	var err *PortCollisionError
	//
	x := pauli.MustParse("X(0,0)")
	c := newChunk(t, "", pair,
		flow.MustNew(x, x, flow.Explicit(), flow.WithObservable(0)),
		flow.MustNew(x, x, flow.Explicit()))
	_, e := c.WithObservablesAsDetectors()
	require.True(t, errors.As(e, &err))
	//
	d := newChunk(t, "", pair, flow.MustNew(x, x, flow.Explicit(), flow.WithObservable(0)))
	d, e = d.WithObservablesAsDetectors()
	require.NoError(t, e)
	require.False(t, d.Flows()[0].Observable().IsSet())
}

func Test_Interface_00(t *testing.T) {
	var err *PortCollisionError
	//
	z := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	x := flow.Port{Pauli: pauli.MustParse("X(1,0)"), Observable: flow.ObservableIndex(1)}
	//
	iface, e := NewInterface([]flow.Port{z, x}, nil)
	require.NoError(t, e)
	require.True(t, iface.Has(z))
	require.True(t, iface.Has(x))
	require.False(t, iface.Has(flow.Port{Pauli: pauli.MustParse("X(1,0)")}))
	require.Equal(t, []complex128{0, 1}, iface.Qubits())
	// Order is irrelevant
	other, e := NewInterface([]flow.Port{x, z}, nil)
	require.NoError(t, e)
	require.True(t, iface.Equal(other))
	require.False(t, iface.Equal(iface.Without(func(p flow.Port) bool { return p.Observable.IsSet() })))
	//
	_, e = NewInterface([]flow.Port{z, x, z}, nil)
	require.True(t, errors.As(e, &err))
}

func Test_Interface_01(t *testing.T) {
	z := flow.Port{Pauli: pauli.MustParse("Z(0,0)*Z(1,0)")}
	d := flow.Port{Pauli: pauli.MustParse("X(2,0)")}
	iface, err := NewInterface([]flow.Port{z}, []flow.Port{d})
	require.NoError(t, err)
	//
	c := iface.ToChunk()
	require.NoError(t, c.Verify())
	//
	start, err := c.StartInterface()
	require.NoError(t, err)
	require.True(t, start.Equal(iface))
	//
	end, err := c.EndInterface()
	require.NoError(t, err)
	require.True(t, end.Equal(iface))
}

func Test_Reflow_00(t *testing.T) {
	var err *ReflowMismatchError
	//
	a := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	b := flow.Port{Pauli: pauli.MustParse("Z(1,0)")}
	ab := flow.Port{Pauli: pauli.MustParse("Z(0,0)*Z(1,0)")}
	//
	r, e := NewReflow([]Output{{ab, []flow.Port{a, b}}, {a, []flow.Port{a}}})
	require.NoError(t, e)
	require.NoError(t, r.Verify())
	//
	r, e = NewReflow([]Output{{ab, []flow.Port{a}}})
	require.NoError(t, e)
	require.True(t, errors.As(r.Verify(), &err))
	require.Equal(t, "Z(1,0)", err.Difference.String())
	// Colliding outputs
	_, e = NewReflow([]Output{{a, []flow.Port{a}}, {a, []flow.Port{a}}})
	require.Error(t, e)
}

func Test_Reflow_01(t *testing.T) {
	// Identity reflow does not change the interface
	a := flow.Port{Pauli: pauli.MustParse("Z(0,0)")}
	b := flow.Port{Pauli: pauli.MustParse("X(1,0)"), Observable: flow.ObservableIndex(0)}
	iface, err := NewInterface([]flow.Port{a, b}, nil)
	require.NoError(t, err)
	//
	r := Identity(iface)
	require.NoError(t, r.Verify())
	//
	start, err := r.StartInterface()
	require.NoError(t, err)
	require.True(t, start.Equal(iface))
	//
	end, err := r.EndInterface()
	require.NoError(t, err)
	require.True(t, end.Equal(iface))
}

func Test_Loop_00(t *testing.T) {
	_, err := NewLoop(3)
	require.Error(t, err)
	// Parity check round carrying Z(0,0)*Z(1,0) through.
	round := newChunk(t, "R 2\nCX 0 2 1 2\nM 2", map[complex128]uint{0: 0, 1: 1, 2: 2},
		explicitFlow("Z(0,0)*Z(1,0)", "Z(0,0)*Z(1,0)"))
	loop, err := NewLoop(3, round)
	require.NoError(t, err)
	require.NoError(t, loop.Verify())
	require.Len(t, loop.Flattened(), 3)
	// Body which cannot follow itself
	prep := newChunk(t, "R 0", pair, explicitFlow("", "Z(0,0)"))
	loop, err = NewLoop(2, prep)
	require.NoError(t, err)
	require.Error(t, loop.Verify())
}

func newChunk(t *testing.T, text string, q2i map[complex128]uint, flows ...flow.Flow) *Chunk {
	t.Helper()
	//
	c, err := New(circuit.MustParse(text), q2i, flows)
	require.NoError(t, err)
	//
	return c
}

func (p *Chunk) withOptions(t *testing.T, options ...Option) *Chunk {
	t.Helper()
	//
	c, err := New(p.circuit, p.q2i, p.flows, options...)
	require.NoError(t, err)
	//
	return c
}

func explicitFlow(start string, end string, records ...int) flow.Flow {
	return flow.MustNew(pauli.MustParse(start), pauli.MustParse(end), flow.Explicit(records...))
}

func flowStrings(c *Chunk) []string {
	items := make([]string, len(c.Flows()))
	for i, f := range c.Flows() {
		items[i] = f.String()
	}
	//
	return items
}
