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
package stabilizer

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	log "github.com/sirupsen/logrus"
)

// Tableau holds a complete basis of the stabilizer flows of a circuit.  Each
// row is a single bitset laid out as three planes: the input operator (bits
// [0,2n)), the output operator (bits [2n,4n)) and the measurement records
// (bits [4n,4n+m)).  Within an operator plane, bit 2q holds the X component on
// qubit q and bit 2q+1 holds its Z component.  Signs are not tracked.
type Tableau struct {
	nqubits  uint
	nrecords uint
	q2i      map[complex128]uint
	i2q      map[uint]complex128
	rows     []*bitset.BitSet
	// Rows in reduced echelon form, computed on demand.
	echelon []*bitset.BitSet
}

// NewTableau derives the stabilizer flow generators of a circuit, by
// simulating forwards a tableau initialised with the identity flow of every
// single-qubit Pauli.
func NewTableau(circ *circuit.Circuit, q2i map[complex128]uint) (*Tableau, error) {
	var (
		nqubits  = circ.NumQubits()
		nrecords = circ.NumMeasurements()
		i2q      = make(map[uint]complex128, len(q2i))
	)
	//
	for q, i := range q2i {
		i2q[i] = q
		nqubits = max(nqubits, i+1)
	}
	//
	for i := uint(0); i < circ.NumQubits(); i++ {
		if _, ok := i2q[i]; !ok {
			return nil, fmt.Errorf("qubit %d has no position", i)
		}
	}
	//
	t := &Tableau{nqubits, nrecords, q2i, i2q, nil, nil}
	//
	for g := uint(0); g < 2*nqubits; g++ {
		row := t.newRow()
		row.Set(g)
		row.Set(t.out(g))
		t.rows = append(t.rows, row)
	}
	//
	var measured uint
	//
	for _, insn := range circ.Flattened() {
		if err := t.apply(insn, &measured); err != nil {
			return nil, err
		}
	}
	//
	return t, nil
}

// Generators returns the flows making up this basis.
func (p *Tableau) Generators() []flow.Flow {
	var flows []flow.Flow
	//
	for _, row := range p.rows {
		if row.None() {
			continue
		}
		//
		start, end, records := p.decode(row)
		flows = append(flows, flow.MustNew(start, end, flow.Explicit(records...)))
	}
	//
	return flows
}

// Solve determines the measurement records on which a flow with given start
// and end operators depends.  This fails with an *UnsolvableError when the
// flow is not in the span of the generators.
func (p *Tableau) Solve(start pauli.String, end pauli.String) (flow.MeasureSet, error) {
	target := p.newRow()
	//
	if err := p.encode(target, start, 0); err != nil {
		return flow.MeasureSet{}, err
	} else if err := p.encode(target, end, 2*p.nqubits); err != nil {
		return flow.MeasureSet{}, err
	}
	//
	if p.echelon == nil {
		p.echelon = p.reduce()
	}
	// Each echelon row has a distinct leading column, and no other row has that
	// column set.
	for _, row := range p.echelon {
		lead, _ := row.NextSet(0)
		//
		if target.Test(lead) {
			target.InPlaceSymmetricDifference(row)
		}
	}
	//
	residualStart, residualEnd, records := p.decode(target)
	if !residualStart.IsEmpty() || !residualEnd.IsEmpty() {
		return flow.MeasureSet{}, &UnsolvableError{start, end, residualStart, residualEnd}
	}
	//
	log.Debugf("solved flow %s -> %s as rec%v", start, end, records)
	//
	return flow.Explicit(records...), nil
}

// Solve is a convenience for determining the measurement records of a single
// flow through a circuit.
func Solve(circ *circuit.Circuit, q2i map[complex128]uint, start pauli.String,
	end pauli.String) (flow.MeasureSet, error) {
	t, err := NewTableau(circ, q2i)
	if err != nil {
		return flow.MeasureSet{}, err
	}
	//
	return t.Solve(start, end)
}

// reduce brings a copy of the generator rows into reduced echelon form over
// GF(2).  Pivots are chosen on input columns first, then output columns.
// Record columns are never pivoted on, so reducing a target against these rows
// leaves exactly the records of the generators consumed.
func (p *Tableau) reduce() []*bitset.BitSet {
	var (
		rows  = make([]*bitset.BitSet, len(p.rows))
		width = 4 * p.nqubits
		k     = 0
	)
	//
	for i, row := range p.rows {
		rows[i] = row.Clone()
	}
	//
	for c := uint(0); c < width && k < len(rows); c++ {
		pivot := -1
		//
		for i := k; i < len(rows); i++ {
			if rows[i].Test(c) {
				pivot = i
				break
			}
		}
		//
		if pivot < 0 {
			continue
		}
		//
		rows[k], rows[pivot] = rows[pivot], rows[k]
		//
		for i := range rows {
			if i != k && rows[i].Test(c) {
				rows[i].InPlaceSymmetricDifference(rows[k])
			}
		}
		//
		k++
	}
	//
	return rows[:k]
}

func (p *Tableau) apply(insn circuit.Instruction, measured *uint) error {
	switch insn.Gate.Kind {
	case circuit.ANNOTATION:
		return nil
	case circuit.UNITARY:
		for _, group := range insn.Groups() {
			if err := p.applyUnitary(insn.Gate, group, *measured); err != nil {
				return fmt.Errorf("%s: %w", insn, err)
			}
		}
	default:
		for _, t := range insn.Targets {
			q := t.Qubit()
			//
			if insn.Gate.IsMeasurement() {
				p.applyMeasurement(q, insn.Gate.Basis, *measured)
				*measured = *measured + 1
			}
			//
			if insn.Gate.IsReset() {
				p.applyReset(q, insn.Gate.Basis)
			}
		}
	}
	//
	return nil
}

func (p *Tableau) applyUnitary(gate *circuit.Gate, targets []circuit.Target, measured uint) error {
	for i, t := range targets {
		if !t.IsRecord() {
			continue
		} else if t.Lookback() > measured {
			return fmt.Errorf("record rec[-%d] does not exist", t.Lookback())
		}
		// Classically controlled correction
		m := measured - t.Lookback()
		q := targets[1-i].Qubit()
		correction := gate.Feedback(uint(1 - i))
		//
		for _, row := range p.rows {
			if p.anticommutes(row, q, correction) {
				row.Flip(p.rec(m))
			}
		}
		//
		return nil
	}
	//
	for _, row := range p.rows {
		var input uint8
		//
		for k, t := range targets {
			q := t.Qubit()
			//
			if row.Test(p.out(2 * q)) {
				input |= 1 << (2 * k)
			}
			//
			if row.Test(p.out(2*q + 1)) {
				input |= 1 << (2*k + 1)
			}
		}
		//
		output := gate.Image(input)
		//
		for k, t := range targets {
			q := t.Qubit()
			row.SetTo(p.out(2*q), output&(1<<(2*k)) != 0)
			row.SetTo(p.out(2*q+1), output&(1<<(2*k+1)) != 0)
		}
	}
	//
	return nil
}

// applyMeasurement removes every row which anticommutes with the measured
// operator (keeping products of pairs of such rows) and adds the row for the
// measurement result itself.
func (p *Tableau) applyMeasurement(q uint, basis pauli.Basis, record uint) {
	p.eliminate(func(row *bitset.BitSet) bool {
		return p.anticommutes(row, q, basis)
	})
	//
	row := p.newRow()
	p.setOut(row, q, basis)
	row.Set(p.rec(record))
	p.rows = append(p.rows, row)
}

// applyReset removes every row with weight on the reset qubit, and adds the row
// for the prepared state.
func (p *Tableau) applyReset(q uint, basis pauli.Basis) {
	p.eliminate(func(row *bitset.BitSet) bool {
		return row.Test(p.out(2 * q))
	})
	p.eliminate(func(row *bitset.BitSet) bool {
		return row.Test(p.out(2*q + 1))
	})
	//
	row := p.newRow()
	p.setOut(row, q, basis)
	p.rows = append(p.rows, row)
}

// eliminate the rows matching a given predicate, keeping the product of each
// with a common pivot row (which is then dropped).
func (p *Tableau) eliminate(predicate func(*bitset.BitSet) bool) {
	var (
		pivot *bitset.BitSet
		rows  = p.rows[:0]
	)
	//
	for _, row := range p.rows {
		if !predicate(row) {
			rows = append(rows, row)
		} else if pivot == nil {
			pivot = row
		} else {
			row.InPlaceSymmetricDifference(pivot)
			rows = append(rows, row)
		}
	}
	//
	p.rows = rows
}

func (p *Tableau) anticommutes(row *bitset.BitSet, q uint, basis pauli.Basis) bool {
	x := row.Test(p.out(2 * q))
	z := row.Test(p.out(2*q + 1))
	//
	return (x && basis.HasZ()) != (z && basis.HasX())
}

func (p *Tableau) setOut(row *bitset.BitSet, q uint, basis pauli.Basis) {
	row.SetTo(p.out(2*q), basis.HasX())
	row.SetTo(p.out(2*q+1), basis.HasZ())
}

// encode a Pauli string into one operator plane of a row.
func (p *Tableau) encode(row *bitset.BitSet, str pauli.String, offset uint) error {
	for _, t := range str.Terms() {
		q, ok := p.q2i[t.Qubit]
		if !ok {
			return fmt.Errorf("qubit %s has no index", pauli.FormatQubit(t.Qubit))
		}
		//
		row.SetTo(offset+2*q, t.Basis.HasX())
		row.SetTo(offset+2*q+1, t.Basis.HasZ())
	}
	//
	return nil
}

// decode a row into its input operator, output operator and records.
func (p *Tableau) decode(row *bitset.BitSet) (pauli.String, pauli.String, []int) {
	var (
		start, end []pauli.Term
		records    []int
	)
	//
	for q := uint(0); q < p.nqubits; q++ {
		position := p.i2q[q]
		//
		if b := pauli.NewBasis(row.Test(2*q), row.Test(2*q+1)); b != pauli.I {
			start = append(start, pauli.Term{Qubit: position, Basis: b})
		}
		//
		if b := pauli.NewBasis(row.Test(p.out(2*q)), row.Test(p.out(2*q+1))); b != pauli.I {
			end = append(end, pauli.Term{Qubit: position, Basis: b})
		}
	}
	//
	for m := uint(0); m < p.nrecords; m++ {
		if row.Test(p.rec(m)) {
			records = append(records, int(m))
		}
	}
	//
	return pauli.FromTerms(start...), pauli.FromTerms(end...), records
}

func (p *Tableau) newRow() *bitset.BitSet {
	return bitset.New(p.width())
}

func (p *Tableau) width() uint {
	return 4*p.nqubits + p.nrecords
}

// out returns the column of a given generator in the output plane.
func (p *Tableau) out(generator uint) uint {
	return 2*p.nqubits + generator
}

// rec returns the column of a given measurement record.
func (p *Tableau) rec(record uint) uint {
	return 4*p.nqubits + record
}
