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
package verify

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	log "github.com/sirupsen/logrus"
)

// Options configures a verification run.
type Options struct {
	// IgnoreErrors continues past failures, collecting them in the report rather
	// than returning the first.  The resulting report is not sound, and is
	// intended only for debugging and visualisation.
	IgnoreErrors bool
}

// Verify checks that a circuit implements a set of flows.  The circuit is
// simulated backwards in the Pauli frame, starting from each flow's end
// operator.  Every flow must have explicit measurement records, and every
// qubit touched by a flow must be in the qubit map.  On success, a report
// classifying the circuit's measurements and resets is returned.
func Verify(circ *circuit.Circuit, q2i map[complex128]uint, flows []flow.Flow, options Options) (*Report, error) {
	v, err := newVerifier(circ, q2i, flows, options)
	if err != nil {
		return nil, err
	}
	//
	if err := v.run(); err != nil {
		return nil, err
	}
	//
	return v.report, nil
}

// verifier holds the residual state of all flows during a backward pass.
type verifier struct {
	options Options
	insns   []circuit.Instruction
	flows   []flow.Flow
	q2i     map[complex128]uint
	i2q     map[uint]complex128
	// X and Z components of the residual operator of every flow, one bitset per
	// qubit with one bit per flow.
	xs []*bitset.BitSet
	zs []*bitset.BitSet
	// Flows which depend on each measurement record, one bitset per record.
	records []*bitset.BitSet
	// Number of records produced before the current instruction.
	measured int
	report   *Report
}

func newVerifier(circ *circuit.Circuit, q2i map[complex128]uint, flows []flow.Flow,
	options Options) (*verifier, error) {
	var (
		insns      = circ.Flattened()
		nqubits    = circ.NumQubits()
		nflows     = uint(len(flows))
		nrecords   = int(circ.NumMeasurements())
		i2q        = make(map[uint]complex128, len(q2i))
		xs, zs     []*bitset.BitSet
		records    = make([]*bitset.BitSet, nrecords)
		invalidRec []*Failure
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
	xs = make([]*bitset.BitSet, nqubits)
	zs = make([]*bitset.BitSet, nqubits)
	//
	for q := range xs {
		xs[q] = bitset.New(nflows)
		zs[q] = bitset.New(nflows)
	}
	//
	for m := range records {
		records[m] = bitset.New(nflows)
	}
	//
	for i, f := range flows {
		if f.Measurements().IsPending() {
			return nil, fmt.Errorf("flow %s has unsolved measurements", f)
		}
		// Initialise with end operator.
		for _, t := range f.End().Terms() {
			q, ok := q2i[t.Qubit]
			if !ok {
				return nil, fmt.Errorf("flow %s touches qubit %s which has no index", f, pauli.FormatQubit(t.Qubit))
			}
			//
			xs[q].SetTo(uint(i), t.Basis.HasX())
			zs[q].SetTo(uint(i), t.Basis.HasZ())
		}
		//
		for _, q := range f.Start().Qubits() {
			if _, ok := q2i[q]; !ok {
				return nil, fmt.Errorf("flow %s touches qubit %s which has no index", f, pauli.FormatQubit(q))
			}
		}
		//
		for _, m := range f.Measurements().Indices() {
			if m >= nrecords {
				invalidRec = append(invalidRec, &Failure{Kind: INVALID_RECORD, Index: i, Flow: f})
			} else {
				records[m].Set(uint(i))
			}
		}
	}
	//
	report := &Report{
		Measurements: make([]Measurement, nrecords),
		Resets:       make(map[Site][]int),
	}
	//
	v := &verifier{options, insns, flows, q2i, i2q, xs, zs, records, nrecords, report}
	//
	for _, failure := range invalidRec {
		if err := v.fail(failure); err != nil {
			return nil, err
		}
	}
	//
	return v, nil
}

func (p *verifier) run() error {
	for i := len(p.insns) - 1; i >= 0; i-- {
		if err := p.apply(i); err != nil {
			return err
		}
	}
	// Account for the start operator of each flow
	for i, f := range p.flows {
		for _, t := range f.Start().Terms() {
			q := p.q2i[t.Qubit]
			//
			if t.Basis.HasX() {
				p.xs[q].Flip(uint(i))
			}
			//
			if t.Basis.HasZ() {
				p.zs[q].Flip(uint(i))
			}
		}
	}
	//
	for i, f := range p.flows {
		if residual := p.residual(uint(i)); !residual.IsEmpty() {
			if err := p.fail(&Failure{Kind: RESIDUAL, Index: i, Flow: f, Residual: residual}); err != nil {
				return err
			}
		}
	}
	//
	return nil
}

// apply the ith instruction of the flattened circuit backwards.
func (p *verifier) apply(index int) error {
	insn := &p.insns[index]
	//
	switch insn.Gate.Kind {
	case circuit.ANNOTATION:
		return nil
	case circuit.UNITARY:
		groups := insn.Groups()
		inverse := circuit.MustLookup(insn.Gate.Inverse)
		//
		for i := len(groups) - 1; i >= 0; i-- {
			if err := p.applyUnitary(insn, inverse, groups[i]); err != nil {
				return err
			}
		}
	default:
		for i := len(insn.Targets) - 1; i >= 0; i-- {
			site := Site{index, i}
			q := insn.Targets[i].Qubit()
			//
			if insn.Gate.IsReset() {
				if err := p.applyReset(insn, site, q); err != nil {
					return err
				}
			}
			//
			if insn.Gate.IsMeasurement() {
				if err := p.applyMeasurement(insn, site, q); err != nil {
					return err
				}
			}
		}
	}
	//
	return nil
}

func (p *verifier) applyUnitary(insn *circuit.Instruction, inverse *circuit.Gate, targets []circuit.Target) error {
	// Classically controlled correction
	for i, t := range targets {
		if t.IsRecord() {
			return p.applyFeedback(insn, t, targets[1-i].Qubit(), insn.Gate.Feedback(uint(1-i)))
		}
	}
	//
	var (
		n       = inverse.Generators()
		inputs  = make([]*bitset.BitSet, n)
		outputs = make([]*bitset.BitSet, n)
	)
	// Generator 2k is X on the kth target, generator 2k+1 is Z.
	for k, t := range targets {
		inputs[2*k] = p.xs[t.Qubit()]
		inputs[2*k+1] = p.zs[t.Qubit()]
	}
	//
	for j := range outputs {
		outputs[j] = bitset.New(uint(len(p.flows)))
	}
	//
	for i := uint(0); i < n; i++ {
		image := inverse.Image(1 << i)
		//
		for j := uint(0); j < n; j++ {
			if image&(1<<j) != 0 {
				outputs[j].InPlaceSymmetricDifference(inputs[i])
			}
		}
	}
	//
	for k, t := range targets {
		p.xs[t.Qubit()] = outputs[2*k]
		p.zs[t.Qubit()] = outputs[2*k+1]
	}
	//
	return nil
}

// applyFeedback handles a Pauli correction applied to a qubit conditioned on a
// measurement record.  Any flow whose residual anticommutes with the correction
// has its dependence on that record flipped.
func (p *verifier) applyFeedback(insn *circuit.Instruction, target circuit.Target, q uint, correction pauli.Basis) error {
	m := p.measured - int(target.Lookback())
	//
	if m < 0 {
		return p.fail(&Failure{Kind: INVALID_RECORD, Index: -1, Instruction: insn})
	}
	//
	p.records[m].InPlaceSymmetricDifference(p.anticommuting(q, correction))
	//
	return nil
}

func (p *verifier) applyMeasurement(insn *circuit.Instruction, site Site, q uint) error {
	var basis = insn.Gate.Basis
	//
	p.measured--
	destructive := p.xs[q].None() && p.zs[q].None()
	p.report.Measurements[p.measured] = Measurement{site, q, destructive}
	// Flows depending on this record pick up the measured operator here.
	deps := p.records[p.measured]
	//
	if basis.HasX() {
		p.xs[q].InPlaceSymmetricDifference(deps)
	}
	//
	if basis.HasZ() {
		p.zs[q].InPlaceSymmetricDifference(deps)
	}
	//
	anti := p.anticommuting(q, basis)
	//
	for i, ok := anti.NextSet(0); ok; i, ok = anti.NextSet(i + 1) {
		failure := &Failure{Kind: ANTICOMMUTED_MEASUREMENT, Index: int(i), Flow: p.flows[i], Instruction: insn,
			Residual: p.residual(i)}
		//
		if err := p.fail(failure); err != nil {
			return err
		}
	}
	//
	return nil
}

func (p *verifier) applyReset(insn *circuit.Instruction, site Site, q uint) error {
	var (
		weight = p.xs[q].Union(p.zs[q])
		bad    *bitset.BitSet
	)
	// Only flows whose weight is exactly the reset basis are permitted.
	switch insn.Gate.Basis {
	case pauli.X:
		bad = p.zs[q].Clone()
	case pauli.Z:
		bad = p.xs[q].Clone()
	default:
		bad = p.xs[q].SymmetricDifference(p.zs[q])
	}
	//
	for i, ok := bad.NextSet(0); ok; i, ok = bad.NextSet(i + 1) {
		failure := &Failure{Kind: ANTICOMMUTED_RESET, Index: int(i), Flow: p.flows[i], Instruction: insn,
			Residual: p.residual(i)}
		//
		if err := p.fail(failure); err != nil {
			return err
		}
	}
	//
	if weight.Any() {
		p.report.Resets[site] = sortedIndices(weight)
	}
	//
	p.xs[q].ClearAll()
	p.zs[q].ClearAll()
	//
	return nil
}

// anticommuting returns the flows whose residual anticommutes with a given
// single-qubit Pauli on qubit q.
func (p *verifier) anticommuting(q uint, basis pauli.Basis) *bitset.BitSet {
	anti := bitset.New(uint(len(p.flows)))
	//
	if basis.HasZ() {
		anti.InPlaceSymmetricDifference(p.xs[q])
	}
	//
	if basis.HasX() {
		anti.InPlaceSymmetricDifference(p.zs[q])
	}
	//
	return anti
}

// residual extracts the current residual operator of a given flow.
func (p *verifier) residual(flow uint) pauli.String {
	var terms []pauli.Term
	//
	for q := range p.xs {
		basis := pauli.NewBasis(p.xs[q].Test(flow), p.zs[q].Test(flow))
		if basis != pauli.I {
			terms = append(terms, pauli.Term{Qubit: p.i2q[uint(q)], Basis: basis})
		}
	}
	//
	return pauli.FromTerms(terms...)
}

// fail either returns a failure as an error or, when ignoring errors, records
// it in the report and carries on.
func (p *verifier) fail(failure *Failure) error {
	if !p.options.IgnoreErrors {
		return failure
	}
	//
	log.Debugf("ignoring verification failure: %s", failure.Message())
	p.report.Failures = append(p.report.Failures, failure)
	//
	return nil
}

func sortedIndices(set *bitset.BitSet) []int {
	indices := make([]int, 0, set.Count())
	//
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		indices = append(indices, int(i))
	}
	//
	return indices
}
