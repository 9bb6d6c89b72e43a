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
	"fmt"
	"slices"

	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/verify"
)

// TimeReversed returns the chunk which runs this chunk backwards in time.
// Every unitary is replaced by its inverse, and every flow has its start and
// end swapped.  A measurement after which no flow carries weight on its qubit
// becomes a reset, while a reset from which flows begin becomes a measurement
// (whose record those flows then consume).  Measure-resets are handled as a
// measurement followed by a reset.  The chunk must verify, and must not contain
// classically controlled gates.
func (p *Chunk) TimeReversed() (*Chunk, error) {
	report, err := p.VerifyWith(verify.Options{})
	if err != nil {
		return nil, err
	}
	//
	var (
		insns   = p.circuit.Flattened()
		circ    = circuit.NewCircuit()
		records = make([]int, p.NumMeasurements())
		// Records added to each flow by resets turned into measurements.
		extra    = make([][]int, len(p.flows))
		measured = 0
		record   = int(p.NumMeasurements())
	)
	//
	for i := len(insns) - 1; i >= 0; i-- {
		insn := insns[i]
		//
		switch insn.Gate.Kind {
		case circuit.ANNOTATION:
			if insn.Gate.Name == "TICK" || insn.Gate.Name == "QUBIT_COORDS" {
				circ.AppendOp(insn)
			}
		case circuit.UNITARY:
			if err := appendInverse(circ, insn); err != nil {
				return nil, err
			}
		default:
			for j := len(insn.Targets) - 1; j >= 0; j-- {
				var (
					site  = verify.Site{Instruction: i, Target: j}
					q     = insn.Targets[j]
					basis = basisName(insn.Gate)
					// Whether the reversed target measures, and whether it resets.
					measures, resets bool
				)
				//
				if insn.Gate.IsMeasurement() {
					record--
				}
				// The reset (if any) happens last, so is reversed first.
				if insn.Gate.IsReset() {
					if flows := report.ResetFlows(site); len(flows) > 0 {
						for _, f := range flows {
							extra[f] = append(extra[f], measured)
						}
						//
						measures = true
					} else {
						resets = true
					}
				}
				//
				if insn.Gate.IsMeasurement() {
					if report.IsDestructive(record) {
						records[record] = -1
						resets = true
					} else {
						records[record] = measured
						measures = true
					}
				}
				//
				if measures {
					measured++
				}
				//
				if err := appendCollapse(circ, basis, measures, resets, q); err != nil {
					return nil, err
				}
			}
		}
	}
	//
	flows := make([]flow.Flow, len(p.flows))
	//
	for i, f := range p.flows {
		ms := f.Measurements().Map(func(m int) int {
			return records[m]
		})
		flows[i] = f.Reversed().WithMeasurements(ms.Xor(flow.Explicit(extra[i]...)))
	}
	//
	c := &Chunk{circ, p.q2i, flows, slices.Clone(p.discardedOut), slices.Clone(p.discardedIn)}
	//
	return c.validate()
}

// appendInverse appends the inverse of a unitary instruction, with its target
// groups in reverse order.
func appendInverse(circ *circuit.Circuit, insn circuit.Instruction) error {
	var (
		groups  = insn.Groups()
		targets []circuit.Target
	)
	//
	for i := len(groups) - 1; i >= 0; i-- {
		for _, t := range groups[i] {
			if t.IsRecord() {
				return fmt.Errorf("cannot time reverse classically controlled %s", insn)
			}
		}
		//
		targets = append(targets, groups[i]...)
	}
	//
	return circ.Append(insn.Gate.Inverse, targets, insn.Args...)
}

// appendCollapse appends a measurement, reset or measure-reset of a single
// qubit in a given basis.
func appendCollapse(circ *circuit.Circuit, basis string, measures bool, resets bool, target circuit.Target) error {
	var name string
	//
	switch {
	case measures && resets:
		name = "MR"
	case measures:
		name = "M"
	case resets:
		name = "R"
	default:
		return nil
	}
	//
	return circ.Append(name+basis, []circuit.Target{target})
}

// basisName returns the suffix identifying the basis of a collapsing gate,
// where Z is implicit.
func basisName(gate *circuit.Gate) string {
	if s := gate.Basis.String(); s != "Z" {
		return s
	}
	//
	return ""
}
