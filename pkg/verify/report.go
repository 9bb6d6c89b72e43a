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

// Site identifies one target of one instruction in the flattened circuit.
type Site struct {
	// Index of the instruction within the flattened circuit.
	Instruction int
	// Index of the target within the instruction.
	Target int
}

// Measurement classifies a single measurement record.
type Measurement struct {
	Site
	// Qubit index which was measured.
	Qubit uint
	// Destructive holds when no flow carries weight on the measured qubit after
	// the measurement, meaning the measurement could be replaced by a reset when
	// the circuit is run backwards.
	Destructive bool
}

// Report summarises what the verifier learned about a circuit whilst checking
// a set of flows against it.
type Report struct {
	// Measurements classified by record index.
	Measurements []Measurement
	// Resets maps each reset to the indices of the flows which begin there.
	Resets map[Site][]int
	// Failures encountered (only when errors are ignored).
	Failures []*Failure
}

// IsDestructive checks whether a given measurement record is destructive.
func (p *Report) IsDestructive(record int) bool {
	return p.Measurements[record].Destructive
}

// ResetFlows returns the indices of the flows which begin at a given reset.
func (p *Report) ResetFlows(site Site) []int {
	return p.Resets[site]
}
