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

	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
)

// ANTICOMMUTED_MEASUREMENT indicates a flow's operator anticommuted with a
// measurement.
const ANTICOMMUTED_MEASUREMENT = 0

// ANTICOMMUTED_RESET indicates a flow's operator was inconsistent with the basis
// of a reset.
const ANTICOMMUTED_RESET = 1

// RESIDUAL indicates a flow's operator did not vanish after accounting for its
// start operator and measurement records.
const RESIDUAL = 2

// INVALID_RECORD indicates a flow (or classically controlled gate) refers to a
// measurement record which does not exist.
const INVALID_RECORD = 3

// Failure provides structural information about a flow which does not hold
// for a given circuit.
type Failure struct {
	// Kind of failure
	Kind uint
	// Index of the failing flow
	Index int
	// The failing flow itself
	Flow flow.Flow
	// Instruction at which the failure was detected (nil when detected after
	// reaching the start of the circuit).
	Instruction *circuit.Instruction
	// Residual operator of the flow at the point of failure.
	Residual pauli.String
}

// Message provides a suitable error message
func (p *Failure) Message() string {
	switch p.Kind {
	case ANTICOMMUTED_MEASUREMENT:
		return fmt.Sprintf("flow %s anticommuted with measurement %s (residual %s)", p.Flow, p.Instruction, p.Residual)
	case ANTICOMMUTED_RESET:
		return fmt.Sprintf("flow %s anticommuted with reset %s (residual %s)", p.Flow, p.Instruction, p.Residual)
	case INVALID_RECORD:
		if p.Instruction != nil {
			return fmt.Sprintf("instruction %s refers to a record before the start of the circuit", p.Instruction)
		}
		//
		return fmt.Sprintf("flow %s refers to a record beyond the end of the circuit", p.Flow)
	default:
		return fmt.Sprintf("flow %s does not hold (residual %s)", p.Flow, p.Residual)
	}
}

func (p *Failure) Error() string {
	return p.Message()
}

func (p *Failure) String() string {
	return p.Message()
}
