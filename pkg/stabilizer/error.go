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

	"github.com/consensys/go-qflow/pkg/pauli"
)

// UnsolvableError indicates a flow whose measurement records were to be
// solved for is not actually a flow of the circuit in question.
type UnsolvableError struct {
	// Operators of the flow being solved
	Start pauli.String
	End   pauli.String
	// Portions of the operators which could not be eliminated
	ResidualStart pauli.String
	ResidualEnd   pauli.String
}

// Message provides a suitable error message
func (p *UnsolvableError) Message() string {
	return fmt.Sprintf("cannot solve measurements for flow %s -> %s (residual %s -> %s)", p.Start, p.End,
		p.ResidualStart, p.ResidualEnd)
}

func (p *UnsolvableError) Error() string {
	return p.Message()
}
