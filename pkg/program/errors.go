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
package program

import (
	"fmt"

	"github.com/consensys/go-qflow/pkg/util/source"
)

// CircuitError reports syntax errors arising in the circuit text of a chunk
// node.  Each syntax error refers to a source file named after the node which
// contains it.
type CircuitError struct {
	Path   string
	Errors []source.SyntaxError
}

// Message returns the message of the first syntax error.
func (p *CircuitError) Message() string {
	if len(p.Errors) == 0 {
		return "malformed circuit"
	}
	//
	return p.Errors[0].Message()
}

func (p *CircuitError) Error() string {
	if len(p.Errors) > 1 {
		return fmt.Sprintf("%s: %s (and %d more)", p.Path, p.Message(), len(p.Errors)-1)
	}
	//
	return fmt.Sprintf("%s: %s", p.Path, p.Message())
}
