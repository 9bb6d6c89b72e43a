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
	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/circuit"
)

// appendLoop compiles the iterations of a loop one at a time, until the state
// of the open flows is periodic.  At that point every remaining iteration is
// guaranteed to compile to the same instructions as the last, so they are
// folded into a repeat block rather than compiled.  Adjacent iterations with
// identical instructions are also fused.
func (p *Compiler) appendLoop(loop *chunk.Loop) error {
	var (
		outer      = p.body
		iterations []*circuit.Circuit
		remaining  uint
		previous   string
	)
	//
	defer func() { p.body = outer }()
	//
	for i := uint(0); i < loop.Repetitions(); i++ {
		start := p.measured
		p.body = circuit.NewCircuit()
		//
		for _, node := range loop.Body() {
			if err := p.Append(node); err != nil {
				return err
			}
		}
		//
		iterations = append(iterations, p.body)
		// No open flow may reach back before this iteration.
		earliest, ok := p.open.earliest()
		witness := !ok || earliest >= start
		state := p.open.relative(p.measured)
		//
		if i > 0 && witness && state == previous {
			remaining = loop.Repetitions() - i - 1
			//
			if remaining > 0 {
				p.options.logger.Debugf("folding %d iterations of loop after %d", remaining, i+1)
				//
				shift := int(remaining) * (p.measured - start)
				p.measured += shift
				p.open = p.open.shifted(shift)
			}
			//
			break
		}
		//
		previous = state
	}
	//
	for i := 0; i < len(iterations); {
		j := i + 1
		for j < len(iterations) && iterations[j].Equal(iterations[i]) {
			j++
		}
		//
		count := uint(j - i)
		if j == len(iterations) {
			count += remaining
		}
		//
		outer.AppendRepeat(count, iterations[i])
		i = j
	}
	//
	return nil
}
