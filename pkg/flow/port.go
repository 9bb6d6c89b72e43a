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
package flow

import (
	"github.com/consensys/go-qflow/pkg/pauli"
)

// Port is the point at which a flow enters or leaves a fragment: an operator,
// optionally tagged with an observable.
type Port struct {
	Pauli      pauli.String
	Observable Observable
}

// PortKey is a comparable form of a port, suitable for use as a map key.
type PortKey struct {
	pauli      string
	observable Observable
}

// Key returns the comparable form of this port.
func (p Port) Key() PortKey {
	return PortKey{p.Pauli.Key(), p.Observable}
}

// IsEmpty checks whether this port has no operator.
func (p Port) IsEmpty() bool {
	return p.Pauli.IsEmpty()
}

// Equal checks whether two ports are identical.
func (p Port) Equal(o Port) bool {
	return p.Observable == o.Observable && p.Pauli.Equal(o.Pauli)
}

func (p Port) String() string {
	if p.Observable.IsSet() {
		return p.Pauli.String() + " (obs " + p.Observable.String() + ")"
	}
	//
	return p.Pauli.String()
}
