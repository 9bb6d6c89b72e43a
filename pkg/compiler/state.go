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
	"fmt"
	"slices"
	"strings"

	"github.com/consensys/go-qflow/pkg/flow"
)

// openFlow is a flow which has started but not yet finished, or a sentinel
// marking a port as discarded.
type openFlow struct {
	flow      flow.Flow
	discarded bool
}

// openFlows maps ports to the flows currently passing through them, keeping
// track of insertion order so that compilation is deterministic.
type openFlows struct {
	keys    []flow.PortKey
	entries map[flow.PortKey]openFlow
}

func newOpenFlows() *openFlows {
	return &openFlows{nil, make(map[flow.PortKey]openFlow)}
}

func (p *openFlows) put(key flow.PortKey, entry openFlow) {
	if _, ok := p.entries[key]; !ok {
		p.keys = append(p.keys, key)
	}
	//
	p.entries[key] = entry
}

func (p *openFlows) get(key flow.PortKey) (openFlow, bool) {
	entry, ok := p.entries[key]
	return entry, ok
}

func (p *openFlows) len() int {
	return len(p.keys)
}

// each visits entries in insertion order.
func (p *openFlows) each(fn func(flow.PortKey, openFlow)) {
	for _, key := range p.keys {
		fn(key, p.entries[key])
	}
}

// ports returns the ports of all open flows, for error reporting.
func (p *openFlows) ports() []flow.Port {
	var ports []flow.Port
	//
	p.each(func(_ flow.PortKey, entry openFlow) {
		ports = append(ports, entry.flow.EndPort())
	})
	//
	return ports
}

// earliest returns the smallest measurement record referenced by any open flow.
func (p *openFlows) earliest() (int, bool) {
	var (
		earliest int
		found    bool
	)
	//
	p.each(func(_ flow.PortKey, entry openFlow) {
		if m, ok := entry.flow.Measurements().Min(); ok && !entry.discarded && (!found || m < earliest) {
			earliest, found = m, true
		}
	})
	//
	return earliest, found
}

// relative summarises the open flows with measurement records taken relative
// to a given offset.  Two states with equal summaries compile any following
// node identically, except for an offset in measurement records.
func (p *openFlows) relative(offset int) string {
	items := make([]string, 0, p.len())
	//
	p.each(func(_ flow.PortKey, entry openFlow) {
		if entry.discarded {
			items = append(items, fmt.Sprintf("%s discarded", entry.flow.EndPort()))
		} else {
			f := entry.flow.Shifted(-offset)
			items = append(items, fmt.Sprintf("%s %s %v", f.EndPort(), f.Measurements(), f.Flags()))
		}
	})
	//
	slices.Sort(items)
	//
	return strings.Join(items, "; ")
}

// shifted returns these open flows with every measurement record offset by a
// given amount.
func (p *openFlows) shifted(offset int) *openFlows {
	next := newOpenFlows()
	//
	p.each(func(key flow.PortKey, entry openFlow) {
		next.put(key, openFlow{entry.flow.Shifted(offset), entry.discarded})
	})
	//
	return next
}
