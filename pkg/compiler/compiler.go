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
	"maps"
	"slices"

	"github.com/consensys/go-qflow/pkg/chunk"
	"github.com/consensys/go-qflow/pkg/circuit"
	"github.com/consensys/go-qflow/pkg/flow"
	"github.com/consensys/go-qflow/pkg/pauli"
	log "github.com/sirupsen/logrus"
)

// POSTSELECT_COORD is the extra coordinate appended to the detectors of
// postselected flows.
const POSTSELECT_COORD = 999

// Compiler links a sequence of nodes into a single circuit.  Flows are
// threaded from one node to the next by port, and each flow which finishes is
// turned into a detector (or, for flows tagged with an observable, an
// observable include).  A compiler is used once: nodes are appended in order,
// and the circuit is obtained by finishing.
type Compiler struct {
	options options
	// Global qubit indices, assigned in order of first use.
	q2i map[complex128]uint
	// Instructions emitted so far (excluding the coordinate header).
	body *circuit.Circuit
	// Flows which have started but not finished.
	open *openFlows
	// Number of measurement records produced so far.
	measured int
	// Whether any chunk has been emitted yet.
	started bool
}

type options struct {
	metadata     func(flow.Flow) []float64
	ignoreErrors bool
	logger       *log.Entry
}

// Option customises a compiler.
type Option func(*options)

// WithMetadata attaches extra coordinates to every detector, as determined by
// a given function of the flow being detected.
func WithMetadata(fn func(flow.Flow) []float64) Option {
	return func(o *options) {
		o.metadata = fn
	}
}

// WithIgnoreErrors continues past missing inputs and unused outputs, logging
// them as warnings.  The resulting circuit is not sound, and is intended only
// for debugging and visualisation.
func WithIgnoreErrors() Option {
	return func(o *options) {
		o.ignoreErrors = true
	}
}

// WithLogger directs diagnostic output to a given logger.
func WithLogger(logger *log.Entry) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New constructs a compiler with no nodes.
func New(opts ...Option) *Compiler {
	o := options{logger: log.NewEntry(log.StandardLogger())}
	//
	for _, opt := range opts {
		opt(&o)
	}
	//
	return &Compiler{o, make(map[complex128]uint), circuit.NewCircuit(), newOpenFlows(), 0, false}
}

// Compile is a convenience for compiling a sequence of nodes in one go.
func Compile(nodes []chunk.Node, opts ...Option) (*circuit.Circuit, error) {
	c := New(opts...)
	//
	for _, node := range nodes {
		if err := c.Append(node); err != nil {
			return nil, err
		}
	}
	//
	return c.Finish()
}

// Append compiles a node onto the end of the circuit so far.
func (p *Compiler) Append(node chunk.Node) error {
	switch node := node.(type) {
	case *chunk.Chunk:
		return p.appendChunk(node)
	case *chunk.Loop:
		return p.appendLoop(node)
	case *chunk.Reflow:
		return p.appendReflow(node)
	default:
		return fmt.Errorf("unknown node %T", node)
	}
}

// Finish checks every flow has been consumed, and returns the compiled circuit
// prefixed by the coordinates of every qubit.
func (p *Compiler) Finish() (*circuit.Circuit, error) {
	var err error
	//
	p.open.each(func(_ flow.PortKey, entry openFlow) {
		if !entry.discarded && err == nil {
			err = p.fail(&chunk.UnusedFlowOutputError{Flow: entry.flow})
		}
	})
	//
	if err != nil {
		return nil, err
	}
	//
	circ := circuit.NewCircuit()
	//
	for _, q := range p.qubits() {
		target := []circuit.Target{circuit.QubitTarget(p.q2i[q])}
		//
		if err := circ.Append("QUBIT_COORDS", target, real(q), imag(q)); err != nil {
			return nil, err
		}
	}
	//
	circ.Extend(p.body)
	//
	return circ, nil
}

func (p *Compiler) appendChunk(c *chunk.Chunk) error {
	var (
		offset     = p.measured
		next       = newOpenFlows()
		consumed   = make(map[flow.PortKey]bool)
		detections = newDetections()
	)
	//
	if p.started {
		p.body.AppendOp(circuit.Instruction{Gate: circuit.MustLookup("TICK")})
	}
	//
	p.started = true
	p.body.Extend(c.Circuit().Remapped(p.remapping(c)))
	p.measured += int(c.NumMeasurements())
	//
	for _, f := range c.Flows() {
		f = f.Shifted(offset)
		//
		if !f.Start().IsEmpty() {
			key := f.StartPort().Key()
			prev, ok := p.open.get(key)
			//
			if !ok {
				if err := p.fail(&chunk.MissingFlowInputError{Flow: f, Available: p.open.ports()}); err != nil {
					return err
				}
				// Treat as though the flow began here.
				f = f.WithStart(pauli.String{})
			} else {
				consumed[key] = true
				// Discarded inputs propagate to the corresponding output.
				if prev.discarded {
					if !f.End().IsEmpty() {
						next.put(f.EndPort().Key(), openFlow{f, true})
					}
					//
					continue
				}
				//
				var err error
				// Cannot fail, since the ports match.
				if f, err = prev.flow.Then(f); err != nil {
					return err
				}
			}
		}
		//
		if err := p.finishOrCarry(f, next, detections); err != nil {
			return err
		}
	}
	// Every open flow must have been consumed or discarded.
	for _, port := range c.DiscardedInputs() {
		consumed[port.Key()] = true
	}
	//
	if err := p.checkConsumed(consumed); err != nil {
		return err
	}
	//
	for _, port := range c.DiscardedOutputs() {
		next.put(port.Key(), discardedFlow(port))
	}
	//
	p.open = next
	p.emitDetections(detections)
	//
	p.options.logger.Debugf("compiled chunk with %d flows and %d measurements (%d detectors)", len(c.Flows()),
		c.NumMeasurements(), detections.count)
	//
	return nil
}

// finishOrCarry either emits a flow which has finished, or carries it forward
// to the next node.  Observables are included as soon as they have
// measurements, leaving an empty flow to carry on.
func (p *Compiler) finishOrCarry(f flow.Flow, next *openFlows, detections *detections) error {
	index, isObservable := f.Observable().Index()
	//
	if isObservable {
		if !f.Measurements().IsEmpty() {
			if err := p.emitObservable(index, f.Measurements()); err != nil {
				return err
			}
		}
		//
		f = f.WithMeasurements(flow.Explicit())
	} else if f.End().IsEmpty() {
		detections.add(f)
	}
	//
	if !f.End().IsEmpty() {
		next.put(f.EndPort().Key(), openFlow{f, false})
	}
	//
	return nil
}

// checkConsumed checks every open flow was consumed by the node just compiled.
func (p *Compiler) checkConsumed(consumed map[flow.PortKey]bool) error {
	var err error
	//
	p.open.each(func(key flow.PortKey, entry openFlow) {
		if !consumed[key] && !entry.discarded && err == nil {
			err = p.fail(&chunk.UnusedFlowOutputError{Flow: entry.flow})
		}
	})
	//
	return err
}

func (p *Compiler) appendReflow(r *chunk.Reflow) error {
	var (
		next     = newOpenFlows()
		consumed = make(map[flow.PortKey]bool)
	)
	//
	for _, out := range r.Outputs() {
		var (
			measurements = flow.Explicit()
			flags        []string
			discarded    = false
		)
		//
		for _, in := range out.Inputs {
			prev, ok := p.open.get(in.Key())
			//
			if !ok {
				missing := flow.MustNew(in.Pauli, out.Port.Pauli, flow.Explicit()).WithObservable(in.Observable)
				if err := p.fail(&chunk.MissingFlowInputError{Flow: missing, Available: p.open.ports()}); err != nil {
					return err
				}
				//
				continue
			}
			//
			consumed[in.Key()] = true
			discarded = discarded || prev.discarded
			measurements = measurements.Xor(prev.flow.Measurements())
			flags = append(flags, prev.flow.Flags()...)
		}
		//
		f, err := flow.New(pauli.String{}, out.Port.Pauli, measurements, flow.WithFlags(flags...))
		if err != nil {
			return err
		}
		//
		next.put(out.Port.Key(), openFlow{f.WithObservable(out.Port.Observable), discarded})
	}
	//
	for _, port := range r.Discards() {
		consumed[port.Key()] = true
	}
	//
	if err := p.checkConsumed(consumed); err != nil {
		return err
	}
	//
	p.open = next
	//
	return nil
}

func (p *Compiler) emitObservable(index uint, measurements flow.MeasureSet) error {
	return p.body.Append("OBSERVABLE_INCLUDE", p.records(measurements), float64(index))
}

// emitDetections emits the detectors found whilst compiling a chunk, followed
// by a coordinate shift if any were emitted.
func (p *Compiler) emitDetections(detections *detections) {
	var layers uint
	//
	for _, d := range detections.items {
		if d.flow.Measurements().IsEmpty() {
			p.options.logger.Debugf("skipping detector for flow %s without measurements", d.flow)
			continue
		}
		//
		center := d.flow.Center()
		args := []float64{real(center), imag(center), float64(d.layer)}
		//
		if p.options.metadata != nil {
			args = append(args, p.options.metadata(d.flow)...)
		}
		//
		if d.flow.HasFlag(chunk.POSTSELECT) {
			args = append(args, POSTSELECT_COORD)
		}
		//
		insn := circuit.Instruction{
			Gate:    circuit.MustLookup("DETECTOR"),
			Targets: p.records(d.flow.Measurements()),
			Args:    args,
		}
		p.body.AppendOp(insn)
		//
		layers = max(layers, d.layer+1)
	}
	//
	if layers > 0 {
		p.body.AppendOp(circuit.Instruction{Gate: circuit.MustLookup("SHIFT_COORDS"), Args: []float64{0, 0,
			float64(layers)}})
	}
}

// records converts absolute measurement indices into lookback targets relative
// to the end of the circuit so far.
func (p *Compiler) records(measurements flow.MeasureSet) []circuit.Target {
	indices := measurements.Indices()
	targets := make([]circuit.Target, len(indices))
	//
	for i, m := range indices {
		targets[i] = circuit.RecordTarget(uint(p.measured - m))
	}
	//
	return targets
}

// remapping assigns global indices to the qubits of a chunk, returning the map
// from the chunk's indices to global indices.
func (p *Compiler) remapping(c *chunk.Chunk) func(uint) uint {
	table := make(map[uint]uint)
	//
	for _, q := range c.Qubits() {
		index, ok := p.q2i[q]
		if !ok {
			index = uint(len(p.q2i))
			p.q2i[q] = index
		}
		//
		table[c.QubitIndices()[q]] = index
	}
	//
	return func(i uint) uint {
		return table[i]
	}
}

// qubits returns all qubits in global index order.
func (p *Compiler) qubits() []complex128 {
	qubits := slices.Collect(maps.Keys(p.q2i))
	slices.SortFunc(qubits, func(a, b complex128) int {
		return int(p.q2i[a]) - int(p.q2i[b])
	})
	//
	return qubits
}

// fail either returns an error or, when ignoring errors, logs it as a warning.
func (p *Compiler) fail(err error) error {
	if !p.options.ignoreErrors {
		return err
	}
	//
	p.options.logger.Warnf("ignoring error: %s", err)
	//
	return nil
}

func discardedFlow(port flow.Port) openFlow {
	f := flow.MustNew(pauli.String{}, port.Pauli, flow.Explicit()).WithObservable(port.Observable)
	return openFlow{f, true}
}

// detection is a detector awaiting emission, along with the index of the
// detector at the same position within the current chunk.
type detection struct {
	flow  flow.Flow
	layer uint
}

type detections struct {
	items []detection
	used  map[complex128]uint
	count int
}

func newDetections() *detections {
	return &detections{nil, make(map[complex128]uint), 0}
}

func (p *detections) add(f flow.Flow) {
	if f.Measurements().IsEmpty() {
		p.items = append(p.items, detection{f, 0})
		return
	}
	//
	layer := p.used[f.Center()]
	p.used[f.Center()] = layer + 1
	p.items = append(p.items, detection{f, layer})
	p.count++
}
