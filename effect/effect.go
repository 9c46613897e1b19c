// Package effect implements the mixer's effect chain (spec §4.9): a
// uniform Effect contract any chain node can satisfy, a singly-linked
// chain of nodes (each node links only to its output) with
// cycle-preventing attach/detach, and the equal-power Panner effect that
// resolves spec §9's panning Open Question. Attach replaces a node's
// existing output link instead of rejecting it, and nothing prevents two
// nodes from linking to the same output node.
package effect

import "errors"

// ErrCycle is returned by Attach when the requested link would make the
// chain reachable from itself.
var ErrCycle = errors.New("effect: attach would create a cycle")

// Effect is the uniform contract a chain node satisfies, mirroring the
// data converter's process/required/expected triad (spec §4.4, §4.9) so a
// chain can negotiate frame counts across effects that resample.
type Effect interface {
	Process(in []float32, inFrames *int, out []float32, outFrames *int) error
	RequiredInputFrames(outFrames int) int
	ExpectedOutputFrames(inFrames int) int
	InputChannels() int
	OutputChannels() int
}

// Node wraps an Effect in a singly-linked output bus, the same shape the
// reference library's ma_node_attach_output_bus builds (one output per
// node, since this engine's graph is a linear chain rather than a general
// mixing graph).
type Node struct {
	Effect Effect
	output *Node
}

// NewNode wraps e as a chain node with no output attached.
func NewNode(e Effect) *Node { return &Node{Effect: e} }

// Attach connects n's output to target. It fails with ErrCycle if target
// is n itself or if target already leads back to n through its own output
// chain.
func (n *Node) Attach(target *Node) error {
	if target == n {
		return ErrCycle
	}
	for cur := target; cur != nil; cur = cur.output {
		if cur == n {
			return ErrCycle
		}
	}
	n.output = target
	return nil
}

// Detach removes n's output connection, if any.
func (n *Node) Detach() { n.output = nil }

// Output returns the node n feeds into, or nil if n is a chain tail.
func (n *Node) Output() *Node { return n.output }

// Chain drives a linear sequence of nodes from a head, processing frames
// through each node's Effect in turn.
type Chain struct {
	head     *Node
	channels int // channel count used for the identity passthrough when head is nil
}

// NewChain creates a chain starting at head. head may be nil for an empty
// chain that passes data through unmodified at the given channel count.
func NewChain(head *Node, channels int) *Chain { return &Chain{head: head, channels: channels} }

// SetHead replaces the chain's entry point.
func (c *Chain) SetHead(head *Node) { c.head = head }

// nodes returns the chain's nodes in head-to-tail order.
func (c *Chain) nodes() []*Node {
	var ns []*Node
	for node := c.head; node != nil; node = node.output {
		ns = append(ns, node)
	}
	return ns
}

// InputChannels, OutputChannels, RequiredInputFrames and ExpectedOutputFrames
// let a Chain itself satisfy Effect, so a chain can be nested inside
// another chain or attached to a mixer the same way a single effect is.
func (c *Chain) InputChannels() int {
	if c.head == nil {
		return c.channels
	}
	return c.head.Effect.InputChannels()
}

func (c *Chain) OutputChannels() int {
	ns := c.nodes()
	if len(ns) == 0 {
		return c.channels
	}
	return ns[len(ns)-1].Effect.OutputChannels()
}

func (c *Chain) ExpectedOutputFrames(inFrames int) int {
	n := inFrames
	for _, node := range c.nodes() {
		n = node.Effect.ExpectedOutputFrames(n)
	}
	return n
}

func (c *Chain) RequiredInputFrames(outFrames int) int {
	ns := c.nodes()
	n := outFrames
	for i := len(ns) - 1; i >= 0; i-- {
		n = ns[i].Effect.RequiredInputFrames(n)
	}
	return n
}

// Process runs in through every node in the chain in turn, using scratch
// buffers sized by each stage's own ExpectedOutputFrames so an effect that
// resamples (changes frame count) still composes correctly with the next
// one.
func (c *Chain) Process(in []float32, inFrames *int, out []float32, outFrames *int) error {
	if c.head == nil {
		n := *inFrames
		if *outFrames < n {
			n = *outFrames
		}
		copy(out[:n*c.channels], in[:n*c.channels])
		*inFrames, *outFrames = n, n
		return nil
	}

	curIn := in
	curInFrames := *inFrames
	for node := c.head; node != nil; node = node.output {
		requestedOut := node.Effect.ExpectedOutputFrames(curInFrames)
		if node.output == nil && requestedOut > *outFrames {
			requestedOut = *outFrames
		}
		stageOut := make([]float32, requestedOut*node.Effect.OutputChannels())
		stageInFrames, stageOutFrames := curInFrames, requestedOut
		if err := node.Effect.Process(curIn, &stageInFrames, stageOut, &stageOutFrames); err != nil {
			return err
		}
		if node.output == nil {
			copy(out[:stageOutFrames*node.Effect.OutputChannels()], stageOut[:stageOutFrames*node.Effect.OutputChannels()])
			*inFrames = stageInFrames
			*outFrames = stageOutFrames
			return nil
		}
		curIn = stageOut[:stageOutFrames*node.Effect.OutputChannels()]
		curInFrames = stageOutFrames
	}
	return nil
}
