package effectchain

import "fmt"

type nodeRuntime struct {
	id         string
	effectType string
	bypassed   bool
	runtime    Runtime
}

// Chain owns an ordered serial effect chain: node runtimes, bypass state,
// and the command queue feeding live parameter changes into the audio path.
// Configuration (SetNodes) happens on the control goroutine; Process runs on
// the audio goroutine and drains pending commands at each block boundary.
type Chain struct {
	ctx      Context
	registry *Registry

	nodes []*nodeRuntime
	byID  map[string]*nodeRuntime

	commands *CommandQueue
}

// New creates a Chain with the given context and registry.
func New(ctx Context, registry *Registry) *Chain {
	return &Chain{
		ctx:      ctx,
		registry: registry,
		byID:     make(map[string]*nodeRuntime),
		commands: NewCommandQueue(defaultQueueCapacity),
	}
}

// SetContext updates the chain context (e.g. after a sample rate change).
// Existing nodes keep their old rate until the next SetNodes.
func (c *Chain) SetContext(ctx Context) {
	c.ctx = ctx
}

// Context returns the current chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// Commands returns the queue feeding live parameter changes into the chain.
// Push from at most one control goroutine; the chain drains it in Process.
func (c *Chain) Commands() *CommandQueue {
	return c.commands
}

// NodeCount returns the number of configured nodes.
func (c *Chain) NodeCount() int {
	return len(c.nodes)
}

// SetNodes replaces the chain topology with the given ordered node list.
// Existing runtimes are reused when a node keeps its ID and type, so delay
// lines survive reordering and parameter-only changes. Unknown effect types
// fail the whole update.
func (c *Chain) SetNodes(params []Params) error {
	next := make([]*nodeRuntime, 0, len(params))
	nextByID := make(map[string]*nodeRuntime, len(params))

	for _, p := range params {
		if p.ID == "" {
			return fmt.Errorf("effectchain: node of type %q has no ID", p.Type)
		}

		if _, dup := nextByID[p.ID]; dup {
			return fmt.Errorf("effectchain: duplicate node ID %q", p.ID)
		}

		rt := c.byID[p.ID]
		if rt == nil || rt.effectType != p.Type {
			runtime, err := c.newRuntime(p.Type)
			if err != nil {
				return err
			}

			rt = &nodeRuntime{id: p.ID, effectType: p.Type, runtime: runtime}
		}

		err := rt.runtime.Configure(c.ctx, p)
		if err != nil {
			return fmt.Errorf("effectchain: configure node %q (%s): %w", p.ID, p.Type, err)
		}

		rt.bypassed = p.Bypassed
		next = append(next, rt)
		nextByID[p.ID] = rt
	}

	c.nodes = next
	c.byID = nextByID

	return nil
}

// SetBypassed toggles one node's bypass state; unknown IDs are ignored.
func (c *Chain) SetBypassed(nodeID string, bypassed bool) {
	if rt := c.byID[nodeID]; rt != nil {
		rt.bypassed = bypassed
	}
}

// Process drains pending parameter commands, then runs the block through
// every non-bypassed node in order.
func (c *Chain) Process(block []float64) {
	c.commands.Drain(c.applyCommand)

	for _, rt := range c.nodes {
		if rt.bypassed {
			continue
		}

		rt.runtime.Process(block)
	}
}

// Reset clears the processing state of every node; topology and parameters
// survive.
func (c *Chain) Reset() {
	for _, rt := range c.nodes {
		rt.runtime.Reset()
	}
}

func (c *Chain) applyCommand(cmd Command) {
	rt := c.byID[cmd.NodeID]
	if rt == nil {
		return
	}

	if setter, ok := rt.runtime.(ParamSetter); ok {
		setter.Set(cmd.Name, cmd.Value)
	}
}

func (c *Chain) newRuntime(effectType string) (Runtime, error) {
	factory := c.registry.Lookup(effectType)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	return factory(c.ctx)
}
