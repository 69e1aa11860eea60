package effectchain

import (
	"errors"
	"math"
	"testing"
)

func testChain(t *testing.T) *Chain {
	t.Helper()

	return New(Context{SampleRate: 1000}, DefaultRegistry())
}

func TestChainSetNodesAndProcess(t *testing.T) {
	c := testChain(t)

	err := c.SetNodes([]Params{
		{
			ID:   "d1",
			Type: "delay",
			Num:  map[string]float64{"time": 0.05, "feedback": 0, "mix": 1},
		},
	})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	if c.NodeCount() != 1 {
		t.Fatalf("expected 1 node, got %d", c.NodeCount())
	}

	block := make([]float64, 100)
	block[0] = 1
	c.Process(block)

	if math.Abs(block[50]-1) > 1e-12 {
		t.Fatalf("expected echo at sample 50, got %f", block[50])
	}

	if math.Abs(block[0]) > 1e-12 {
		t.Fatalf("full wet should drop the dry impulse, got %f", block[0])
	}
}

func TestChainSerialOrder(t *testing.T) {
	c := testChain(t)

	// Delay into distortion: the echo passes through the clipper.
	err := c.SetNodes([]Params{
		{
			ID:   "d1",
			Type: "delay",
			Num:  map[string]float64{"time": 0.01, "feedback": 0, "mix": 1},
		},
		{
			ID:   "clip",
			Type: "distortion",
			Str:  map[string]string{"kind": "hardclip"},
			Num:  map[string]float64{"drive": 0.5, "mix": 1},
		},
	})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	block := make([]float64, 40)
	block[0] = 1
	c.Process(block)

	// drive 0.5 puts the hard-clip ceiling at 0.5.
	if math.Abs(block[10]-0.5) > 1e-12 {
		t.Fatalf("expected clipped echo 0.5 at sample 10, got %f", block[10])
	}
}

func TestChainUnknownEffectFailsUpdate(t *testing.T) {
	c := testChain(t)

	err := c.SetNodes([]Params{{ID: "x", Type: "phaser"}})
	if !errors.Is(err, ErrUnknownEffect) {
		t.Fatalf("expected ErrUnknownEffect, got %v", err)
	}

	if c.NodeCount() != 0 {
		t.Fatal("failed update should leave the chain unchanged")
	}
}

func TestChainRejectsDuplicateAndEmptyIDs(t *testing.T) {
	c := testChain(t)

	if err := c.SetNodes([]Params{{ID: "", Type: "delay"}}); err == nil {
		t.Fatal("expected error for empty node ID")
	}

	err := c.SetNodes([]Params{
		{ID: "a", Type: "delay"},
		{ID: "a", Type: "distortion"},
	})
	if err == nil {
		t.Fatal("expected error for duplicate node ID")
	}
}

func TestChainReusesRuntimeAcrossReconfigure(t *testing.T) {
	c := testChain(t)

	nodes := []Params{{
		ID:   "d1",
		Type: "delay",
		Num:  map[string]float64{"time": 0.05, "feedback": 0, "mix": 1},
	}}

	if err := c.SetNodes(nodes); err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	// Prime the delay line, then reconfigure without changing ID or type.
	block := make([]float64, 10)
	block[0] = 1
	c.Process(block)

	nodes[0].Num["mix"] = 0.5
	if err := c.SetNodes(nodes); err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	// The primed impulse must still come out: the line survived.
	rest := make([]float64, 50)
	c.Process(rest)

	if math.Abs(rest[40]-0.5) > 1e-12 {
		t.Fatalf("expected surviving echo 0.5 at sample 40, got %f", rest[40])
	}
}

func TestChainBypass(t *testing.T) {
	c := testChain(t)

	err := c.SetNodes([]Params{{
		ID:   "d1",
		Type: "delay",
		Num:  map[string]float64{"time": 0.01, "feedback": 0, "mix": 1},
	}})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	c.SetBypassed("d1", true)

	block := make([]float64, 40)
	block[0] = 1
	c.Process(block)

	if block[0] != 1 || block[10] != 0 {
		t.Fatalf("bypassed node should pass through: got %f / %f", block[0], block[10])
	}

	c.SetBypassed("d1", false)
	c.SetBypassed("missing", true)
}

func TestChainCommandAppliedAtBlockBoundary(t *testing.T) {
	c := testChain(t)

	err := c.SetNodes([]Params{{
		ID:   "d1",
		Type: "delay",
		Num:  map[string]float64{"time": 0.01, "feedback": 0, "mix": 1},
	}})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	if !c.Commands().Push(Command{NodeID: "d1", Name: "mix", Value: 0}) {
		t.Fatal("push into empty queue failed")
	}

	// Unknown node and unknown parameter are ignored, not errors.
	c.Commands().Push(Command{NodeID: "ghost", Name: "mix", Value: 1})
	c.Commands().Push(Command{NodeID: "d1", Name: "bogus", Value: 1})

	block := make([]float64, 20)
	block[0] = 1
	c.Process(block)

	// mix 0 arrived before the block: pure dry.
	if block[0] != 1 || block[10] != 0 {
		t.Fatalf("command should apply before processing: got %f / %f", block[0], block[10])
	}

	if c.Commands().Len() != 0 {
		t.Fatalf("queue should be drained, %d left", c.Commands().Len())
	}
}

func TestChainReset(t *testing.T) {
	c := testChain(t)

	err := c.SetNodes([]Params{{
		ID:   "d1",
		Type: "delay",
		Num:  map[string]float64{"time": 0.05, "feedback": 0.5, "mix": 1},
	}})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}

	block := make([]float64, 30)
	block[0] = 1
	c.Process(block)

	c.Reset()

	silent := make([]float64, 100)
	c.Process(silent)

	for i, v := range silent {
		if v != 0 {
			t.Fatalf("sample %d after reset: expected silence, got %f", i, v)
		}
	}
}
