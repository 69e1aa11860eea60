package buffer

import "testing"

func TestBufferResize(t *testing.T) {
	b := New(4)
	b.Samples()[3] = 1

	b.Resize(2)
	if b.Len() != 2 {
		t.Fatalf("expected length 2, got %d", b.Len())
	}

	// Growing back within capacity must re-zero the exposed tail.
	b.Resize(4)
	if b.Samples()[3] != 0 {
		t.Fatalf("stale data survived resize: %f", b.Samples()[3])
	}

	b.Resize(-1)
	if b.Len() != 0 {
		t.Fatalf("negative resize should clamp to 0, got %d", b.Len())
	}
}

func TestBufferCopyFrom(t *testing.T) {
	b := New(3)

	if n := b.CopyFrom([]float64{1, 2, 3, 4}); n != 3 {
		t.Fatalf("expected 3 copied, got %d", n)
	}

	if got := b.Samples()[2]; got != 3 {
		t.Fatalf("expected 3 at index 2, got %f", got)
	}
}

func TestFromSliceShares(t *testing.T) {
	s := []float64{1, 2}
	b := FromSlice(s)

	b.Samples()[0] = 9
	if s[0] != 9 {
		t.Fatal("FromSlice should share the backing array")
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool()

	b := p.Get(8)
	if b.Len() != 8 {
		t.Fatalf("expected length 8, got %d", b.Len())
	}

	b.Samples()[0] = 5
	p.Put(b)

	c := p.Get(8)
	if c.Samples()[0] != 0 {
		t.Fatal("pooled buffer should come back zeroed")
	}

	p.Put(nil)
}
