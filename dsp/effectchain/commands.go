package effectchain

import "sync/atomic"

// Command carries one live parameter change to a chain node.
type Command struct {
	NodeID string
	Name   string
	Value  float64
}

const defaultQueueCapacity = 256

// CommandQueue is a bounded single-producer single-consumer queue carrying
// parameter changes from a control goroutine to the audio goroutine. Push
// never blocks: when the queue is full the command is dropped and Push
// reports false. The audio side drains the queue at block boundaries, so a
// change never interrupts sample processing mid-block.
//
// Exactly one goroutine may call Push and exactly one may call Drain.
type CommandQueue struct {
	buf  []Command
	mask uint64

	head atomic.Uint64
	tail atomic.Uint64
}

// NewCommandQueue creates a queue with capacity rounded up to a power of
// two; capacity values below one fall back to the default.
func NewCommandQueue(capacity int) *CommandQueue {
	if capacity < 1 {
		capacity = defaultQueueCapacity
	}

	size := 1
	for size < capacity {
		size <<= 1
	}

	return &CommandQueue{
		buf:  make([]Command, size),
		mask: uint64(size - 1),
	}
}

// Push enqueues a command. It reports false when the queue is full; the
// command is dropped, never blocked on.
func (q *CommandQueue) Push(cmd Command) bool {
	head := q.head.Load()
	tail := q.tail.Load()

	if head-tail >= uint64(len(q.buf)) {
		return false
	}

	q.buf[head&q.mask] = cmd
	q.head.Store(head + 1)

	return true
}

// Drain applies every pending command through fn, in push order, and
// returns the number applied.
func (q *CommandQueue) Drain(fn func(Command)) int {
	head := q.head.Load()
	tail := q.tail.Load()

	n := 0
	for ; tail < head; tail++ {
		fn(q.buf[tail&q.mask])
		n++
	}

	q.tail.Store(tail)

	return n
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	return int(q.head.Load() - q.tail.Load())
}
