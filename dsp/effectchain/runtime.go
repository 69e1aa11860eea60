package effectchain

// Runtime is the per-node processing and configuration contract.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(block []float64)
	Reset()
}

// ParamSetter is an optional interface for runtimes that accept live
// single-parameter updates from the command queue.
type ParamSetter interface {
	Set(name string, value float64)
}
