package reactive

// Source is something an effect can observe.
type Source[T any] interface {
	Read(t *Tracker) T
}

// Value is the untyped form of a node, used for tuple sources.
type Value interface {
	ReadAny(t *Tracker) any
}

type validator interface {
	valid() bool
}

// Func adapts a getter function to a Source.
type Func[T any] func(*Tracker) T

// Read implements Source.
func (f Func[T]) Read(t *Tracker) T { return f(t) }

func (f Func[T]) valid() bool { return f != nil }

type tuple []Value

// All returns a source whose value is the slice of the current values of
// vals. An observer of it fires once per write to any member.
func All(vals ...Value) Source[[]any] {
	return tuple(vals)
}

func (tp tuple) Read(t *Tracker) []any {
	out := make([]any, len(tp))
	for i, v := range tp {
		out[i] = v.ReadAny(t)
	}
	return out
}

func (tp tuple) valid() bool {
	for _, v := range tp {
		if !validValue(v) {
			return false
		}
	}
	return true
}

func validValue(v any) bool {
	if v == nil {
		return false
	}
	if vd, ok := v.(validator); ok {
		return vd.valid()
	}
	return true
}

// Disposer stops an observation. Calling it more than once is harmless.
type Disposer func()

type observeConfig struct {
	immediate bool
}

// ObserveOption configures Observe.
type ObserveOption func(*observeConfig)

// Immediate makes the callback fire once, synchronously, at creation.
func Immediate() ObserveOption {
	return func(c *observeConfig) { c.immediate = true }
}

// Observe calls callback with the latest value of src every time one of the
// nodes src read changes, until the returned Disposer is called.
func Observe[T any](g *Graph, src Source[T], callback func(T), opts ...ObserveOption) (Disposer, error) {
	if g == nil || callback == nil || !validValue(src) {
		return nil, ErrInvalidSource
	}
	var cfg observeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	eff := NewEffect(g, src.Read, callback)
	v := eff.Start()
	if cfg.immediate && eff.Active() {
		callback(v)
	}
	return eff.Stop, nil
}

// Watch is the dynamic form of Observe. source may be a Value (a cell or a
// derived), a []Value, or a func(*Tracker) any.
func Watch(g *Graph, source any, callback func(any), opts ...ObserveOption) (Disposer, error) {
	var src Source[any]
	switch s := source.(type) {
	case []Value:
		if !tuple(s).valid() {
			return nil, ErrInvalidSource
		}
		src = Func[any](func(t *Tracker) any { return tuple(s).Read(t) })
	case Value:
		if !validValue(s) {
			return nil, ErrInvalidSource
		}
		src = Func[any](s.ReadAny)
	case func(*Tracker) any:
		if s == nil {
			return nil, ErrInvalidSource
		}
		src = Func[any](s)
	case Source[any]:
		src = s
	default:
		return nil, ErrInvalidSource
	}
	return Observe(g, src, callback, opts...)
}
