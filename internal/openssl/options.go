package openssl

import "slices"

// Kind tags the variant held by a Value.
type Kind int

const (
	kindNone Kind = iota
	// KindFlag renders "-name" when true. A false flag renders the bare
	// name after every other option.
	KindFlag
	// KindScalar renders "name value".
	KindScalar
	// KindRepeated renders "-name item" once per item.
	KindRepeated
)

func (k Kind) String() string {
	switch k {
	case KindFlag:
		return "flag"
	case KindScalar:
		return "scalar"
	case KindRepeated:
		return "repeated"
	}
	return "none"
}

// Value is an option value. Construct it with Flag, Scalar or Repeated;
// the zero Value renders nothing.
type Value struct {
	kind   Kind
	flag   bool
	scalar string
	list   []string
}

// Flag returns a boolean option value.
func Flag(on bool) Value {
	return Value{kind: KindFlag, flag: on}
}

// Scalar returns a single-valued option.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Repeated returns an option rendered once per item, in order.
func Repeated(items ...string) Value {
	return Value{kind: KindRepeated, list: slices.Clone(items)}
}

func (v Value) Kind() Kind { return v.kind }

// Enabled reports the state of a KindFlag value.
func (v Value) Enabled() bool { return v.flag }

// Text returns the string of a KindScalar value.
func (v Value) Text() string { return v.scalar }

// Items returns a copy of the items of a KindRepeated value.
func (v Value) Items() []string { return slices.Clone(v.list) }

// Options is an insertion-ordered set of named option values.
// Read methods accept a nil *Options and treat it as empty.
type Options struct {
	names  []string
	values map[string]Value
}

// NewOptions returns an empty option set.
func NewOptions() *Options {
	return &Options{values: make(map[string]Value)}
}

// Set assigns v to name. A name that is already present keeps its
// original position.
func (o *Options) Set(name string, v Value) *Options {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, ok := o.values[name]; !ok {
		o.names = append(o.names, name)
	}
	o.values[name] = v
	return o
}

// Append adds items to the repeated option name, creating it at the end if
// it is absent. A non-repeated value under name is replaced.
func (o *Options) Append(name string, items ...string) *Options {
	cur, ok := o.Get(name)
	if !ok || cur.kind != KindRepeated {
		return o.Set(name, Repeated(items...))
	}
	cur.list = append(slices.Clone(cur.list), items...)
	return o.Set(name, cur)
}

// Get returns the value stored under name.
func (o *Options) Get(name string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	v, ok := o.values[name]
	return v, ok
}

// Len returns the number of options.
func (o *Options) Len() int {
	if o == nil {
		return 0
	}
	return len(o.names)
}

// Names returns option names in insertion order.
func (o *Options) Names() []string {
	if o == nil {
		return nil
	}
	return slices.Clone(o.names)
}

// Each calls fn for every option in insertion order.
func (o *Options) Each(fn func(name string, v Value)) {
	if o == nil {
		return
	}
	for _, name := range o.names {
		fn(name, o.values[name])
	}
}
