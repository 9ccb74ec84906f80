package shape

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Registry resolves Go types to descriptors and holds the enum tables and the
// bidirectional discriminator mapping of polymorphic types. It is safe for
// concurrent use.
type Registry struct {
	mu       sync.RWMutex
	variants map[reflect.Type]*variantSet
	enums    map[reflect.Type]*enumShape
	cache    sync.Map // reflect.Type -> Descriptor
}

type variantSet struct {
	byName map[string]reflect.Type
	byType map[reflect.Type]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		variants: make(map[reflect.Type]*variantSet),
		enums:    make(map[reflect.Type]*enumShape),
	}
}

// RegisterVariant maps discriminator name to the dynamic type of concrete for
// values of interface type I.
func RegisterVariant[I any](r *Registry, name string, concrete I) error {
	base := reflect.TypeFor[I]()
	if base.Kind() != reflect.Interface {
		return fmt.Errorf("variant base %s: %w: not an interface", base, ErrUnsupportedType)
	}
	ct := reflect.TypeOf(any(concrete))
	if ct == nil {
		return fmt.Errorf("variant %q of %s: nil concrete value", name, base)
	}
	return r.registerVariant(base, name, ct)
}

func (r *Registry) registerVariant(base reflect.Type, name string, ct reflect.Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.variants[base]
	if !ok {
		set = &variantSet{
			byName: make(map[string]reflect.Type),
			byType: make(map[reflect.Type]string),
		}
		r.variants[base] = set
	}
	if prev, dup := set.byName[name]; dup {
		return fmt.Errorf("variant %q of %s: %w for %s", name, base, ErrDuplicate, prev)
	}
	if prev, dup := set.byType[ct]; dup {
		return fmt.Errorf("variant type %s of %s: %w as %q", ct, base, ErrDuplicate, prev)
	}
	set.byName[name] = ct
	set.byType[ct] = name
	r.cache.Clear()
	return nil
}

// RegisterEnum declares values as the complete element list of their type,
// named by String, in declaration order.
func RegisterEnum[T interface {
	comparable
	fmt.Stringer
}](r *Registry, values ...T) error {
	t := reflect.TypeFor[T]()
	e := &enumShape{
		typ:     t,
		byName:  make(map[string]reflect.Value, len(values)),
		byValue: make(map[any]string, len(values)),
	}
	for _, v := range values {
		name := v.String()
		if _, dup := e.byName[name]; dup {
			return fmt.Errorf("enum %s element %q: %w", t, name, ErrDuplicate)
		}
		e.names = append(e.names, name)
		e.byName[name] = reflect.ValueOf(v)
		e.byValue[v] = name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.enums[t]; dup {
		return fmt.Errorf("enum %s: %w", t, ErrDuplicate)
	}
	r.enums[t] = e
	r.cache.Clear()
	return nil
}

// Discriminators lists the names registered for base, sorted.
func (r *Registry) Discriminators(base reflect.Type) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.variants[base]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(set.byName))
	for name := range set.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) discriminator(base, concrete reflect.Type) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.variants[base]
	if !ok {
		return "", false
	}
	name, ok := set.byType[concrete]
	return name, ok
}

func (r *Registry) variantType(base reflect.Type, name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.variants[base]
	if !ok {
		return nil, false
	}
	t, ok := set.byName[name]
	return t, ok
}

func (r *Registry) hasVariants(base reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.variants[base]
	return ok
}

func (r *Registry) enum(t reflect.Type) (*enumShape, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[t]
	return e, ok
}

// For returns the descriptor of T.
func For[T any](r *Registry) (Descriptor, error) {
	return r.Of(reflect.TypeFor[T]())
}

// Of returns the descriptor of t, building and caching it on first use.
func (r *Registry) Of(t reflect.Type) (Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("nil type: %w", ErrUnsupportedType)
	}
	if d, ok := r.cache.Load(t); ok {
		return d.(Descriptor), nil
	}
	d, err := r.build(t)
	if err != nil {
		return nil, err
	}
	actual, _ := r.cache.LoadOrStore(t, d)
	return actual.(Descriptor), nil
}

// lazy resolves a child descriptor on first use so recursive types terminate.
type lazy struct {
	reg  *Registry
	typ  reflect.Type
	once sync.Once
	d    Descriptor
	err  error
}

func newLazy(reg *Registry, t reflect.Type) *lazy {
	return &lazy{reg: reg, typ: t}
}

func (l *lazy) get() (Descriptor, error) {
	l.once.Do(func() {
		l.d, l.err = l.reg.Of(l.typ)
	})
	return l.d, l.err
}
