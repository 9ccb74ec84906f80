package shape

import (
	"fmt"
	"reflect"
)

// DiscriminatorTag is the segment of the sibling key holding the variant name.
const DiscriminatorTag = "type"

type polyShape struct {
	reg  *Registry
	base reflect.Type
}

func (p *polyShape) Name() string      { return p.base.String() }
func (p *polyShape) Kind() Kind        { return Polymorphic }
func (p *polyShape) ElementCount() int { return 1 }
func (p *polyShape) TagFor(int) string { return DiscriminatorTag }

func (p *polyShape) Variant(v reflect.Value) (string, Descriptor, error) {
	if v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return "", nil, fmt.Errorf("nil %s: %w", p.base, ErrUnregistered)
	}
	name, ok := p.reg.discriminator(p.base, v.Type())
	if !ok {
		return "", nil, fmt.Errorf("%s as %s: %w", v.Type(), p.base, ErrUnregistered)
	}
	d, err := p.reg.Of(v.Type())
	if err != nil {
		return "", nil, err
	}
	return name, d, nil
}

func (p *polyShape) Resolve(discriminator string) (Descriptor, error) {
	t, ok := p.reg.variantType(p.base, discriminator)
	if !ok {
		return nil, fmt.Errorf("%q for %s: %w", discriminator, p.base, ErrUnregistered)
	}
	return p.reg.Of(t)
}

func (p *polyShape) Wrap(concrete reflect.Value) reflect.Value {
	out := reflect.New(p.base).Elem()
	out.Set(concrete)
	return out
}
