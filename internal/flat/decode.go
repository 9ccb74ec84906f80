package flat

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/shape"
)

// Decode rebuilds the value described by d from the root of in.
func Decode(in *flatmap.Map, d shape.Descriptor) (reflect.Value, error) {
	return DecodeAt(in, "", d)
}

// DecodeAt rebuilds the value described by d from the keys below tag.
func DecodeAt(in *flatmap.Map, tag string, d shape.Descriptor) (reflect.Value, error) {
	dec := decoder{in: in, paths: flatmap.NewPathIndex(in)}
	return dec.decode(tag, d)
}

// decoder is the context threaded through one Decode call.
type decoder struct {
	in    *flatmap.Map
	paths flatmap.PathIndex
}

// cursor walks the elements of one record or collection, yielding only those
// present in the input.
type cursor struct {
	desc shape.Descriptor
	tag  string
	next int
	size int
	// stopAtHole ends the walk at the first absent element.
	stopAtHole bool
	done       bool
}

func (c *cursor) advance(paths flatmap.PathIndex) (int, bool) {
	for !c.done && c.next < c.size {
		i := c.next
		c.next++
		if paths.Covers(flatmap.Nested(c.tag, c.desc.TagFor(i))) {
			return i, true
		}
		if c.stopAtHole {
			c.done = true
		}
	}
	return 0, false
}

func (d *decoder) decode(tag string, desc shape.Descriptor) (reflect.Value, error) {
	switch desc.Kind() {
	case shape.Primitive:
		return d.decodeLeaf(tag, desc.(shape.Leaf))
	case shape.Enum:
		return d.decodeEnum(tag, desc.(shape.EnumShape))
	case shape.Record:
		return d.decodeRecord(tag, desc.(shape.RecordShape))
	case shape.Collection:
		return d.decodeCollection(tag, desc.(shape.CollectionShape))
	case shape.Polymorphic:
		return d.decodePolymorphic(tag, desc.(shape.PolymorphicShape))
	case shape.Nullable:
		ns := desc.(shape.NullableShape)
		if !d.paths.Covers(tag) {
			return ns.Null(), nil
		}
		elem, err := ns.Elem()
		if err != nil {
			return reflect.Value{}, wrapShapeErr(tag, err)
		}
		v, err := d.decode(tag, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		return ns.Wrap(v), nil
	case shape.Dynamic:
		ds := desc.(shape.DynamicShape)
		out := reflect.New(ds.Type()).Elem()
		if !d.paths.Covers(tag) {
			return out, nil
		}
		tree, err := d.decodeTree(tag)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Set(reflect.ValueOf(tree))
		return out, nil
	}
	return reflect.Value{}, pathErr(tag, shape.ErrUnsupportedType, fmt.Errorf("descriptor kind %s", desc.Kind()))
}

func (d *decoder) text(tag string) (string, error) {
	text, ok := d.in.Get(tag)
	if !ok {
		return "", pathErr(tag, ErrMissingRequiredKey, nil)
	}
	return text, nil
}

func (d *decoder) decodeLeaf(tag string, leaf shape.Leaf) (reflect.Value, error) {
	text, err := d.text(tag)
	if err != nil {
		return reflect.Value{}, err
	}
	v, err := leaf.Parse(text)
	if err != nil {
		return reflect.Value{}, pathErr(tag, ErrTypeMismatch, err)
	}
	return v, nil
}

func (d *decoder) decodeEnum(tag string, es shape.EnumShape) (reflect.Value, error) {
	text, err := d.text(tag)
	if err != nil {
		return reflect.Value{}, err
	}
	v, ok := es.Element(text)
	if !ok {
		return reflect.Value{}, pathErr(tag, ErrUnknownEnumConstant, fmt.Errorf("%q is not an element of %s", text, es.Name()))
	}
	return v, nil
}

func (d *decoder) decodeRecord(tag string, rs shape.RecordShape) (reflect.Value, error) {
	rec := rs.New()
	n := rs.ElementCount()
	seen := make([]bool, n)
	c := cursor{desc: rs, tag: tag, size: n}
	for i, ok := c.advance(d.paths); ok; i, ok = c.advance(d.paths) {
		child := flatmap.Nested(tag, rs.TagFor(i))
		fd, err := rs.Element(i)
		if err != nil {
			return reflect.Value{}, wrapShapeErr(child, err)
		}
		v, err := d.decode(child, fd)
		if err != nil {
			return reflect.Value{}, err
		}
		rs.SetField(rec, i, v)
		seen[i] = true
	}
	for i := range n {
		if !seen[i] && rs.Options(i).Required {
			return reflect.Value{}, pathErr(flatmap.Nested(tag, rs.TagFor(i)), ErrMissingRequiredKey, nil)
		}
	}
	return rec, nil
}

func (d *decoder) decodeCollection(tag string, cs shape.CollectionShape) (reflect.Value, error) {
	var elems []reflect.Value
	c := cursor{desc: cs, tag: tag, size: cs.ElementCount(), stopAtHole: true}
	for i, ok := c.advance(d.paths); ok; i, ok = c.advance(d.paths) {
		child := flatmap.Nested(tag, cs.TagFor(i))
		ed, err := cs.Element(i)
		if err != nil {
			return reflect.Value{}, wrapShapeErr(child, err)
		}
		v, err := d.decode(child, ed)
		if err != nil {
			return reflect.Value{}, err
		}
		elems = append(elems, v)
	}
	if cs.IsMap() && len(elems)%2 != 0 {
		return reflect.Value{}, pathErr(flatmap.Nested(tag, cs.TagFor(len(elems))), ErrMissingRequiredKey, errors.New("map key without value"))
	}
	v, err := cs.Build(elems)
	if err != nil {
		return reflect.Value{}, pathErr(tag, ErrTypeMismatch, err)
	}
	return v, nil
}

func (d *decoder) decodePolymorphic(tag string, ps shape.PolymorphicShape) (reflect.Value, error) {
	typeTag := flatmap.Nested(tag, shape.DiscriminatorTag)
	name, err := d.text(typeTag)
	if err != nil {
		return reflect.Value{}, err
	}
	concrete, err := ps.Resolve(name)
	if err != nil {
		if errors.Is(err, shape.ErrUnregistered) {
			return reflect.Value{}, pathErr(typeTag, ErrUnknownDiscriminator, err)
		}
		return reflect.Value{}, wrapShapeErr(tag, err)
	}
	v, err := d.decode(tag, concrete)
	if err != nil {
		return reflect.Value{}, err
	}
	return ps.Wrap(v), nil
}

// decodeTree rebuilds a schemaless value: a tag with children becomes a
// []any when the children are exactly 0..n-1 and a map[string]any otherwise;
// a tag without children is its string value.
func (d *decoder) decodeTree(tag string) (any, error) {
	children := flatmap.Children(d.in, tag)
	text, hasText := d.in.Get(tag)
	if len(children) == 0 {
		if !hasText {
			return nil, pathErr(tag, ErrMissingRequiredKey, nil)
		}
		return text, nil
	}
	if hasText {
		return nil, pathErr(tag, ErrTypeMismatch, errors.New("tag holds both a value and nested keys"))
	}
	if isSequence(children) {
		out := make([]any, len(children))
		for i := range out {
			v, err := d.decodeTree(flatmap.Nested(tag, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	out := make(map[string]any, len(children))
	for _, seg := range children {
		v, err := d.decodeTree(flatmap.Nested(tag, seg))
		if err != nil {
			return nil, err
		}
		out[seg] = v
	}
	return out, nil
}

func isSequence(segments []string) bool {
	present := make([]bool, len(segments))
	for _, seg := range segments {
		n, err := strconv.Atoi(seg)
		if err != nil || n < 0 || n >= len(segments) || strconv.Itoa(n) != seg || present[n] {
			return false
		}
		present[n] = true
	}
	return true
}
