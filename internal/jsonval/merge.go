package jsonval

import (
	"strconv"
)

// Equal reports whether a and b hold the same JSON value. Object key order
// is ignored and numbers compare by value.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case String:
		return av == b.(String)
	case Number:
		return numberEqual(av, b.(Number))
	case Array:
		bv := b.(Array)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case *Object:
		bv := b.(*Object)
		if av.Len() != bv.Len() {
			return false
		}
		equal := true
		av.Each(func(key string, value Value) {
			if !equal {
				return
			}
			other, ok := bv.Get(key)
			equal = ok && Equal(value, other)
		})
		return equal
	default:
		panic("jsonval: unknown value type")
	}
}

func numberEqual(a, b Number) bool {
	if a == b {
		return true
	}
	af, errA := strconv.ParseFloat(string(a), 64)
	bf, errB := strconv.ParseFloat(string(b), 64)
	return errA == nil && errB == nil && af == bf
}

// Merge combines source into target and returns the result without
// modifying either input. Objects present on both sides merge key by key,
// arrays present on both sides become their union in first-seen order with
// structurally equal items removed, and any other source value replaces the
// target value.
func Merge(target, source Value) Value {
	switch src := source.(type) {
	case *Object:
		dst, ok := target.(*Object)
		if !ok {
			return Clone(src)
		}
		out := dst.Clone()
		src.Each(func(key string, value Value) {
			existing, ok := out.Get(key)
			if !ok {
				out.Set(key, Clone(value))
				return
			}
			out.Set(key, Merge(existing, value))
		})
		return out
	case Array:
		dst, ok := target.(Array)
		if !ok {
			return Clone(src)
		}
		return Union(dst, src)
	case nil:
		return Clone(target)
	default:
		return source
	}
}

// MergeObject is Merge restricted to objects.
func MergeObject(target, source *Object) *Object {
	return Merge(target, source).(*Object)
}

// Union returns the items of a followed by the items of b, skipping any item
// equal to one already taken.
func Union(a, b Array) Array {
	out := make(Array, 0, len(a)+len(b))
	add := func(item Value) {
		for _, seen := range out {
			if Equal(seen, item) {
				return
			}
		}
		out = append(out, Clone(item))
	}
	for _, item := range a {
		add(item)
	}
	for _, item := range b {
		add(item)
	}
	return out
}
