// Package jsonval models JSON documents as a closed set of value types so
// that settings can be inspected and merged without reflecting over
// map[string]interface{} trees.
package jsonval

import (
	"bytes"
	"encoding/json"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one of Null, Bool, Number, String, Array or *Object.
type Value interface {
	Kind() Kind
	json.Marshaler
	isValue()
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept as its decimal text so that values survive
// a load/write cycle unchanged.
type Number string

// String is a JSON string.
type String string

// Array is an ordered JSON array.
type Array []Value

// Object is a JSON object that remembers key insertion order.
type Object struct {
	fields *orderedmap.OrderedMap[string, Value]
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Number) Kind() Kind  { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{fields: orderedmap.New[string, Value]()}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return o.fields.Len()
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	return o.fields.Get(key)
}

// Set stores value under key. A new key is appended after the existing
// ones; an existing key keeps its position.
func (o *Object) Set(key string, value Value) {
	if value == nil {
		value = Null{}
	}
	o.fields.Set(key, value)
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	_, ok := o.fields.Delete(key)
	return ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.fields.Len())
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key in insertion order.
func (o *Object) Each(fn func(key string, value Value)) {
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// GetObject returns the nested object stored under key, if any.
func (o *Object) GetObject(key string) (*Object, bool) {
	v, ok := o.fields.Get(key)
	if !ok {
		return nil, false
	}
	obj, ok := v.(*Object)
	return obj, ok
}

// GetArray returns the array stored under key, if any.
func (o *Object) GetArray(key string) (Array, bool) {
	v, ok := o.fields.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.(Array)
	return arr, ok
}

// GetString returns the string stored under key, if any.
func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.fields.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(String)
	return string(s), ok
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case *Object:
		out := NewObject()
		val.Each(func(key string, field Value) {
			out.Set(key, Clone(field))
		})
		return out
	case Array:
		out := make(Array, len(val))
		for i, item := range val {
			out[i] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	return Clone(o).(*Object)
}

// StringSlice converts ss into an array of strings.
func StringSlice(ss []string) Array {
	out := make(Array, len(ss))
	for i, s := range ss {
		out[i] = String(s)
	}
	return out
}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (b Bool) MarshalJSON() ([]byte, error) {
	return strconv.AppendBool(nil, bool(b)), nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("0"), nil
	}
	return []byte(n), nil
}

func (s String) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(s)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (a Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if item == nil {
			item = Null{}
		}
		b, err := item.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := o.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := String(pair.Key).MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		b, err := pair.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
