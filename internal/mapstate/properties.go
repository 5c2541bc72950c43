// Lowisko - Map-Centric Fishing Log and Lake Analytics
// Copyright 2026 Lowisko Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lowisko/lowisko

package mapstate

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind identifies which member of the property value sum type is set.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// Value is a closed sum over the JSON scalar types plus nested objects.
// Map features carry arbitrary property bags; representing them as a closed
// sum (instead of interface{}) keeps the lake-id extractor total and the
// snapshot codec strict.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  Properties
}

// Properties is a property bag attached to a clicked map feature.
type Properties map[string]Value

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric Value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Null returns the null Value.
func Null() Value { return Value{kind: KindNull} }

// Object returns a nested-object Value.
func Object(p Properties) Value { return Value{kind: KindObject, obj: p} }

// Kind reports which member of the sum is set.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null member.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsString returns the string member, if set.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the numeric member, if set.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsBool returns the boolean member, if set.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsObject returns the nested-object member, if set.
func (v Value) AsObject() (Properties, bool) { return v.obj, v.kind == KindObject }

// Coerce returns the value's string representation: strings verbatim,
// numbers and booleans stringified, nested objects as their JSON encoding.
// The null value coerces to the empty string.
func (v Value) Coerce() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindObject:
		data, err := json.Marshal(v.obj)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

// MarshalJSON encodes the value as its native JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindObject:
		return json.Marshal(v.obj)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes any JSON value inside the closed sum. Arrays are
// outside the sum and fail decoding.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := valueFromAny(raw)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

func valueFromAny(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(t), nil
	case float64:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case map[string]interface{}:
		obj := make(Properties, len(t))
		for key, member := range t {
			inner, err := valueFromAny(member)
			if err != nil {
				return Value{}, err
			}
			obj[key] = inner
		}
		return Object(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported property value type %T", raw)
	}
}

// Clone returns a deep copy of the property bag. A nil bag clones to nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for key, value := range p {
		if obj, ok := value.AsObject(); ok {
			out[key] = Object(obj.Clone())
		} else {
			out[key] = value
		}
	}
	return out
}

// ExtractLakeID derives the selected lake identity from a property bag.
// Returns nil when the bag is nil, lacks a "name" key, or that key is null;
// otherwise the name coerced to its string representation.
func ExtractLakeID(props Properties) *string {
	if props == nil {
		return nil
	}
	name, ok := props["name"]
	if !ok || name.IsNull() {
		return nil
	}
	id := name.Coerce()
	return &id
}
