package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Parameter errors.
var (
	// ErrMissingParam is returned when a parameter key is absent.
	ErrMissingParam = errors.New("filter: missing parameter")

	// ErrParamType is returned when a parameter holds another type.
	ErrParamType = errors.New("filter: parameter type mismatch")
)

// ParamType is the scalar type of a parameter value.
type ParamType uint8

const (
	// TypeBool is a boolean parameter.
	TypeBool ParamType = iota + 1

	// TypeInt is an integer parameter.
	TypeInt

	// TypeFloat is a float64 parameter.
	TypeFloat

	// TypeString is a string parameter.
	TypeString
)

// String returns the type tag used in JSON.
func (t ParamType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

func parseParamType(s string) (ParamType, bool) {
	for _, t := range []ParamType{TypeBool, TypeInt, TypeFloat, TypeString} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Param is one named scalar value.
type Param struct {
	Key   string
	Type  ParamType
	Bool  bool
	Int   int
	Float float64
	Str   string
}

// Params is an ordered set of named scalar values.
// Setting an existing key replaces its value in place.
// The zero value is empty and ready to use.
type Params struct {
	list []Param
}

func (p *Params) set(v Param) {
	for i := range p.list {
		if p.list[i].Key == v.Key {
			p.list[i] = v
			return
		}
	}
	p.list = append(p.list, v)
}

// SetBool stores a boolean value.
func (p *Params) SetBool(key string, v bool) {
	p.set(Param{Key: key, Type: TypeBool, Bool: v})
}

// SetInt stores an integer value.
func (p *Params) SetInt(key string, v int) {
	p.set(Param{Key: key, Type: TypeInt, Int: v})
}

// SetFloat stores a float64 value.
func (p *Params) SetFloat(key string, v float64) {
	p.set(Param{Key: key, Type: TypeFloat, Float: v})
}

// SetString stores a string value.
func (p *Params) SetString(key string, v string) {
	p.set(Param{Key: key, Type: TypeString, Str: v})
}

// Len returns the number of parameters.
func (p Params) Len() int { return len(p.list) }

// Keys returns the parameter keys in insertion order.
func (p Params) Keys() []string {
	keys := make([]string, len(p.list))
	for i, v := range p.list {
		keys[i] = v.Key
	}
	return keys
}

// Lookup returns the parameter stored under key.
func (p Params) Lookup(key string) (Param, bool) {
	for _, v := range p.list {
		if v.Key == key {
			return v, true
		}
	}
	return Param{}, false
}

func (p Params) typed(key string, t ParamType) (Param, error) {
	v, ok := p.Lookup(key)
	if !ok {
		return Param{}, fmt.Errorf("%w: %q", ErrMissingParam, key)
	}
	if v.Type != t {
		return Param{}, fmt.Errorf("%w: %q is %v, want %v", ErrParamType, key, v.Type, t)
	}
	return v, nil
}

// GetBool returns the boolean stored under key.
func (p Params) GetBool(key string) (bool, error) {
	v, err := p.typed(key, TypeBool)
	return v.Bool, err
}

// GetInt returns the integer stored under key.
func (p Params) GetInt(key string) (int, error) {
	v, err := p.typed(key, TypeInt)
	return v.Int, err
}

// GetFloat returns the float64 stored under key.
func (p Params) GetFloat(key string) (float64, error) {
	v, err := p.typed(key, TypeFloat)
	return v.Float, err
}

// GetString returns the string stored under key.
func (p Params) GetString(key string) (string, error) {
	v, err := p.typed(key, TypeString)
	return v.Str, err
}

// jsonParam is the wire form of a Param. Floats travel as strings in
// shortest round-trip form so NaN and infinities survive too.
type jsonParam struct {
	Key   string          `json:"key"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the parameters as an ordered array of typed entries.
func (p Params) MarshalJSON() ([]byte, error) {
	out := make([]jsonParam, len(p.list))
	for i, v := range p.list {
		var raw any
		switch v.Type {
		case TypeBool:
			raw = v.Bool
		case TypeInt:
			raw = v.Int
		case TypeFloat:
			raw = strconv.FormatFloat(v.Float, 'g', -1, 64)
		case TypeString:
			raw = v.Str
		default:
			return nil, fmt.Errorf("%w: %q has no type", ErrParamType, v.Key)
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		out[i] = jsonParam{Key: v.Key, Type: v.Type.String(), Value: b}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes parameters written by MarshalJSON.
func (p *Params) UnmarshalJSON(data []byte) error {
	var in []jsonParam
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	p.list = p.list[:0]
	for _, e := range in {
		t, ok := parseParamType(e.Type)
		if !ok {
			return fmt.Errorf("%w: %q has type %q", ErrParamType, e.Key, e.Type)
		}
		v := Param{Key: e.Key, Type: t}
		var err error
		switch t {
		case TypeBool:
			err = json.Unmarshal(e.Value, &v.Bool)
		case TypeInt:
			err = json.Unmarshal(e.Value, &v.Int)
		case TypeFloat:
			var s string
			if err = json.Unmarshal(e.Value, &s); err == nil {
				v.Float, err = strconv.ParseFloat(s, 64)
			}
		case TypeString:
			err = json.Unmarshal(e.Value, &v.Str)
		}
		if err != nil {
			return fmt.Errorf("filter: parameter %q: %w", e.Key, err)
		}
		p.set(v)
	}
	return nil
}

// Action records a filter invocation: which filter, which settings
// version, and a snapshot of every setting.
type Action struct {
	Identifier string `json:"id"`
	Version    int    `json:"version"`
	Params     Params `json:"params"`
}

// newAction starts an action record for kind.
func newAction(kind Kind) Action {
	return Action{Identifier: kind.Identifier(), Version: kind.Version()}
}

// check verifies that a belongs to kind and is not from a newer version.
func (a Action) check(kind Kind) error {
	if a.Identifier != kind.Identifier() {
		return fmt.Errorf("%w: got %q, want %q", ErrActionMismatch, a.Identifier, kind.Identifier())
	}
	if a.Version > kind.Version() {
		return fmt.Errorf("%w: %s version %d is newer than %d",
			ErrActionMismatch, a.Identifier, a.Version, kind.Version())
	}
	return nil
}

// paramReader collects the first error of a sequence of typed reads.
type paramReader struct {
	p   Params
	err error
}

func (r *paramReader) boolean(key string) bool {
	v, err := r.p.GetBool(key)
	r.keep(err)
	return v
}

func (r *paramReader) integer(key string) int {
	v, err := r.p.GetInt(key)
	r.keep(err)
	return v
}

func (r *paramReader) number(key string) float64 {
	v, err := r.p.GetFloat(key)
	r.keep(err)
	return v
}

func (r *paramReader) text(key string) string {
	v, err := r.p.GetString(key)
	r.keep(err)
	return v
}

func (r *paramReader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}
