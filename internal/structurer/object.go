package structurer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"alfredoptarigan/resume-structurer/internal/models"
)

// Object is a JSON object that remembers key order. Payload values are one of
// string, json.Number, bool, nil, []any or *Object.
type Object struct {
	keys []string
	vals map[string]any
	// repeats lists keys the source object stated more than once.
	repeats []repeat
}

type repeat struct {
	key string
	// spilled is the key the later value was moved to, empty when merged.
	spilled string
}

func NewObject() *Object {
	return &Object{vals: make(map[string]any)}
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[key]
	return v, ok
}

// Set replaces the value of an existing key in place or appends a new key.
func (o *Object) Set(key string, v any) {
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// SetIfAbsent reports whether key was added.
func (o *Object) SetIfAbsent(key string, v any) bool {
	if _, ok := o.vals[key]; ok {
		return false
	}
	o.Set(key, v)
	return true
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// toPlain converts payload values into map[string]any trees so they can be
// handed to code that does not know about Object.
func toPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, t.Len())
		for _, k := range t.keys {
			m[k] = toPlain(t.vals[k])
		}
		return m
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = toPlain(item)
		}
		return out
	default:
		return v
	}
}

var errNotObject = errors.New("payload is not a JSON object")

// decodeObject parses data as exactly one JSON object.
func decodeObject(data string) (*Object, error) {
	v, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(*Object)
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// decodeDocument parses data as exactly one JSON value.
func decodeDocument(data string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := NewObject()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("invalid object key %v", kt)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.add(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		list := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

// add sets key, merging with an earlier value when the key repeats. Lists
// are concatenated and objects merged key by key. A differing value that
// cannot be merged is kept under "key (2)".
func (o *Object) add(key string, v any) {
	prev, ok := o.Get(key)
	if !ok {
		o.Set(key, v)
		return
	}

	r := repeat{key: key}
	switch p := prev.(type) {
	case []any:
		if l, isList := v.([]any); isList {
			o.Set(key, append(p, l...))
		} else {
			o.Set(key, append(p, v))
		}
	case *Object:
		if next, isObj := v.(*Object); isObj {
			for _, k := range next.Keys() {
				nv, _ := next.Get(k)
				p.add(k, nv)
			}
			break
		}
		r.spilled = o.spill(key, v)
	default:
		if !reflect.DeepEqual(prev, v) {
			r.spilled = o.spill(key, v)
		}
	}
	o.repeats = append(o.repeats, r)
}

func (o *Object) spill(key string, v any) string {
	for n := 2; ; n++ {
		k := fmt.Sprintf("%s (%d)", key, n)
		if _, taken := o.Get(k); !taken {
			o.Set(k, v)
			return k
		}
	}
}

// repeatedKeys reports every repeated key in v as a warning keyed by its
// path, descending into nested objects and lists.
func repeatedKeys(v any, path string) []models.Warning {
	var out []models.Warning
	switch t := v.(type) {
	case *Object:
		for _, r := range t.repeats {
			msg := "repeated key, values merged"
			if r.spilled != "" {
				msg = fmt.Sprintf("repeated key, later value kept as %q", r.spilled)
			}
			out = append(out, models.Warning{Field: joinPath(path, r.key), Message: msg})
		}
		for _, k := range t.keys {
			out = append(out, repeatedKeys(t.vals[k], joinPath(path, k))...)
		}
	case []any:
		for i, item := range t {
			out = append(out, repeatedKeys(item, fmt.Sprintf("%s[%d]", path, i))...)
		}
	}
	return out
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// scalarString renders a scalar payload value as trimmed text.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}
