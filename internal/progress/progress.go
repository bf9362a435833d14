package progress

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

// Progress is the in-memory form of a student's answers for one activity. The set of
// variants is closed: None, *StringMap, *IntMap and *StringSet.
type Progress interface {
	Shape() Shape
	Len() int
	isProgress()
}

// None means there is nothing to restore; players treat it as a fresh start.
type None struct{}

func (None) Shape() Shape { return ShapeNone }
func (None) Len() int     { return 0 }
func (None) isProgress()  {}

func (None) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsNone reports whether p carries no progress at all.
func IsNone(p Progress) bool {
	if p == nil {
		return true
	}
	_, ok := p.(None)
	return ok
}

// ordered is a map that remembers first-insertion order of its keys.
type ordered[K comparable, V any] struct {
	keys []K
	vals map[K]V
}

func (o *ordered[K, V]) set(k K, v V) {
	if o.vals == nil {
		o.vals = make(map[K]V)
	}
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *ordered[K, V]) get(k K) (V, bool) {
	v, ok := o.vals[k]
	return v, ok
}

func (o *ordered[K, V]) remove(k K) bool {
	if _, ok := o.vals[k]; !ok {
		return false
	}
	delete(o.vals, k)
	if i := slices.Index(o.keys, k); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
	return true
}

func (o *ordered[K, V]) len() int { return len(o.keys) }

func marshalOrdered[K comparable, V any](o *ordered[K, V], keyText func(K) string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(keyText(k))
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(o.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// StringMap holds answers keyed by drop-zone or item id, e.g. drag-and-drop and matching.
type StringMap struct{ m ordered[string, string] }

func NewStringMap() *StringMap { return &StringMap{} }

func (*StringMap) Shape() Shape { return ShapeStringMap }
func (*StringMap) isProgress()  {}

func (s *StringMap) Len() int                      { return s.m.len() }
func (s *StringMap) Set(key, value string)         { s.m.set(key, value) }
func (s *StringMap) Get(key string) (string, bool) { return s.m.get(key) }
func (s *StringMap) Delete(key string) bool        { return s.m.remove(key) }

// Keys returns the keys in insertion order.
func (s *StringMap) Keys() []string { return slices.Clone(s.m.keys) }

func (s *StringMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(&s.m, func(k string) string { return k })
}

// IntMap holds answers keyed by item index, e.g. which option was circled per row.
type IntMap struct{ m ordered[int, int] }

func NewIntMap() *IntMap { return &IntMap{} }

func (*IntMap) Shape() Shape { return ShapeIntMap }
func (*IntMap) isProgress()  {}

func (s *IntMap) Len() int                { return s.m.len() }
func (s *IntMap) Set(key, value int)      { s.m.set(key, value) }
func (s *IntMap) Get(key int) (int, bool) { return s.m.get(key) }
func (s *IntMap) Delete(key int) bool     { return s.m.remove(key) }
func (s *IntMap) Keys() []int             { return slices.Clone(s.m.keys) }

// MarshalJSON writes keys as decimal strings, the only key type JSON objects allow.
func (s *IntMap) MarshalJSON() ([]byte, error) {
	return marshalOrdered(&s.m, strconv.Itoa)
}

// StringSet holds the words found so far in a word-search puzzle.
type StringSet struct{ m ordered[string, struct{}] }

func NewStringSet() *StringSet { return &StringSet{} }

func (*StringSet) Shape() Shape { return ShapeStringSet }
func (*StringSet) isProgress()  {}

func (s *StringSet) Len() int { return s.m.len() }

// Add reports whether word was not already present.
func (s *StringSet) Add(word string) bool {
	if _, ok := s.m.get(word); ok {
		return false
	}
	s.m.set(word, struct{}{})
	return true
}

func (s *StringSet) Has(word string) bool {
	_, ok := s.m.get(word)
	return ok
}

func (s *StringSet) Remove(word string) bool { return s.m.remove(word) }

// Words returns the members in insertion order.
func (s *StringSet) Words() []string { return slices.Clone(s.m.keys) }

func (s *StringSet) MarshalJSON() ([]byte, error) {
	words := s.m.keys
	if words == nil {
		words = []string{}
	}
	return json.Marshal(struct {
		Words []string `json:"words"`
	}{Words: words})
}

// Empty returns a fresh structure of the shape t restores into, or None for unknown tags.
func Empty(t ActivityType) Progress {
	switch t.Shape() {
	case ShapeStringMap:
		return NewStringMap()
	case ShapeIntMap:
		return NewIntMap()
	case ShapeStringSet:
		return NewStringSet()
	default:
		return None{}
	}
}

// Encode renders p in the wire form that TryRestore accepts.
func Encode(p Progress) (json.RawMessage, error) {
	if p == nil {
		return json.RawMessage("null"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
