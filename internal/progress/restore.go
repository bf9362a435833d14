package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	ErrUnknownActivityType = errors.New("unknown activity type")
	ErrMalformedProgress   = errors.New("malformed saved progress")
)

// Restore rebuilds the in-memory progress for an activity from its saved wire form.
// It never fails: missing, unrecognized or malformed input all come back as None,
// which players treat the same as a fresh start. Use TryRestore to see why.
func Restore(saved json.RawMessage, activityType string) Progress {
	p, _ := TryRestore(saved, activityType)
	return p
}

// TryRestore is Restore with the failure reason. The returned Progress is None whenever
// err is non-nil. Empty or null input is not an error.
//
// Keys of integer-keyed activities that are not base-10 integers are skipped.
func TryRestore(saved json.RawMessage, activityType string) (Progress, error) {
	raw := bytes.TrimSpace(saved)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return None{}, nil
	}
	t, ok := ParseActivityType(activityType)
	if !ok {
		return None{}, fmt.Errorf("%w: %q", ErrUnknownActivityType, activityType)
	}

	var (
		p   Progress
		err error
	)
	switch t.Shape() {
	case ShapeStringMap:
		p, err = restoreStringMap(raw)
	case ShapeIntMap:
		p, err = restoreIntMap(raw)
	case ShapeStringSet:
		p, err = restoreStringSet(raw)
	}
	if err != nil {
		return None{}, fmt.Errorf("%w (%s): %w", ErrMalformedProgress, t, err)
	}
	return p, nil
}

func restoreStringMap(raw []byte) (*StringMap, error) {
	entries, err := objectEntries(raw)
	if err != nil {
		return nil, err
	}
	out := NewStringMap()
	for _, e := range entries {
		v, err := stringValue(e.value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.key, err)
		}
		out.Set(e.key, v)
	}
	return out, nil
}

func restoreIntMap(raw []byte) (*IntMap, error) {
	entries, err := objectEntries(raw)
	if err != nil {
		return nil, err
	}
	out := NewIntMap()
	for _, e := range entries {
		k, err := strconv.Atoi(e.key)
		if err != nil {
			continue
		}
		v, err := intValue(e.value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", e.key, err)
		}
		out.Set(k, v)
	}
	return out, nil
}

func restoreStringSet(raw []byte) (*StringSet, error) {
	entries, err := objectEntries(raw)
	if err != nil {
		return nil, err
	}
	var words json.RawMessage
	for _, e := range entries {
		if e.key == "words" {
			words = e.value
		}
	}
	out := NewStringSet()
	if len(words) == 0 || words[0] != '[' {
		return out, nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(words, &elems); err != nil {
		return nil, fmt.Errorf("words: %w", err)
	}
	for _, el := range elems {
		var w string
		if len(el) == 0 || el[0] != '"' {
			continue
		}
		if err := json.Unmarshal(el, &w); err != nil {
			return nil, fmt.Errorf("words: %w", err)
		}
		out.Add(w)
	}
	return out, nil
}

type entry struct {
	key   string
	value json.RawMessage
}

// objectEntries splits a JSON object into its members in document order.
func objectEntries(raw []byte) ([]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %s", kindOf(tok))
	}
	var out []entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %s", kindOf(tok))
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, entry{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after object")
	}
	return out, nil
}

func stringValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", errors.New("empty value")
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case c == '-' || (c >= '0' && c <= '9'):
		return string(raw), nil
	default:
		return "", fmt.Errorf("expected string or number, got %s", kindOfRaw(raw))
	}
}

func intValue(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || !(raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9')) {
		return 0, fmt.Errorf("expected integer, got %s", kindOfRaw(raw))
	}
	n := json.Number(raw)
	if i, err := n.Int64(); err == nil {
		if int64(int(i)) != i {
			return 0, fmt.Errorf("integer %s out of range", raw)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 {
		return 0, fmt.Errorf("expected integer, got %s", raw)
	}
	return int(f), nil
}

func kindOf(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return "delimiter " + v.String()
	case string:
		return "string"
	case float64, json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

func kindOfRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
