package progress

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeShapes(t *testing.T) {
	sm := NewStringMap()
	sm.Set("b", "x")
	sm.Set("a", `say "hi"`)
	im := NewIntMap()
	im.Set(15, 4)
	im.Set(5, 2)
	set := NewStringSet()
	set.Add("dog")
	set.Add("cat")

	cases := []struct {
		name string
		in   Progress
		want string
	}{
		{"none", None{}, `null`},
		{"nil", nil, `null`},
		{"string map", sm, `{"b":"x","a":"say \"hi\""}`},
		{"int map", im, `{"15":4,"5":2}`},
		{"set", set, `{"words":["dog","cat"]}`},
		{"empty set", NewStringSet(), `{"words":[]}`},
		{"empty map", NewIntMap(), `{}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Encode(tc.in)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestEncodeThenRestoreRoundTrips(t *testing.T) {
	in := json.RawMessage(`{"zone b":"lion","zone-a":"tiger","3":"bear"}`)
	p := Restore(in, "dragdroppicturegroup")
	out, err := Encode(p)
	require.NoError(t, err)
	assert.Equal(t, `{"zone b":"lion","zone-a":"tiger","3":"bear"}`, string(out))
	again := Restore(out, "dragdroppicturegroup")
	assert.Equal(t, p, again)

	words := Restore(json.RawMessage(`{"words":["b","a"]}`), "puzzleFindWords")
	out, err = Encode(words)
	require.NoError(t, err)
	assert.Equal(t, words, Restore(out, "puzzleFindWords"))
}

func TestOrderedDelete(t *testing.T) {
	m := NewIntMap()
	m.Set(1, 1)
	m.Set(2, 2)
	m.Set(3, 3)
	assert.True(t, m.Delete(2))
	assert.False(t, m.Delete(2))
	assert.Equal(t, []int{1, 3}, m.Keys())
	m.Set(2, 9)
	assert.Equal(t, []int{1, 3, 2}, m.Keys())

	s := NewStringSet()
	assert.True(t, s.Add("x"))
	assert.False(t, s.Add("x"))
	assert.True(t, s.Remove("x"))
	assert.Zero(t, s.Len())
}

func TestEmptyAndShapeTable(t *testing.T) {
	assert.Equal(t, ShapeStringMap, Empty(TypeMatchTheWords).Shape())
	assert.Equal(t, ShapeIntMap, Empty(TypeMarkWithX).Shape())
	assert.Equal(t, ShapeStringSet, Empty(TypePuzzleFindWords).Shape())
	assert.Equal(t, None{}, Empty("nope"))

	_, ok := ParseActivityType("circle")
	assert.True(t, ok)
	_, ok = ParseActivityType("matchthewords")
	assert.False(t, ok)
	assert.Len(t, KnownTypes(), 6)
	assert.Equal(t, "int_map", TypeCircle.Shape().String())
}
