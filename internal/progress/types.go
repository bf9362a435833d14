package progress

import "sort"

// ActivityType tags the exercise format of an activity instance. It is supplied by the
// activity definition and selects the shape saved progress is restored into.
type ActivityType string

const (
	TypeDragDropPicture      ActivityType = "dragdroppicture"
	TypeDragDropPictureGroup ActivityType = "dragdroppicturegroup"
	TypeMatchTheWords        ActivityType = "matchTheWords"
	TypeCircle               ActivityType = "circle"
	TypeMarkWithX            ActivityType = "markwithx"
	TypePuzzleFindWords      ActivityType = "puzzleFindWords"
)

// Shape is the in-memory form a progress value takes.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeStringMap
	ShapeIntMap
	ShapeStringSet
)

func (s Shape) String() string {
	switch s {
	case ShapeStringMap:
		return "string_map"
	case ShapeIntMap:
		return "int_map"
	case ShapeStringSet:
		return "string_set"
	default:
		return "none"
	}
}

var shapes = map[ActivityType]Shape{
	TypeDragDropPicture:      ShapeStringMap,
	TypeDragDropPictureGroup: ShapeStringMap,
	TypeMatchTheWords:        ShapeStringMap,
	TypeCircle:               ShapeIntMap,
	TypeMarkWithX:            ShapeIntMap,
	TypePuzzleFindWords:      ShapeStringSet,
}

// ParseActivityType reports whether s is a recognized tag. Tags are case-sensitive.
func ParseActivityType(s string) (ActivityType, bool) {
	t := ActivityType(s)
	_, ok := shapes[t]
	return t, ok
}

// Shape returns ShapeNone for unrecognized tags.
func (t ActivityType) Shape() Shape { return shapes[t] }

func (t ActivityType) Known() bool {
	_, ok := shapes[t]
	return ok
}

// KnownTypes lists the recognized tags in lexical order.
func KnownTypes() []ActivityType {
	out := make([]ActivityType, 0, len(shapes))
	for t := range shapes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
