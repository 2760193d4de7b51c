// Package pstruct rebuilds nested mapping/sequence structures from a flat,
// document-ordered list of form submission pairs.
//
// Structure is expressed with marker pairs: a "__start__" pair whose value is
// "name:mapping", "name:sequence" or "name:rename" opens a structure, and an
// "__end__" pair closes the innermost open one. Every other pair assigns its
// value under its key inside the innermost open structure.
package pstruct

import (
	"strings"
)

const (
	// Start opens a nested structure.
	Start = "__start__"
	// End closes the innermost open structure.
	End = "__end__"

	KindMapping  = "mapping"
	KindSequence = "sequence"
	KindRename   = "rename"
)

// Pair is one submitted key/value. Plain fields carry strings; file fields
// carry a *FileUpload (or any caller-defined file value).
type Pair struct {
	Key   string
	Value any
}

// P is shorthand for constructing a Pair.
func P(key string, value any) Pair {
	return Pair{Key: key, Value: value}
}

// StartMapping returns the marker opening a mapping named name.
func StartMapping(name string) Pair {
	return Pair{Key: Start, Value: name + ":" + KindMapping}
}

// StartSequence returns the marker opening a sequence named name.
func StartSequence(name string) Pair {
	return Pair{Key: Start, Value: name + ":" + KindSequence}
}

// StartRename returns the marker opening a rename group named name.
func StartRename(name string) Pair {
	return Pair{Key: Start, Value: name + ":" + KindRename}
}

// EndMarker returns the marker closing the innermost structure. The name is
// informational only.
func EndMarker(name string) Pair {
	return Pair{Key: End, Value: name + ":"}
}

type frame struct {
	name    string
	kind    string
	mapping map[string]any
	items   []any
}

func (f *frame) put(key string, value any) {
	if f.kind == KindMapping {
		f.mapping[key] = value
		return
	}
	f.items = append(f.items, value)
}

func (f *frame) result() any {
	switch f.kind {
	case KindMapping:
		return f.mapping
	case KindRename:
		if len(f.items) == 0 {
			return ""
		}
		return f.items[0]
	default:
		if f.items == nil {
			return []any{}
		}
		return f.items
	}
}

// Parse converts pairs into a nested structure rooted at a mapping. Later
// keys win inside a mapping. Structures left open at the end of input are
// closed implicitly; an unmatched "__end__" at the top level is ignored.
func Parse(pairs []Pair) map[string]any {
	root := &frame{kind: KindMapping, mapping: make(map[string]any)}
	stack := []*frame{root}

	for _, pair := range pairs {
		current := stack[len(stack)-1]
		switch pair.Key {
		case Start:
			name, kind := dataType(pair.Value)
			next := &frame{name: name, kind: kind}
			if kind == KindMapping {
				next.mapping = make(map[string]any)
			}
			stack = append(stack, next)
		case End:
			if len(stack) == 1 {
				continue
			}
			stack = stack[:len(stack)-1]
			stack[len(stack)-1].put(current.name, current.result())
		default:
			current.put(pair.Key, pair.Value)
		}
	}

	for len(stack) > 1 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stack[len(stack)-1].put(current.name, current.result())
	}
	return root.mapping
}

// dataType splits a "name:kind" marker value. Unknown or missing kinds are
// treated as mappings.
func dataType(value any) (string, string) {
	raw, _ := value.(string)
	name, kind := "", strings.TrimSpace(raw)
	if idx := strings.LastIndex(raw, ":"); idx >= 0 {
		name = strings.TrimSpace(raw[:idx])
		kind = strings.TrimSpace(raw[idx+1:])
	}
	switch kind {
	case KindSequence, KindRename:
		return name, kind
	default:
		return name, KindMapping
	}
}
