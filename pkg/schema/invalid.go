package schema

import (
	"sort"
	"strconv"
	"strings"
)

// MsgRequired is reported when a required node receives no value.
const MsgRequired = "Required"

// Invalid reports that a cstruct could not be deserialized. Errors form a
// tree mirroring the schema: Children hold sub-errors, each tagged with the
// position of its node within the parent node's children (or the item index
// for sequences).
type Invalid struct {
	Node     *Node
	Msg      string
	Value    any
	Pos      int
	Children []*Invalid
}

// NewInvalid constructs a root-positioned Invalid for node.
func NewInvalid(node *Node, msg string, value any) *Invalid {
	return &Invalid{
		Node:  node,
		Msg:   msg,
		Value: value,
		Pos:   -1,
	}
}

// Add attaches a sub-error at the given position.
func (e *Invalid) Add(child *Invalid, pos int) {
	if e == nil || child == nil {
		return
	}
	child.Pos = pos
	e.Children = append(e.Children, child)
}

// Child returns the sub-error recorded for position pos.
func (e *Invalid) Child(pos int) (*Invalid, bool) {
	if e == nil {
		return nil, false
	}
	for _, child := range e.Children {
		if child.Pos == pos {
			return child, true
		}
	}
	return nil, false
}

// Error joins the leaf messages with their dotted paths.
func (e *Invalid) Error() string {
	if e == nil {
		return ""
	}
	messages := e.AsMap()
	if len(messages) == 0 {
		return "schema: invalid"
	}
	keys := make([]string, 0, len(messages))
	for key := range messages {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			parts = append(parts, messages[key])
			continue
		}
		parts = append(parts, key+": "+messages[key])
	}
	return strings.Join(parts, "; ")
}

// AsMap flattens the error tree into dotted paths built from node names.
// Sequence items contribute their index. Messages recorded on the same path
// are joined with "; ".
func (e *Invalid) AsMap() map[string]string {
	out := make(map[string]string)
	if e == nil {
		return out
	}
	e.collect("", out, false)
	return out
}

func (e *Invalid) collect(prefix string, out map[string]string, isItem bool) {
	path := prefix
	if isItem {
		path = joinPath(prefix, strconv.Itoa(e.Pos))
	} else if e.Pos >= 0 && e.Node != nil {
		path = joinPath(prefix, e.Node.Name)
	}

	if msg := strings.TrimSpace(e.Msg); msg != "" {
		if existing, ok := out[path]; ok {
			out[path] = existing + "; " + msg
		} else {
			out[path] = msg
		}
	}

	items := e.Node != nil && isSequence(e.Node.Type)
	for _, child := range e.Children {
		child.collect(path, out, items)
	}
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
