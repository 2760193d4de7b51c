package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Type converts between application values and cstructs for a node.
type Type interface {
	Serialize(node *Node, appstruct any) (any, error)
	Deserialize(node *Node, cstruct any) (any, error)
}

// WidgetHinter is implemented by types that prefer a specific widget when
// the node does not name one explicitly.
type WidgetHinter interface {
	DefaultWidget() string
}

// Widget names preferred by the built-in types.
const (
	WidgetCheckbox = "checkbox"
	WidgetMapping  = "mapping"
	WidgetSequence = "sequence"
)

// ErrNoItemNode is returned when a sequence node lacks its item child.
var ErrNoItemNode = errors.New("schema: sequence node requires exactly one child")

// String maps text values. Empty strings deserialize to null unless
// AllowEmpty is set.
type String struct {
	AllowEmpty bool
}

func (String) Serialize(_ *Node, appstruct any) (any, error) {
	if s, ok := appstruct.(string); ok {
		return s, nil
	}
	return fmt.Sprint(appstruct), nil
}

func (t String) Deserialize(node *Node, cstruct any) (any, error) {
	s, ok := cstruct.(string)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a string", cstruct), cstruct)
	}
	if s == "" && !t.AllowEmpty {
		return nil, nil
	}
	return s, nil
}

// Integer maps whole numbers to decimal strings.
type Integer struct{}

func (Integer) Serialize(node *Node, appstruct any) (any, error) {
	n, ok := asInt(appstruct)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a number", appstruct), appstruct)
	}
	return strconv.FormatInt(n, 10), nil
}

func (Integer) Deserialize(node *Node, cstruct any) (any, error) {
	if n, ok := asInt(cstruct); ok {
		return int(n), nil
	}
	s, ok := cstruct.(string)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a number", cstruct), cstruct)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, NewInvalid(node, fmt.Sprintf("%q is not a number", s), cstruct)
	}
	return n, nil
}

// Float maps floating point numbers to decimal strings.
type Float struct{}

func (Float) Serialize(node *Node, appstruct any) (any, error) {
	f, ok := asFloat(appstruct)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a number", appstruct), appstruct)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

func (Float) Deserialize(node *Node, cstruct any) (any, error) {
	if f, ok := asFloat(cstruct); ok {
		return f, nil
	}
	s, ok := cstruct.(string)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a number", cstruct), cstruct)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, NewInvalid(node, fmt.Sprintf("%q is not a number", s), cstruct)
	}
	return f, nil
}

// Boolean maps booleans to the True/False strings ("true"/"false" when
// unset). Deserialization treats "", "false", "0", "off" and "no" as false.
type Boolean struct {
	True  string
	False string
}

func (Boolean) DefaultWidget() string { return WidgetCheckbox }

func (t Boolean) Serialize(node *Node, appstruct any) (any, error) {
	b, ok := appstruct.(bool)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a boolean", appstruct), appstruct)
	}
	if b {
		return t.trueValue(), nil
	}
	return t.falseValue(), nil
}

func (t Boolean) Deserialize(node *Node, cstruct any) (any, error) {
	if b, ok := cstruct.(bool); ok {
		return b, nil
	}
	s, ok := cstruct.(string)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a boolean", cstruct), cstruct)
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "false", "0", "off", "no", strings.ToLower(t.falseValue()):
		return false, nil
	default:
		return true, nil
	}
}

func (t Boolean) trueValue() string {
	if t.True == "" {
		return "true"
	}
	return t.True
}

func (t Boolean) falseValue() string {
	if t.False == "" {
		return "false"
	}
	return t.False
}

// Mapping maps map[string]any values keyed by child node names. Keys that do
// not match a child are dropped.
type Mapping struct{}

func (Mapping) DefaultWidget() string { return WidgetMapping }

func (Mapping) Serialize(node *Node, appstruct any) (any, error) {
	value, ok := appstruct.(map[string]any)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a mapping type", appstruct), appstruct)
	}
	out := make(map[string]any, len(node.Children))
	for _, child := range node.Children {
		serialized, err := child.Serialize(value[child.Name])
		if err != nil {
			return nil, err
		}
		out[child.Name] = serialized
	}
	return out, nil
}

func (Mapping) Deserialize(node *Node, cstruct any) (any, error) {
	value, ok := cstruct.(map[string]any)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not a mapping type", cstruct), cstruct)
	}

	out := make(map[string]any, len(node.Children))
	invalid := NewInvalid(node, "", cstruct)
	for idx, child := range node.Children {
		result, err := child.Deserialize(value[child.Name])
		if err != nil {
			var childErr *Invalid
			if !errors.As(err, &childErr) {
				return nil, err
			}
			invalid.Add(childErr, idx)
			continue
		}
		out[child.Name] = result
	}
	if len(invalid.Children) > 0 {
		return nil, invalid
	}
	return out, nil
}

// Sequence maps slices whose items are described by the node's single child.
type Sequence struct{}

func (Sequence) DefaultWidget() string { return WidgetSequence }

func (Sequence) Serialize(node *Node, appstruct any) (any, error) {
	item, err := itemNode(node)
	if err != nil {
		return nil, err
	}
	values, ok := asSlice(appstruct)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not iterable", appstruct), appstruct)
	}
	out := make([]any, 0, len(values))
	for _, value := range values {
		serialized, err := item.Serialize(value)
		if err != nil {
			return nil, err
		}
		out = append(out, serialized)
	}
	return out, nil
}

func (Sequence) Deserialize(node *Node, cstruct any) (any, error) {
	item, err := itemNode(node)
	if err != nil {
		return nil, err
	}
	values, ok := asSlice(cstruct)
	if !ok {
		return nil, NewInvalid(node, fmt.Sprintf("%v is not iterable", cstruct), cstruct)
	}

	out := make([]any, 0, len(values))
	invalid := NewInvalid(node, "", cstruct)
	for idx, value := range values {
		result, err := item.Deserialize(value)
		if err != nil {
			var childErr *Invalid
			if !errors.As(err, &childErr) {
				return nil, err
			}
			invalid.Add(childErr, idx)
			continue
		}
		out = append(out, result)
	}
	if len(invalid.Children) > 0 {
		return nil, invalid
	}
	return out, nil
}

func itemNode(node *Node) (*Node, error) {
	if node == nil || len(node.Children) != 1 {
		return nil, ErrNoItemNode
	}
	return node.Children[0], nil
}

func isSequence(t Type) bool {
	switch t.(type) {
	case Sequence, *Sequence:
		return true
	default:
		return false
	}
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float64:
		// 2^63 itself is out of range; float64(math.MaxInt64) rounds up to it.
		if v == math.Trunc(v) && v >= math.MinInt64 && v < -math.MinInt64 {
			return int64(v), true
		}
	}
	return 0, false
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if n, ok := asInt(value); ok {
		return float64(n), true
	}
	return 0, false
}
