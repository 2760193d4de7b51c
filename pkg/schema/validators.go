package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validator checks a deserialized value, returning *Invalid when it is
// rejected.
type Validator interface {
	Validate(node *Node, value any) error
}

// ValidatorFunc adapts a function into a Validator.
type ValidatorFunc func(node *Node, value any) error

// Validate calls the underlying function.
func (fn ValidatorFunc) Validate(node *Node, value any) error {
	return fn(node, value)
}

// Length bounds the length of strings and sequences. Zero bounds are
// ignored.
type Length struct {
	Min int
	Max int
}

func (v Length) Validate(node *Node, value any) error {
	var size int
	switch typed := value.(type) {
	case string:
		size = utf8.RuneCountInString(typed)
	default:
		items, ok := asSlice(value)
		if !ok {
			return nil
		}
		size = len(items)
	}
	if v.Min > 0 && size < v.Min {
		return NewInvalid(node, fmt.Sprintf("Shorter than minimum length %d", v.Min), value)
	}
	if v.Max > 0 && size > v.Max {
		return NewInvalid(node, fmt.Sprintf("Longer than maximum length %d", v.Max), value)
	}
	return nil
}

// Range bounds numeric values. Nil bounds are ignored.
type Range struct {
	Min *float64
	Max *float64
}

func (v Range) Validate(node *Node, value any) error {
	n, ok := asFloat(value)
	if !ok {
		return nil
	}
	if v.Min != nil && n < *v.Min {
		return NewInvalid(node, fmt.Sprintf("%v is less than minimum value %v", value, *v.Min), value)
	}
	if v.Max != nil && n > *v.Max {
		return NewInvalid(node, fmt.Sprintf("%v is greater than maximum value %v", value, *v.Max), value)
	}
	return nil
}

// OneOf restricts values to a fixed set of choices.
type OneOf struct {
	Choices []any
}

func (v OneOf) Validate(node *Node, value any) error {
	for _, choice := range v.Choices {
		if fmt.Sprint(choice) == fmt.Sprint(value) {
			return nil
		}
	}
	labels := make([]string, 0, len(v.Choices))
	for _, choice := range v.Choices {
		labels = append(labels, fmt.Sprint(choice))
	}
	return NewInvalid(node, fmt.Sprintf("%q is not one of %s", fmt.Sprint(value), strings.Join(labels, ", ")), value)
}

// Regex requires string values to match Pattern.
type Regex struct {
	Pattern *regexp.Regexp
	Msg     string
}

// NewRegex compiles pattern into a Regex validator.
func NewRegex(pattern, msg string) (Regex, error) {
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, fmt.Errorf("schema: compile pattern %q: %w", pattern, err)
	}
	return Regex{Pattern: compiled, Msg: msg}, nil
}

func (v Regex) Validate(node *Node, value any) error {
	s, ok := value.(string)
	if !ok || v.Pattern == nil {
		return nil
	}
	if v.Pattern.MatchString(s) {
		return nil
	}
	msg := v.Msg
	if msg == "" {
		msg = "String does not match expected pattern"
	}
	return NewInvalid(node, msg, value)
}

// All runs every validator and merges their messages into a single Invalid.
type All []Validator

func (v All) Validate(node *Node, value any) error {
	var messages []string
	for _, validator := range v {
		if validator == nil {
			continue
		}
		err := validator.Validate(node, value)
		if err == nil {
			continue
		}
		invalid, ok := err.(*Invalid)
		if !ok {
			return err
		}
		messages = append(messages, invalid.Msg)
	}
	if len(messages) == 0 {
		return nil
	}
	return NewInvalid(node, strings.Join(messages, "; "), value)
}

// Choices returns the allowed values declared by a OneOf validator on the
// node, looking inside All as well.
func Choices(node *Node) ([]any, bool) {
	if node == nil {
		return nil, false
	}
	return choicesOf(node.Validator)
}

func choicesOf(v Validator) ([]any, bool) {
	switch typed := v.(type) {
	case OneOf:
		return typed.Choices, len(typed.Choices) > 0
	case *OneOf:
		return typed.Choices, len(typed.Choices) > 0
	case All:
		for _, inner := range typed {
			if choices, ok := choicesOf(inner); ok {
				return choices, true
			}
		}
	}
	return nil, false
}
