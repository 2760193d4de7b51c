package schema

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// documentNode is the declarative (JSON/YAML) shape of a schema node.
type documentNode struct {
	Name        string         `json:"name" yaml:"name"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Type        string         `json:"type" yaml:"type"`
	Required    *bool          `json:"required" yaml:"required"`
	Default     any            `json:"default" yaml:"default"`
	Missing     any            `json:"missing" yaml:"missing"`
	Widget      string         `json:"widget" yaml:"widget"`
	AllowEmpty  bool           `json:"allowEmpty" yaml:"allowEmpty"`
	Children    []documentNode `json:"children" yaml:"children"`
	Items       *documentNode  `json:"items" yaml:"items"`
	MinLength   int            `json:"minLength" yaml:"minLength"`
	MaxLength   int            `json:"maxLength" yaml:"maxLength"`
	Minimum     *float64       `json:"minimum" yaml:"minimum"`
	Maximum     *float64       `json:"maximum" yaml:"maximum"`
	Enum        []any          `json:"enum" yaml:"enum"`
	Pattern     string         `json:"pattern" yaml:"pattern"`
}

// LoadFS reads and parses the schema document stored at path in fsys.
func LoadFS(fsys fs.FS, path string) (*Node, error) {
	if fsys == nil {
		return nil, fmt.Errorf("schema: filesystem is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	node, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", path, err)
	}
	return node, nil
}

// Parse builds a node tree from a JSON or YAML document. JSON is attempted
// first; YAML is the fallback.
func Parse(data []byte) (*Node, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("schema: document is empty")
	}

	var doc documentNode
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = documentNode{}
		if yerr := yaml.Unmarshal(data, &doc); yerr != nil {
			return nil, fmt.Errorf("schema: parse document: invalid JSON or YAML: %w", yerr)
		}
	}
	return buildNode(doc, "")
}

func buildNode(doc documentNode, path string) (*Node, error) {
	path = joinPath(path, doc.Name)

	typ, err := typeFor(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: node %q: %w", path, err)
	}

	node := NewNode(doc.Name, typ,
		WithTitle(doc.Title),
		WithDescription(doc.Description),
		WithDefault(doc.Default),
		WithWidget(doc.Widget),
	)
	if doc.Required != nil && !*doc.Required {
		node.Required = false
		node.Missing = doc.Missing
	}

	validator, err := validatorFor(doc)
	if err != nil {
		return nil, fmt.Errorf("schema: node %q: %w", path, err)
	}
	node.Validator = validator

	switch typ.(type) {
	case Sequence:
		if doc.Items == nil {
			return nil, fmt.Errorf("schema: node %q: sequence requires items", path)
		}
		item, err := buildNode(*doc.Items, path)
		if err != nil {
			return nil, err
		}
		node.Children = []*Node{item}
	default:
		for _, childDoc := range doc.Children {
			child, err := buildNode(childDoc, path)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

// typeFor resolves the declared type. A node without one is a mapping when it
// has children and a string otherwise.
func typeFor(doc documentNode) (Type, error) {
	kind := strings.ToLower(strings.TrimSpace(doc.Type))
	if kind == "" && len(doc.Children) > 0 {
		kind = "mapping"
	}
	switch kind {
	case "", "string":
		return String{AllowEmpty: doc.AllowEmpty}, nil
	case "integer", "int":
		return Integer{}, nil
	case "number", "float":
		return Float{}, nil
	case "boolean", "bool":
		return Boolean{}, nil
	case "mapping", "object":
		return Mapping{}, nil
	case "sequence", "array":
		return Sequence{}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", doc.Type)
	}
}

func validatorFor(doc documentNode) (Validator, error) {
	var validators All
	if doc.MinLength > 0 || doc.MaxLength > 0 {
		validators = append(validators, Length{Min: doc.MinLength, Max: doc.MaxLength})
	}
	if doc.Minimum != nil || doc.Maximum != nil {
		validators = append(validators, Range{Min: doc.Minimum, Max: doc.Maximum})
	}
	if len(doc.Enum) > 0 {
		validators = append(validators, OneOf{Choices: append([]any(nil), doc.Enum...)})
	}
	if doc.Pattern != "" {
		regex, err := NewRegex(doc.Pattern, "")
		if err != nil {
			return nil, err
		}
		validators = append(validators, regex)
	}

	switch len(validators) {
	case 0:
		return nil, nil
	case 1:
		return validators[0], nil
	default:
		return validators, nil
	}
}
