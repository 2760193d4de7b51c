package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtree/pkg/schema"
)

// Vendor extensions understood by the converter.
const (
	extensionWidget = "x-formtree-widget"
	extensionOrder  = "x-formtree-order"
	itemNodeName    = "item"
)

// ConvertSchema converts an OpenAPI schema into a schema node. Object
// properties become mapping children ordered by x-formtree-order, then by
// name; allOf members contribute their properties.
func ConvertSchema(name string, ref *openapi3.SchemaRef, required bool) (*schema.Node, error) {
	if ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("unresolved schema for %q", name)
	}
	src := ref.Value

	typ, err := nodeType(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pathLabel(name), err)
	}

	var opts []schema.NodeOption
	if src.Title != "" {
		opts = append(opts, schema.WithTitle(src.Title))
	}
	if src.Description != "" {
		opts = append(opts, schema.WithDescription(src.Description))
	}
	if src.Default != nil {
		opts = append(opts, schema.WithDefault(src.Default))
	}
	if !required {
		opts = append(opts, schema.Optional(nil))
	}
	if widget := stringExtension(src.Extensions, extensionWidget); widget != "" {
		opts = append(opts, schema.WithWidget(widget))
	} else if src.Format == "password" {
		opts = append(opts, schema.WithWidget("password"))
	}

	validator, err := validatorFor(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pathLabel(name), err)
	}
	if validator != nil {
		opts = append(opts, schema.WithValidator(validator))
	}

	children, err := childNodes(name, src, typ)
	if err != nil {
		return nil, err
	}
	if len(children) > 0 {
		opts = append(opts, schema.WithChildren(children...))
	}
	return schema.NewNode(name, typ, opts...), nil
}

func nodeType(src *openapi3.Schema) (schema.Type, error) {
	kind := primaryType(src)
	switch kind {
	case "", openapi3.TypeObject:
		return schema.Mapping{}, nil
	case openapi3.TypeString:
		return schema.String{}, nil
	case openapi3.TypeInteger:
		return schema.Integer{}, nil
	case openapi3.TypeNumber:
		return schema.Float{}, nil
	case openapi3.TypeBoolean:
		return schema.Boolean{}, nil
	case openapi3.TypeArray:
		return schema.Sequence{}, nil
	default:
		return nil, fmt.Errorf("unsupported type %q", kind)
	}
}

// primaryType returns the first non-null declared type.
func primaryType(src *openapi3.Schema) string {
	if src.Type == nil {
		if len(src.Properties) > 0 || len(src.AllOf) > 0 {
			return openapi3.TypeObject
		}
		return ""
	}
	for _, value := range src.Type.Slice() {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func childNodes(name string, src *openapi3.Schema, typ schema.Type) ([]*schema.Node, error) {
	switch typ.(type) {
	case schema.Sequence:
		if src.Items == nil {
			return nil, fmt.Errorf("%s: array without items", pathLabel(name))
		}
		item, err := ConvertSchema(itemNodeName, src.Items, true)
		if err != nil {
			return nil, err
		}
		return []*schema.Node{item}, nil
	case schema.Mapping:
		properties, required := collectProperties(src)
		names := orderedNames(properties, src.Extensions)
		children := make([]*schema.Node, 0, len(names))
		for _, propName := range names {
			child, err := ConvertSchema(propName, properties[propName], required[propName])
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return children, nil
	default:
		return nil, nil
	}
}

func collectProperties(src *openapi3.Schema) (openapi3.Schemas, map[string]bool) {
	properties := make(openapi3.Schemas, len(src.Properties))
	required := make(map[string]bool, len(src.Required))
	for _, member := range src.AllOf {
		if member == nil || member.Value == nil {
			continue
		}
		nested, nestedRequired := collectProperties(member.Value)
		for key, value := range nested {
			properties[key] = value
		}
		for key := range nestedRequired {
			required[key] = true
		}
	}
	for key, value := range src.Properties {
		properties[key] = value
	}
	for _, key := range src.Required {
		required[key] = true
	}
	return properties, required
}

func orderedNames(properties openapi3.Schemas, extensions map[string]any) []string {
	names := make([]string, 0, len(properties))
	seen := make(map[string]struct{}, len(properties))
	if raw, ok := extensions[extensionOrder].([]any); ok {
		for _, entry := range raw {
			name, ok := entry.(string)
			if !ok {
				continue
			}
			if _, exists := properties[name]; !exists {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	rest := make([]string, 0, len(properties))
	for name := range properties {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func validatorFor(src *openapi3.Schema) (schema.Validator, error) {
	var validators schema.All

	switch primaryType(src) {
	case openapi3.TypeString:
		length := schema.Length{Min: int(src.MinLength)}
		if src.MaxLength != nil {
			length.Max = int(*src.MaxLength)
		}
		if length.Min > 0 || length.Max > 0 {
			validators = append(validators, length)
		}
		if src.Pattern != "" {
			regex, err := schema.NewRegex(src.Pattern, "")
			if err != nil {
				return nil, err
			}
			validators = append(validators, regex)
		}
	case openapi3.TypeArray:
		length := schema.Length{Min: int(src.MinItems)}
		if src.MaxItems != nil {
			length.Max = int(*src.MaxItems)
		}
		if length.Min > 0 || length.Max > 0 {
			validators = append(validators, length)
		}
	case openapi3.TypeInteger, openapi3.TypeNumber:
		if src.Min != nil || src.Max != nil {
			validators = append(validators, schema.Range{Min: src.Min, Max: src.Max})
		}
	}
	if len(src.Enum) > 0 {
		validators = append(validators, schema.OneOf{Choices: append([]any(nil), src.Enum...)})
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

func stringExtension(extensions map[string]any, key string) string {
	value, ok := extensions[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func pathLabel(name string) string {
	if name == "" {
		return "request body"
	}
	return fmt.Sprintf("property %q", name)
}
