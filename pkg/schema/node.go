package schema

// Node describes one piece of expected data: its type, nesting, defaults and
// validation rules. Nodes are shared by every field tree built from them and
// must be treated as read-only once a tree exists.
type Node struct {
	Name        string
	Title       string
	Description string
	// Required reports whether a null value is rejected. Optional nodes
	// deserialize null to Missing.
	Required bool
	Type     Type
	Children []*Node
	// Default is the application-level value used when rendering without a
	// submitted value. Nil means no default.
	Default any
	Missing any
	// Validator runs after a successful type deserialization.
	Validator Validator
	// Widget names an explicit widget, overriding the type's preference.
	Widget string
}

// NodeOption configures a Node built through NewNode.
type NodeOption func(*Node)

// NewNode constructs a node of the given type. The title defaults to a label
// derived from the name.
func NewNode(name string, typ Type, options ...NodeOption) *Node {
	node := &Node{
		Name:     name,
		Type:     typ,
		Required: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(node)
	}
	if node.Title == "" {
		node.Title = Label(node.Name)
	}
	return node
}

// WithTitle sets the human-readable title.
func WithTitle(title string) NodeOption {
	return func(n *Node) {
		n.Title = title
	}
}

// WithDescription sets the node description.
func WithDescription(description string) NodeOption {
	return func(n *Node) {
		n.Description = description
	}
}

// WithDefault sets the application-level default value.
func WithDefault(value any) NodeOption {
	return func(n *Node) {
		n.Default = value
	}
}

// Optional marks the node as not required, substituting missing when no
// value is submitted.
func Optional(missing any) NodeOption {
	return func(n *Node) {
		n.Required = false
		n.Missing = missing
	}
}

// WithValidator attaches a validator.
func WithValidator(v Validator) NodeOption {
	return func(n *Node) {
		n.Validator = v
	}
}

// WithWidget names the widget used to render the node.
func WithWidget(name string) NodeOption {
	return func(n *Node) {
		n.Widget = name
	}
}

// WithChildren appends child nodes in order.
func WithChildren(children ...*Node) NodeOption {
	return func(n *Node) {
		for _, child := range children {
			if child != nil {
				n.Children = append(n.Children, child)
			}
		}
	}
}

// Child returns the direct child named name.
func (n *Node) Child(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, child := range n.Children {
		if child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// SDefault returns the serialized form of Default, or nil when the node has
// no default.
func (n *Node) SDefault() any {
	if n == nil || n.Default == nil {
		return nil
	}
	cstruct, err := n.Serialize(n.Default)
	if err != nil {
		return nil
	}
	return cstruct
}

// Serialize converts an application value into its cstruct representation.
// A nil appstruct serializes to nil.
func (n *Node) Serialize(appstruct any) (any, error) {
	if appstruct == nil {
		return nil, nil
	}
	if n.Type == nil {
		return appstruct, nil
	}
	return n.Type.Serialize(n, appstruct)
}

// Deserialize converts a cstruct into an application value, applying type
// rules, the missing/required policy and the node validator. Validation
// problems are reported as *Invalid; any other error is a defect.
func (n *Node) Deserialize(cstruct any) (any, error) {
	var appstruct any
	if cstruct != nil {
		if n.Type == nil {
			appstruct = cstruct
		} else {
			value, err := n.Type.Deserialize(n, cstruct)
			if err != nil {
				return nil, err
			}
			appstruct = value
		}
	}

	if appstruct == nil {
		if n.Required {
			return nil, NewInvalid(n, MsgRequired, cstruct)
		}
		return n.Missing, nil
	}

	if n.Validator != nil {
		if err := n.Validator.Validate(n, appstruct); err != nil {
			return nil, err
		}
	}
	return appstruct, nil
}
