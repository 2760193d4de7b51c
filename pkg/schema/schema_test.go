package schema_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/schema"
)

func personSchema() *schema.Node {
	return schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("name", schema.String{}),
		schema.NewNode("age", schema.Integer{}, schema.WithValidator(schema.Range{Min: floatPtr(0)})),
		schema.NewNode("nickname", schema.String{}, schema.Optional("n/a")),
		schema.NewNode("tags", schema.Sequence{}, schema.Optional(nil), schema.WithChildren(
			schema.NewNode("tag", schema.String{}),
		)),
	))
}

func floatPtr(v float64) *float64 { return &v }

func TestNode_DeserializeMapping(t *testing.T) {
	got, err := personSchema().Deserialize(map[string]any{
		"name": "Ada",
		"age":  "36",
		"tags": []any{"math", "engines"},
	})
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}

	want := map[string]any{
		"name":     "Ada",
		"age":      36,
		"nickname": "n/a",
		"tags":     []any{"math", "engines"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("appstruct mismatch (-want +got):\n%s", diff)
	}
}

func TestNode_DeserializeCollectsChildErrors(t *testing.T) {
	_, err := personSchema().Deserialize(map[string]any{
		"name": "",
		"age":  "-1",
		"tags": []any{"ok", ""},
	})

	var invalid *schema.Invalid
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *schema.Invalid, got %v", err)
	}

	want := map[string]string{
		"name":   schema.MsgRequired,
		"age":    "-1 is less than minimum value 0",
		"tags.1": schema.MsgRequired,
	}
	if diff := cmp.Diff(want, invalid.AsMap()); diff != "" {
		t.Fatalf("error map mismatch (-want +got):\n%s", diff)
	}

	nameErr, ok := invalid.Child(0)
	if !ok || nameErr.Node.Name != "name" {
		t.Fatalf("expected positional child error for name, got %+v", nameErr)
	}
	if _, ok := invalid.Child(2); ok {
		t.Fatalf("optional nickname should not report an error")
	}
}

func TestNode_DeserializeNotAMapping(t *testing.T) {
	_, err := personSchema().Deserialize("nope")
	var invalid *schema.Invalid
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *schema.Invalid, got %v", err)
	}
	if invalid.Msg == "" {
		t.Fatalf("expected a message for the root error")
	}
}

func TestNode_SDefault(t *testing.T) {
	cases := []struct {
		name string
		node *schema.Node
		want any
	}{
		{name: "no default", node: schema.NewNode("color", schema.String{}), want: nil},
		{name: "string", node: schema.NewNode("color", schema.String{}, schema.WithDefault("blue")), want: "blue"},
		{name: "integer", node: schema.NewNode("count", schema.Integer{}, schema.WithDefault(3)), want: "3"},
		{name: "boolean", node: schema.NewNode("ok", schema.Boolean{}, schema.WithDefault(true)), want: "true"},
		{name: "float", node: schema.NewNode("ratio", schema.Float{}, schema.WithDefault(0.5)), want: "0.5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, tc.node.SDefault()); diff != "" {
				t.Fatalf("sdefault mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBoolean_Deserialize(t *testing.T) {
	node := schema.NewNode("ok", schema.Boolean{})
	for input, want := range map[string]bool{
		"true":  true,
		"on":    true,
		"false": false,
		"0":     false,
		"":      false,
	} {
		got, err := node.Deserialize(input)
		if err != nil {
			t.Fatalf("deserialize %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("deserialize %q: want %v, got %v", input, want, got)
		}
	}
}

func TestInteger_RejectsOutOfRangeNumbers(t *testing.T) {
	node := schema.NewNode("count", schema.Integer{})
	cases := map[string]any{
		"huge float":     1e20,
		"negative float": -1e20,
		"two to the 63":  9223372036854775808.0,
		"fraction":       1.5,
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			var invalid *schema.Invalid
			if _, err := node.Serialize(value); !errors.As(err, &invalid) {
				t.Fatalf("serialize: expected *Invalid, got %v", err)
			}
			if _, err := node.Deserialize(value); !errors.As(err, &invalid) {
				t.Fatalf("deserialize: expected *Invalid, got %v", err)
			}
		})
	}

	got, err := node.Serialize(float64(1 << 53))
	if err != nil || got != "9007199254740992" {
		t.Fatalf("serialize in-range float: got %v, %v", got, err)
	}
}

func TestValidators(t *testing.T) {
	node := schema.NewNode("color", schema.String{})
	cases := []struct {
		name      string
		validator schema.Validator
		value     any
		wantErr   bool
	}{
		{name: "length ok", validator: schema.Length{Min: 2, Max: 4}, value: "red"},
		{name: "too short", validator: schema.Length{Min: 4}, value: "red", wantErr: true},
		{name: "too long", validator: schema.Length{Max: 2}, value: "red", wantErr: true},
		{name: "one of ok", validator: schema.OneOf{Choices: []any{"red", "blue"}}, value: "red"},
		{name: "one of miss", validator: schema.OneOf{Choices: []any{"red", "blue"}}, value: "green", wantErr: true},
		{name: "range max", validator: schema.Range{Max: floatPtr(10)}, value: 11, wantErr: true},
		{name: "all merges", validator: schema.All{schema.Length{Min: 5}, schema.OneOf{Choices: []any{"blue"}}}, value: "red", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.validator.Validate(node, tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestChoices(t *testing.T) {
	node := schema.NewNode("color", schema.String{}, schema.WithValidator(schema.All{
		schema.Length{Min: 1},
		schema.OneOf{Choices: []any{"red", "blue"}},
	}))
	choices, ok := schema.Choices(node)
	if !ok {
		t.Fatalf("expected choices")
	}
	if diff := cmp.Diff([]any{"red", "blue"}, choices); diff != "" {
		t.Fatalf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"first_name": "First Name",
		"firstName":  "First Name",
		"address2":   "Address 2",
		"color":      "Color",
	}
	for input, want := range cases {
		if got := schema.Label(input); got != want {
			t.Fatalf("label %q: want %q, got %q", input, want, got)
		}
	}
}

func TestParse_UntypedGroupsAreMappings(t *testing.T) {
	doc := []byte(`
children:
  - name: address
    children:
      - name: city
      - name: geo
        children:
          - name: lat
            type: number
`)

	node, err := schema.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	address, ok := node.Child("address")
	if !ok {
		t.Fatalf("address node missing")
	}
	if _, ok := address.Type.(schema.Mapping); !ok {
		t.Fatalf("address: expected Mapping, got %T", address.Type)
	}
	geo, _ := address.Child("geo")
	if _, ok := geo.Type.(schema.Mapping); !ok {
		t.Fatalf("geo: expected Mapping, got %T", geo.Type)
	}
	city, _ := address.Child("city")
	if _, ok := city.Type.(schema.String); !ok {
		t.Fatalf("city: expected String, got %T", city.Type)
	}

	got, err := node.Deserialize(map[string]any{
		"address": map[string]any{
			"city": "Paris",
			"geo":  map[string]any{"lat": "48.85"},
		},
	})
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	want := map[string]any{
		"address": map[string]any{
			"city": "Paris",
			"geo":  map[string]any{"lat": 48.85},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("appstruct mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_YAML(t *testing.T) {
	doc := []byte(`
name: ""
type: mapping
children:
  - name: color
    default: blue
    enum: [red, blue]
  - name: quantity
    type: integer
    required: false
    minimum: 1
  - name: notes
    type: sequence
    required: false
    items:
      name: note
      widget: textarea
`)

	node, err := schema.Parse(doc)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(node.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(node.Children))
	}

	color, _ := node.Child("color")
	if color.Title != "Color" || color.Default != "blue" || !color.Required {
		t.Fatalf("unexpected color node: %+v", color)
	}
	if _, ok := schema.Choices(color); !ok {
		t.Fatalf("expected enum to become a OneOf validator")
	}

	quantity, _ := node.Child("quantity")
	if quantity.Required {
		t.Fatalf("quantity should be optional")
	}
	if _, ok := quantity.Type.(schema.Integer); !ok {
		t.Fatalf("quantity type: want Integer, got %T", quantity.Type)
	}

	notes, _ := node.Child("notes")
	if len(notes.Children) != 1 || notes.Children[0].Widget != "textarea" {
		t.Fatalf("sequence items not built: %+v", notes.Children)
	}
}

func TestLoadFS_JSON(t *testing.T) {
	fsys := fstest.MapFS{
		"contact.json": &fstest.MapFile{Data: []byte(`{
			"children": [
				{"name": "email", "pattern": "^[^@]+@[^@]+$"},
				{"name": "subscribe", "type": "boolean", "default": true}
			]
		}`)},
	}

	node, err := schema.LoadFS(fsys, "contact.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := node.Type.(schema.Mapping); !ok {
		t.Fatalf("root without type but with children should be a mapping, got %T", node.Type)
	}

	got, err := node.Deserialize(map[string]any{"email": "ada@example.com", "subscribe": "true"})
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	want := map[string]any{"email": "ada@example.com", "subscribe": true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("appstruct mismatch (-want +got):\n%s", diff)
	}

	if _, err := node.Deserialize(map[string]any{"email": "nope", "subscribe": ""}); err == nil {
		t.Fatalf("expected pattern failure")
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":          "   ",
		"unknown type":   `{"name": "x", "type": "blob"}`,
		"sequence items": `{"name": "x", "type": "sequence"}`,
		"bad pattern":    `{"name": "x", "pattern": "("}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := schema.Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
