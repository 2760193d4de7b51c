package openapi_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/form"
	"github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/pstruct"
	"github.com/goliatone/go-formtree/pkg/schema"
	"github.com/goliatone/go-formtree/pkg/testsupport"
)

const petsDocument = `
openapi: 3.0.3
info:
  title: Pets
  version: "1.0"
paths:
  /pets:
    post:
      operationId: createPet
      summary: Register a pet
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        "201":
          description: created
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
components:
  schemas:
    Pet:
      type: object
      required: [name, species]
      x-formtree-order: [name, species]
      properties:
        name:
          type: string
          maxLength: 40
          description: Pet name
        species:
          type: string
          enum: [cat, dog]
        age:
          type: integer
          minimum: 0
        vaccinated:
          type: boolean
          default: false
        secret:
          type: string
          format: password
        tags:
          type: array
          items:
            type: string
        owner:
          type: object
          required: [email]
          properties:
            email:
              type: string
              pattern: "^.+@.+$"
`

func loadPets(t *testing.T) *openapi.Document {
	t.Helper()
	doc, err := openapi.Load(t.Context(), []byte(petsDocument))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return doc
}

func TestLoad_Operations(t *testing.T) {
	doc := loadPets(t)

	if doc.Title() != "Pets" {
		t.Fatalf("title mismatch: %q", doc.Title())
	}
	var ids []string
	for _, op := range doc.Operations() {
		ids = append(ids, op.ID)
	}
	if diff := cmp.Diff([]string{"createPet", "listPets"}, ids); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
	if ops := doc.Operations(); !ops[0].HasBody || ops[1].HasBody {
		t.Fatalf("unexpected body flags: %+v", ops)
	}
}

func TestRequestSchema_Converts(t *testing.T) {
	doc := loadPets(t)

	node, err := doc.RequestSchema("createPet")
	if err != nil {
		t.Fatalf("request schema: %v", err)
	}

	var names []string
	for _, child := range node.Children {
		names = append(names, child.Name)
	}
	want := []string{"name", "species", "age", "owner", "secret", "tags", "vaccinated"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("child order mismatch (-want +got):\n%s", diff)
	}
	if node.Description != "Register a pet" {
		t.Fatalf("expected summary as description, got %q", node.Description)
	}

	name, _ := node.Child("name")
	if !name.Required || name.Description != "Pet name" {
		t.Fatalf("name node mismatch: %+v", name)
	}
	age, _ := node.Child("age")
	if age.Required {
		t.Fatalf("age should be optional")
	}
	secret, _ := node.Child("secret")
	if secret.Widget != form.WidgetPassword {
		t.Fatalf("expected password widget hint, got %q", secret.Widget)
	}
	if choices, ok := schema.Choices(mustChild(t, node, "species")); !ok || len(choices) != 2 {
		t.Fatalf("expected species choices, got %v", choices)
	}
	tags := mustChild(t, node, "tags")
	if _, ok := tags.Type.(schema.Sequence); !ok || len(tags.Children) != 1 {
		t.Fatalf("expected sequence with one item node: %+v", tags)
	}
}

func TestRequestSchema_Errors(t *testing.T) {
	doc := loadPets(t)

	if _, err := doc.RequestSchema("listPets"); !errors.Is(err, openapi.ErrNoRequestBody) {
		t.Fatalf("expected ErrNoRequestBody, got %v", err)
	}
	if _, err := doc.RequestSchema("nope"); !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
	if _, err := openapi.Load(t.Context(), nil); err == nil {
		t.Fatalf("expected empty payload error")
	}
}

func TestRequestSchema_DrivesForm(t *testing.T) {
	node, err := loadPets(t).RequestSchema("createPet")
	if err != nil {
		t.Fatalf("request schema: %v", err)
	}
	f := form.NewForm(node, form.WithButtonNames("create"))

	html, err := f.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	testsupport.AssertContainsAll(t, html,
		`<select name="species" id="field-species" required>`,
		`<input type="hidden" name="__start__" value="owner:mapping"/>`,
		`type="password" name="secret"`,
		`type="checkbox" name="vaccinated"`,
		`>Create</button>`,
	)

	_, err = f.Validate([]pstruct.Pair{
		pstruct.P("name", "Rex"),
		pstruct.P("species", "dog"),
		pstruct.StartMapping("owner"),
		pstruct.P("email", "not-an-email"),
		pstruct.EndMarker("owner"),
	})
	var failure *form.ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if diff := cmp.Diff([]string{"owner.email"}, failure.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	got, err := f.Validate([]pstruct.Pair{
		pstruct.P("name", "Rex"),
		pstruct.P("species", "dog"),
		pstruct.P("age", "3"),
		pstruct.P("vaccinated", "true"),
		pstruct.StartMapping("owner"),
		pstruct.P("email", "ada@example.com"),
		pstruct.EndMarker("owner"),
		pstruct.StartSequence("tags"),
		pstruct.P("item", "good"),
		pstruct.EndMarker("tags"),
	})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	want := map[string]any{
		"name":       "Rex",
		"species":    "dog",
		"age":        3,
		"vaccinated": true,
		"secret":     nil,
		"owner":      map[string]any{"email": "ada@example.com"},
		"tags":       []any{"good"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("appstruct mismatch (-want +got):\n%s", diff)
	}
}

func mustChild(t *testing.T, node *schema.Node, name string) *schema.Node {
	t.Helper()
	child, ok := node.Child(name)
	if !ok {
		t.Fatalf("missing child %q", name)
	}
	return child
}
