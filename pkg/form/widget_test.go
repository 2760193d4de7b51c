package form_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/form"
	"github.com/goliatone/go-formtree/pkg/pstruct"
	"github.com/goliatone/go-formtree/pkg/schema"
)

func TestSelectWidget_RendersChoices(t *testing.T) {
	node := schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("color", schema.String{}, schema.WithValidator(schema.OneOf{Choices: []any{"red", "green"}})),
		schema.NewNode("size", schema.String{}, schema.Optional(nil), schema.WithValidator(schema.OneOf{Choices: []any{"s", "m"}})),
	))
	f := form.NewForm(node)

	color, _ := f.Child("color")
	if _, ok := color.Widget().(*form.SelectWidget); !ok {
		t.Fatalf("expected select widget for choices, got %T", color.Widget())
	}

	html, err := f.Render(map[string]any{"color": "green"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		`<option value="red">red</option>`,
		`<option value="green" selected>green</option>`,
		`<select name="size" id="field-size"><option value="" selected></option>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("select render missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, `<select name="color" id="field-color" required><option value=""`) {
		t.Fatalf("required select must not offer an empty option:\n%s", html)
	}

	_, err = f.Validate([]pstruct.Pair{pstruct.P("color", "blue")})
	if err == nil {
		t.Fatalf("expected choice outside OneOf to fail")
	}
}

func TestCheckboxWidget_RoundTrip(t *testing.T) {
	node := schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("subscribe", schema.Boolean{}, schema.WithDefault(true)),
	))
	f := form.NewForm(node)

	html, err := f.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `value="true" id="field-subscribe" checked`) {
		t.Fatalf("expected default to check the box:\n%s", html)
	}

	unchecked, err := f.Validate(nil)
	if err != nil {
		t.Fatalf("validate unchecked: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"subscribe": false}, unchecked); diff != "" {
		t.Fatalf("unchecked mismatch (-want +got):\n%s", diff)
	}

	checked, err := f.Validate([]pstruct.Pair{pstruct.P("subscribe", "true")})
	if err != nil {
		t.Fatalf("validate checked: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"subscribe": true}, checked); diff != "" {
		t.Fatalf("checked mismatch (-want +got):\n%s", diff)
	}
}

func TestPasswordWidget_NeverEchoes(t *testing.T) {
	node := schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("secret", schema.String{}, schema.WithWidget(form.WidgetPassword)),
	))
	f := form.NewForm(node)

	html, err := f.Render(map[string]any{"secret": "hunter2"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "hunter2") {
		t.Fatalf("password must not be echoed:\n%s", html)
	}
	if !strings.Contains(html, `type="password" name="secret"`) {
		t.Fatalf("expected password input:\n%s", html)
	}
}

func TestTextAreaAndHiddenWidgets(t *testing.T) {
	node := schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("bio", schema.String{}, schema.WithValidator(schema.Length{Max: 2000})),
		schema.NewNode("token", schema.String{}, schema.WithWidget(form.WidgetHidden)),
	))
	f := form.NewForm(node)

	bio, _ := f.Child("bio")
	if _, ok := bio.Widget().(*form.TextAreaWidget); !ok {
		t.Fatalf("expected textarea for long text, got %T", bio.Widget())
	}

	html, err := f.Render(map[string]any{"bio": "<hello>", "token": "abc"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, `>&lt;hello&gt;</textarea>`) {
		t.Fatalf("expected escaped textarea body:\n%s", html)
	}
	if !strings.Contains(html, `<input type="hidden" name="token" value="abc" id="field-token"/>`) {
		t.Fatalf("expected bare hidden input:\n%s", html)
	}
	if strings.Contains(html, `id="item-field-token"`) {
		t.Fatalf("hidden inputs must not be wrapped in a field item:\n%s", html)
	}
}

func TestTextInputWidget_Deserialize(t *testing.T) {
	cases := []struct {
		name   string
		widget *form.TextInputWidget
		input  any
		want   any
	}{
		{name: "absent", widget: &form.TextInputWidget{}, input: nil, want: nil},
		{name: "empty kept", widget: &form.TextInputWidget{}, input: "", want: ""},
		{name: "trimmed", widget: &form.TextInputWidget{}, input: "  red ", want: "red"},
		{name: "keep whitespace", widget: &form.TextInputWidget{KeepWhitespace: true}, input: " red ", want: " red "},
		{name: "non string passes through", widget: &form.TextInputWidget{}, input: []any{"a"}, want: []any{"a"}},
	}

	field := form.NewField(schema.NewNode("color", schema.String{}))
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.widget.Deserialize(field, tc.input)
			if err != nil {
				t.Fatalf("deserialize: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSequenceWidget_MinLenAndPrototype(t *testing.T) {
	node := schema.NewNode("", schema.Mapping{}, schema.WithChildren(
		schema.NewNode("tags", schema.Sequence{}, schema.Optional(nil), schema.WithChildren(
			schema.NewNode("tag", schema.String{}, schema.WithDefault("new")),
		)),
	))
	f := form.NewForm(node)
	tags, _ := f.Child("tags")
	tags.SetWidget(&form.SequenceWidget{MinLen: 2})

	html, err := f.Render(nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		`id="field-tags-0"`,
		`id="field-tags-1"`,
		`<template class="sequence-prototype"><input type="text" name="tag" value="new" id="field-tags-new"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("sequence render missing %q:\n%s", want, html)
		}
	}

	got, err := f.Validate([]pstruct.Pair{pstruct.StartSequence("tags"), pstruct.EndMarker("tags")})
	if err != nil {
		t.Fatalf("validate empty sequence: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"tags": []any{}}, got); diff != "" {
		t.Fatalf("empty sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestField_UseWidget(t *testing.T) {
	field := form.NewField(schema.NewNode("notes", schema.String{}))
	if err := field.UseWidget(form.WidgetTextArea); err != nil {
		t.Fatalf("use widget: %v", err)
	}
	if _, ok := field.Widget().(*form.TextAreaWidget); !ok {
		t.Fatalf("expected textarea, got %T", field.Widget())
	}
	if err := field.UseWidget("nope"); err == nil {
		t.Fatalf("expected unknown widget error")
	}
}
