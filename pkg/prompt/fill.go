// Package prompt fills a form field tree interactively on a terminal and
// returns the answers as submission pairs, so the regular form validation
// path applies unchanged.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formtree/pkg/form"
	"github.com/goliatone/go-formtree/pkg/pstruct"
	"github.com/goliatone/go-formtree/pkg/schema"
)

const noneOption = "(none)"

// Fill prompts for every field below root and returns the answers as pairs
// in document order, including mapping and sequence markers.
func Fill(ctx context.Context, driver Driver, root *form.Field) ([]pstruct.Pair, error) {
	if driver == nil {
		return nil, errors.New("prompt: driver is required")
	}
	if root == nil {
		return nil, errors.New("prompt: field is required")
	}
	f := &filler{driver: driver}
	for _, child := range root.Children() {
		if err := f.field(ctx, child); err != nil {
			return nil, err
		}
	}
	return f.pairs, nil
}

// Run fills and validates root, reporting validation messages through the
// driver and prompting again up to attempts times.
func Run(ctx context.Context, driver Driver, root *form.Field, attempts int) (any, error) {
	if attempts < 1 {
		attempts = 1
	}
	var last error
	for range attempts {
		pairs, err := Fill(ctx, driver, root)
		if err != nil {
			return nil, err
		}
		appstruct, err := root.ValidateContext(ctx, pairs)
		if err == nil {
			return appstruct, nil
		}
		var failure *form.ValidationFailure
		if !errors.As(err, &failure) {
			return nil, err
		}
		if err := report(ctx, driver, failure); err != nil {
			return nil, err
		}
		last = err
	}
	return nil, last
}

func report(ctx context.Context, driver Driver, failure *form.ValidationFailure) error {
	messages := failure.Messages()
	for _, path := range failure.Paths() {
		label := path
		if label == "" {
			label = "form"
		}
		if err := driver.Info(ctx, fmt.Sprintf("%s: %s", label, strings.Join(messages[path], "; "))); err != nil {
			return err
		}
	}
	return nil
}

type filler struct {
	driver Driver
	pairs  []pstruct.Pair
}

func (f *filler) add(pairs ...pstruct.Pair) {
	f.pairs = append(f.pairs, pairs...)
}

func (f *filler) field(ctx context.Context, field *form.Field) error {
	switch widget := field.Widget().(type) {
	case *form.HiddenWidget:
		f.add(pstruct.P(field.Name, text(field.Default())))
		return nil
	case *form.MappingWidget:
		return f.mapping(ctx, field)
	case *form.SequenceWidget:
		return f.sequence(ctx, field, widget)
	case *form.CheckboxWidget:
		return f.checkbox(ctx, field, widget)
	case *form.SelectWidget:
		return f.choice(ctx, field, widget)
	case *form.PasswordWidget:
		answer, err := f.driver.Password(ctx, InputConfig{
			Message:   field.Title,
			Help:      field.Description,
			Validator: validatorFor(field),
		})
		if err != nil {
			return err
		}
		f.add(pstruct.P(field.Name, answer))
		return nil
	case *form.TextAreaWidget:
		answer, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message: field.Title,
			Help:    field.Description,
			Default: text(field.Default()),
		})
		if err != nil {
			return err
		}
		f.add(pstruct.P(field.Name, answer))
		return nil
	default:
		answer, err := f.driver.Input(ctx, InputConfig{
			Message:   field.Title,
			Help:      field.Description,
			Default:   text(field.Default()),
			Validator: validatorFor(field),
		})
		if err != nil {
			return err
		}
		f.add(pstruct.P(field.Name, answer))
		return nil
	}
}

func (f *filler) mapping(ctx context.Context, field *form.Field) error {
	if field.Title != "" {
		if err := f.driver.Info(ctx, field.Title); err != nil {
			return err
		}
	}
	f.add(pstruct.StartMapping(field.Name))
	for _, child := range field.Children() {
		if err := f.field(ctx, child); err != nil {
			return err
		}
	}
	f.add(pstruct.EndMarker(field.Name))
	return nil
}

func (f *filler) sequence(ctx context.Context, field *form.Field, widget *form.SequenceWidget) error {
	children := field.Children()
	if len(children) != 1 {
		return fmt.Errorf("prompt: sequence %q: %w", field.Name, schema.ErrNoItemNode)
	}
	item := children[0]

	f.add(pstruct.StartSequence(field.Name))
	for i := 0; ; i++ {
		more, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Add %s to %s?", strings.ToLower(item.Title), field.Title),
			Default: i < widget.MinLen,
		})
		if err != nil {
			return err
		}
		if !more {
			break
		}
		if err := f.field(ctx, item); err != nil {
			return err
		}
	}
	f.add(pstruct.EndMarker(field.Name))
	return nil
}

func (f *filler) checkbox(ctx context.Context, field *form.Field, widget *form.CheckboxWidget) error {
	checked, err := f.driver.Confirm(ctx, ConfirmConfig{
		Message: field.Title,
		Help:    field.Description,
		Default: text(field.Default()) == widget.CheckedValue(),
	})
	if err != nil {
		return err
	}
	if checked {
		f.add(pstruct.P(field.Name, widget.CheckedValue()))
	}
	return nil
}

func (f *filler) choice(ctx context.Context, field *form.Field, widget *form.SelectWidget) error {
	choices := widget.Choices(field)
	if !field.Required {
		choices = append([]form.Choice{{Value: "", Label: noneOption}}, choices...)
	}
	if len(choices) == 0 {
		return fmt.Errorf("prompt: select %q has no choices", field.Name)
	}

	current := text(field.Default())
	labels := make([]string, len(choices))
	defaultIndex := 0
	for i, choice := range choices {
		labels[i] = choice.Label
		if choice.Value == current {
			defaultIndex = i
		}
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      field.Title,
		Help:         field.Description,
		Options:      labels,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(choices) {
		return fmt.Errorf("prompt: select %q: invalid choice %d", field.Name, idx)
	}
	f.add(pstruct.P(field.Name, choices[idx].Value))
	return nil
}

// validatorFor checks a single answer against the field's node so errors
// surface while the user is still on the prompt.
func validatorFor(field *form.Field) func(string) error {
	node := field.Schema()
	return func(answer string) error {
		_, err := node.Deserialize(strings.TrimSpace(answer))
		var invalid *schema.Invalid
		if errors.As(err, &invalid) {
			return errors.New(invalid.Error())
		}
		return err
	}
}

func text(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
