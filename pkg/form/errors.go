package form

import (
	"errors"
	"sort"
	"strings"

	"github.com/goliatone/go-formtree/pkg/schema"
)

// ErrFieldNotFound is returned when a child lookup names no child.
var ErrFieldNotFound = errors.New("form: field not found")

// ValidationFailure is returned by Validate when the schema rejects a
// submission. Field is the tree the submission was validated against, with
// errors attached; Cstruct is the intermediate value the widgets produced.
type ValidationFailure struct {
	Field   *Field
	Cstruct any
	Err     *schema.Invalid
}

func (e *ValidationFailure) Error() string {
	if e == nil || e.Err == nil {
		return "form: validation failed"
	}
	return "form: validation failed: " + e.Err.Error()
}

func (e *ValidationFailure) Unwrap() error {
	if e == nil || e.Err == nil {
		return nil
	}
	return e.Err
}

// Render re-renders the failing tree with the submitted values, so the user
// sees their input annotated with error messages.
func (e *ValidationFailure) Render() (string, error) {
	return e.Field.Render(e.Cstruct)
}

// Messages returns the error messages keyed by dotted field path. Messages
// reported on the root are keyed by "".
func (e *ValidationFailure) Messages() map[string][]string {
	if e == nil || e.Err == nil {
		return nil
	}
	flat := e.Err.AsMap()
	out := make(map[string][]string, len(flat))
	for path, joined := range flat {
		if messages := normalizeMessages(strings.Split(joined, "; ")); len(messages) > 0 {
			out[path] = messages
		}
	}
	return out
}

// Paths returns the dotted paths carrying errors, sorted.
func (e *ValidationFailure) Paths() []string {
	messages := e.Messages()
	paths := make([]string, 0, len(messages))
	for path := range messages {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
