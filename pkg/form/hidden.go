package form

import (
	"fmt"
	"strings"
)

// HiddenField is a hidden input emitted inside the form tag, outside the
// schema. Hidden fields are not part of the validated appstruct.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken is Hidden for an anti-forgery token, for example
// CSRFToken("_csrf", token).
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// VersionField is Hidden for an optimistic locking version.
func VersionField(name string, version any) HiddenField {
	return Hidden(name, version)
}

// uniqueHidden drops unnamed fields. A repeated name keeps its first
// position and its last value.
func uniqueHidden(fields []HiddenField) []HiddenField {
	var out []HiddenField
	seen := make(map[string]int, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		if i, ok := seen[name]; ok {
			out[i].Value = field.Value
			continue
		}
		seen[name] = len(out)
		out = append(out, HiddenField{Name: name, Value: field.Value})
	}
	return out
}
