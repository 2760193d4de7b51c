package testsupport

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formtree/pkg/schema"
)

// MustParseSchema builds a schema tree from an inline JSON or YAML document.
// Testing helpers fail the test on error to keep table tests concise.
func MustParseSchema(t *testing.T, document string) *schema.Node {
	t.Helper()

	node, err := schema.Parse([]byte(document))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return node
}

// MustLoadSchema loads a schema document from fsys.
func MustLoadSchema(t *testing.T, fsys fs.FS, path string) *schema.Node {
	t.Helper()

	node, err := schema.LoadFS(fsys, path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return node
}

// WriteFixture writes data under a fresh temp directory and returns the
// file path.
func WriteFixture(t *testing.T, name string, data string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

// CompareValues returns a diff string if the values differ.
func CompareValues(want, got any) string {
	return cmp.Diff(want, got)
}

// AssertContainsAll fails the test when html lacks any of the fragments.
func AssertContainsAll(t *testing.T, html string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(html, fragment) {
			t.Fatalf("output missing %q:\n%s", fragment, html)
		}
	}
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
