// Package openapi turns OpenAPI 3 request bodies into schema trees so a form
// can be rendered and validated for an API operation. Documents are parsed
// with kin-openapi; only the request body of the chosen operation is
// converted.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formtree/pkg/schema"
)

var (
	// ErrOperationNotFound is returned when no operation has the requested id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without a request schema.
	ErrNoRequestBody = errors.New("openapi: operation has no request body")
)

// Operation summarises one operation of a document.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	HasBody     bool
	Description string
}

// Option configures document loading.
type Option func(*options)

type options struct {
	externalRefs bool
	validate     bool
}

// WithExternalRefs allows $ref values that point outside the document.
func WithExternalRefs() Option {
	return func(o *options) {
		o.externalRefs = true
	}
}

// WithValidation validates the document after loading. Example values are
// not validated.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// Document is a loaded OpenAPI document.
type Document struct {
	api        *openapi3.T
	operations map[string]*openapi3.Operation
	summaries  []Operation
}

// LoadFile reads and loads the document at path.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("openapi: read document: %w", err)
	}
	return Load(ctx, data, opts...)
}

// Load parses a JSON or YAML OpenAPI 3 document.
func Load(ctx context.Context, data []byte, opts ...Option) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: cfg.externalRefs,
	}
	api, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if cfg.validate {
		if err := api.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	doc := &Document{
		api:        api,
		operations: make(map[string]*openapi3.Operation),
	}
	if api.Paths != nil {
		for path, item := range api.Paths.Map() {
			if item == nil {
				continue
			}
			doc.collect("GET", path, item.Get)
			doc.collect("PUT", path, item.Put)
			doc.collect("POST", path, item.Post)
			doc.collect("DELETE", path, item.Delete)
			doc.collect("PATCH", path, item.Patch)
		}
	}
	if len(doc.operations) == 0 {
		return nil, errors.New("openapi: document does not contain any operations")
	}
	sort.Slice(doc.summaries, func(i, j int) bool {
		return doc.summaries[i].ID < doc.summaries[j].ID
	})
	return doc, nil
}

func (d *Document) collect(method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	d.operations[id] = operation
	d.summaries = append(d.summaries, Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		HasBody:     requestSchemaRef(operation) != nil,
	})
}

// Title returns the document's info title.
func (d *Document) Title() string {
	if d.api.Info == nil {
		return ""
	}
	return d.api.Info.Title
}

// Operations lists the document's operations sorted by id.
func (d *Document) Operations() []Operation {
	return append([]Operation(nil), d.summaries...)
}

// RequestSchema converts the request body of the operation into a mapping
// schema rooted at an unnamed node.
func (d *Document) RequestSchema(operationID string) (*schema.Node, error) {
	operation, ok := d.operations[operationID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	ref := requestSchemaRef(operation)
	if ref == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}
	node, err := ConvertSchema("", ref, true)
	if err != nil {
		return nil, fmt.Errorf("openapi: %s: %w", operationID, err)
	}
	if node.Description == "" {
		node.Description = operation.Summary
	}
	return node, nil
}

func requestSchemaRef(operation *openapi3.Operation) *openapi3.SchemaRef {
	body := operation.RequestBody
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/x-www-form-urlencoded", "multipart/form-data", "application/json"} {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema
		}
	}
	return nil
}
