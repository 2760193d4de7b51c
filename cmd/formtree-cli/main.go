// Command formtree-cli renders forms from schema documents, lists OpenAPI
// operations, and fills forms interactively in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formtree/pkg/form"
	"github.com/goliatone/go-formtree/pkg/openapi"
	"github.com/goliatone/go-formtree/pkg/prompt"
	"github.com/goliatone/go-formtree/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formtree/pkg/schema"
)

const (
	modeRender     = "render"
	modePrompt     = "prompt"
	modeOperations = "operations"
)

type options struct {
	schemaPath string
	openapi    string
	operation  string
	mode       string
	action     string
	method     string
	buttons    string
	templates  string
	values     string
	output     string
	attempts   int
	verbose    bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("formtree: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.mode == modeOperations {
		return listOperations(ctx, opts, stdout)
	}

	node, err := loadSchema(ctx, opts)
	if err != nil {
		return err
	}
	f, err := buildForm(node, opts)
	if err != nil {
		return err
	}

	var payload []byte
	switch opts.mode {
	case modeRender:
		html, err := renderForm(f, opts.values)
		if err != nil {
			return err
		}
		payload = []byte(html)
	case modePrompt:
		appstruct, err := prompt.Run(ctx, prompt.NewSurveyDriver(), f.Field, opts.attempts)
		if err != nil {
			return err
		}
		payload, err = json.MarshalIndent(appstruct, "", "  ")
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}

	if opts.output == "" {
		_, err := fmt.Fprintln(stdout, string(payload))
		return err
	}
	if err := os.WriteFile(opts.output, payload, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Output written to %s\n", opts.output)
	return err
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("formtree-cli", flag.ContinueOnError)
	fs.StringVar(&opts.schemaPath, "schema", "", "schema document path (JSON or YAML)")
	fs.StringVar(&opts.openapi, "openapi", "", "OpenAPI document path")
	fs.StringVar(&opts.operation, "operation", "", "OpenAPI operation ID whose request body is rendered")
	fs.StringVar(&opts.mode, "mode", modeRender, "render, prompt or operations")
	fs.StringVar(&opts.action, "action", form.DefaultAction, "form action")
	fs.StringVar(&opts.method, "method", form.DefaultMethod, "form method")
	fs.StringVar(&opts.buttons, "buttons", form.DefaultButtonName, "comma separated button names")
	fs.StringVar(&opts.templates, "templates", "", "directory with template overrides")
	fs.StringVar(&opts.values, "values", "", "JSON file with values to prefill (render mode)")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.IntVar(&opts.attempts, "attempts", 3, "validation attempts in prompt mode")
	fs.BoolVar(&opts.verbose, "v", false, "log validation details to stderr")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch {
	case opts.schemaPath != "" && opts.openapi != "":
		return opts, errors.New("-schema and -openapi are mutually exclusive")
	case opts.schemaPath == "" && opts.openapi == "":
		return opts, errors.New("one of -schema or -openapi is required")
	case opts.openapi != "" && opts.operation == "" && opts.mode != modeOperations:
		return opts, errors.New("-operation is required with -openapi")
	case opts.mode == modeOperations && opts.openapi == "":
		return opts, errors.New("operations mode requires -openapi")
	}
	return opts, nil
}

func listOperations(ctx context.Context, opts options, stdout io.Writer) error {
	doc, err := openapi.LoadFile(ctx, opts.openapi)
	if err != nil {
		return err
	}
	for _, op := range doc.Operations() {
		marker := " "
		if op.HasBody {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-24s %-6s %s", marker, op.ID, op.Method, op.Path)
		if op.Summary != "" {
			line += "  " + op.Summary
		}
		if _, err := fmt.Fprintln(stdout, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func loadSchema(ctx context.Context, opts options) (*schema.Node, error) {
	if opts.schemaPath != "" {
		dir, base := filepath.Split(opts.schemaPath)
		if dir == "" {
			dir = "."
		}
		return schema.LoadFS(os.DirFS(dir), base)
	}
	doc, err := openapi.LoadFile(ctx, opts.openapi)
	if err != nil {
		return nil, err
	}
	return doc.RequestSchema(opts.operation)
}

func buildForm(node *schema.Node, opts options) (*form.Form, error) {
	formOpts := []form.Option{
		form.WithAction(opts.action),
		form.WithMethod(opts.method),
		form.WithButtonNames(splitList(opts.buttons)...),
	}
	if opts.templates != "" {
		renderer, err := form.NewRenderer(gotemplate.WithBaseDir(opts.templates))
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		formOpts = append(formOpts, form.WithRenderer(renderer))
	}
	if opts.verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		formOpts = append(formOpts, form.WithLogger(logger))
	}
	return form.NewForm(node, formOpts...), nil
}

func renderForm(f *form.Form, valuesPath string) (string, error) {
	if valuesPath == "" {
		return f.Render(nil)
	}
	data, err := os.ReadFile(valuesPath)
	if err != nil {
		return "", fmt.Errorf("read values: %w", err)
	}
	var appstruct any
	if err := json.Unmarshal(data, &appstruct); err != nil {
		return "", fmt.Errorf("decode values: %w", err)
	}
	return f.RenderAppstruct(appstruct)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
