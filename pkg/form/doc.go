// Package form mirrors a schema tree into a tree of Fields that know how to
// render themselves through widgets and how to validate a form submission
// back against the schema.
//
// A typical request handler builds a Form from a schema node, renders it on
// GET and validates on POST:
//
//	f := form.NewForm(node, form.WithButtonNames("submit"))
//	pairs, err := pstruct.ReadRequest(r)
//	if err != nil { ... }
//	appstruct, err := f.Validate(pairs)
//	var failure *form.ValidationFailure
//	if errors.As(err, &failure) {
//		html, _ := failure.Render() // same values, annotated with errors
//		...
//	}
//
// Validation runs in two phases: the root widget turns the parsed submission
// (pstruct) into a cstruct, then the schema turns the cstruct into
// application values. Only schema rejections become a *ValidationFailure;
// any other error is returned unchanged and indicates a defect.
//
// Widgets and defaults are resolved lazily and at most once per Field. A
// Field tree is not safe for concurrent mutation; Clone a tree per request
// instead. Clones share the read-only schema.
package form
