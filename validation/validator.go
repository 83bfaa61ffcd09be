// Package validation checks an OpenAPI document against the schema grammar
// for its dialect and against structural rules the grammar cannot express:
// duplicate operation IDs, unresolved path parameters, required/properties
// agreement, and parameter duplication.
package validation

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/oasvalidator/oasvalidator/dialect"
	"github.com/oasvalidator/oasvalidator/document"
	"github.com/oasvalidator/oasvalidator/resolver"
)

// SpecValidator validates OpenAPI documents. A single instance may be used
// for any number of documents; every Validate or IterErrors call runs an
// independent pass with its own resolver and operation-ID registry.
type SpecValidator struct {
	handlers      map[string]resolver.Handler
	dialectLoader gojsonschema.JSONLoader

	compileOnce sync.Once
	compiled    *gojsonschema.Schema
	compileErr  error
}

// Option configures a SpecValidator.
type Option func(v *SpecValidator)

// WithHandler registers a document handler for a URI scheme, extending or
// overriding the default file and http(s) handlers.
func WithHandler(scheme string, handler resolver.Handler) Option {
	return func(v *SpecValidator) {
		v.handlers[scheme] = handler
	}
}

// WithDialectSchema overrides the structural meta-schema used for the
// whole-document conformance pass.
func WithDialectSchema(loader gojsonschema.JSONLoader) Option {
	return func(v *SpecValidator) {
		v.dialectLoader = loader
	}
}

// NewSpecValidator creates a validator for OpenAPI documents. String format
// validation is not configured per instance: gojsonschema's format-checker
// registry is process-wide, and dialect.SetFormatChecks toggles it for
// every validator in the process.
func NewSpecValidator(opts ...Option) *SpecValidator {
	v := &SpecValidator{
		handlers:      map[string]resolver.Handler{},
		dialectLoader: dialect.SchemaLoader(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate runs a pass over doc and returns the first finding, or nil when
// the document is clean. Resolution failures abort the pass and are
// returned as-is, distinguishable from findings with errors.Is against the
// resolver and validation sentinels.
func (v *SpecValidator) Validate(doc interface{}, baseURI string) error {
	var first *Error
	if err := v.IterErrors(doc, baseURI, func(e *Error) bool {
		first = e
		return false
	}); err != nil {
		return err
	}

	if first != nil {
		return first
	}

	return nil
}

// IterErrors streams every finding of one pass into sink, in traversal
// order: the whole-document conformance pass first, then paths, then
// components. The sink may stop the traversal by returning false. The
// returned error is non-nil only for fatal failures, never for findings.
func (v *SpecValidator) IterErrors(doc interface{}, baseURI string, sink ErrorSink) error {
	schema, err := v.dialectSchema()
	if err != nil {
		return err
	}

	res, err := resolver.New(baseURI, doc, v.handlers)
	if err != nil {
		return err
	}

	p := &pass{
		root:    doc,
		deref:   &dereferencer{resolver: res},
		seenIDs: newOperationIDRegistry(),
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.Wrap(err, "document conformance check")
	}

	for _, violation := range result.Errors() {
		if !sink(&Error{Kind: SchemaViolation, Message: resultErrorMessage(violation)}) {
			return nil
		}
	}

	root, _ := document.AsObject(doc)

	if ok, err := p.iterPathsErrors(root["paths"], sink); err != nil || !ok {
		return err
	}

	if ok, err := p.iterComponentsErrors(root["components"], sink); err != nil || !ok {
		return err
	}

	return nil
}

// Errors collects every finding of one pass.
func (v *SpecValidator) Errors(doc interface{}, baseURI string) ([]*Error, error) {
	var errs []*Error
	if err := v.IterErrors(doc, baseURI, func(e *Error) bool {
		errs = append(errs, e)
		return true
	}); err != nil {
		return nil, err
	}

	return errs, nil
}

func (v *SpecValidator) dialectSchema() (*gojsonschema.Schema, error) {
	v.compileOnce.Do(func() {
		v.compiled, v.compileErr = gojsonschema.NewSchema(v.dialectLoader)
		if v.compileErr != nil {
			v.compileErr = errors.Wrap(v.compileErr, "compile dialect schema")
		}
	})

	return v.compiled, v.compileErr
}

// pass holds the state of one validation traversal. Each iter*Errors
// method dereferences its own node, performs its local checks, pushes
// findings into the sink, and reports whether the traversal should
// continue. Fatal resolution failures travel on the error return.
type pass struct {
	root    interface{}
	deref   *dereferencer
	seenIDs *operationIDRegistry
}

func resultErrorMessage(violation gojsonschema.ResultError) string {
	field := violation.Field()
	if field == "" || field == "(root)" {
		return violation.Description()
	}

	return fmt.Sprintf("%s: %s", field, violation.Description())
}

// sortedKeys keeps map traversal deterministic so error streams are
// reproducible run to run.
func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}

	sort.Strings(keys)
	return keys
}
