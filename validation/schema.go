package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/oasvalidator/oasvalidator/document"
)

// iterSchemaErrors validates a schema node itself. requireProperties is
// false while recursing through allOf members: a subschema combined via
// allOf need not be self-sufficient for the required/properties check,
// only the composed schema must be.
func (p *pass) iterSchemaErrors(schema interface{}, requireProperties bool, sink ErrorSink) (bool, error) {
	schemaDeref, err := p.deref.dereference(schema)
	if err != nil {
		return false, err
	}

	obj, ok := document.AsObject(schemaDeref)
	if !ok {
		return true, nil
	}

	if members, ok := document.AsSlice(obj["allOf"]); ok {
		for _, member := range members {
			if ok, err := p.iterSchemaErrors(member, false, sink); err != nil || !ok {
				return ok, err
			}
		}
	}

	if requireProperties {
		if extra := undefinedRequired(obj); len(extra) > 0 {
			message := fmt.Sprintf("required list references undefined properties: %s", strings.Join(extra, ", "))
			if !sink(&Error{Kind: ExtraParameters, Message: message}) {
				return false, nil
			}
		}
	}

	if defaultValue, declared := obj["default"]; declared {
		nullable, _ := obj["nullable"].(bool)
		if defaultValue != nil || !nullable {
			if ok, err := p.iterValueErrors(obj, defaultValue, sink); err != nil || !ok {
				return ok, err
			}
		}
	}

	return true, nil
}

// undefinedRequired returns the names in required with no matching entry
// in properties, sorted.
func undefinedRequired(schema map[string]interface{}) []string {
	required := document.StringSlice(schema["required"])
	if len(required) == 0 {
		return nil
	}

	properties, _ := document.AsObject(schema["properties"])

	var extra []string
	for _, name := range required {
		if _, defined := properties[name]; !defined {
			extra = append(extra, name)
		}
	}

	sort.Strings(extra)
	return extra
}

// valueSchemaKey is where compileValueSchema grafts the subschema into the
// wrapper document it compiles.
const valueSchemaKey = "x-value-schema"

// iterValueErrors delegates a (schema, value) pair to the generic
// conformance engine and flattens its violations into the error stream.
func (p *pass) iterValueErrors(schema interface{}, value interface{}, sink ErrorSink) (bool, error) {
	compiled, err := p.compileValueSchema(schema)
	if err != nil {
		return false, errors.Wrap(err, "compile schema for value check")
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return false, errors.Wrap(err, "value conformance check")
	}

	for _, violation := range result.Errors() {
		if !sink(&Error{Kind: SchemaViolation, Message: resultErrorMessage(violation)}) {
			return false, nil
		}
	}

	return true, nil
}

// compileValueSchema compiles a subschema in the root document's context so
// that references inside it resolve the way they do during traversal. The
// subschema is grafted into a wrapper document next to the root's reference
// targets, and every document the resolver has fetched is registered in the
// engine's schema pool for cross-document references.
func (p *pass) compileValueSchema(schema interface{}) (*gojsonschema.Schema, error) {
	prepared, err := p.prepareValueSchema(schema)
	if err != nil {
		return nil, err
	}

	wrapper := map[string]interface{}{
		"$ref":         "#/" + valueSchemaKey,
		valueSchemaKey: prepared,
	}

	if root, ok := document.AsObject(p.root); ok {
		for _, key := range []string{"components", "definitions"} {
			if node, declared := root[key]; declared {
				wrapper[key] = node
			}
		}
	}

	pool := gojsonschema.NewSchemaLoader()
	for uri, doc := range p.deref.resolver.Documents() {
		if uri == "" {
			continue
		}

		if err := pool.AddSchema(uri, gojsonschema.NewGoLoader(doc)); err != nil {
			return nil, errors.Wrapf(err, "register %q", uri)
		}
	}

	return pool.Compile(gojsonschema.NewGoLoader(wrapper))
}

// prepareValueSchema copies a schema node for compilation, resolving every
// nested reference against the current scope: the reference string is
// rewritten to its fully resolved form and the target document is fetched
// into the resolver's cache so the schema pool can serve it. The document
// itself is never modified.
func (p *pass) prepareValueSchema(node interface{}) (interface{}, error) {
	switch typed := node.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(typed))
		for key, member := range typed {
			if ref, ok := member.(string); ok && key == "$ref" {
				_, resolved, err := p.deref.resolver.Resolve(ref)
				if err != nil {
					return nil, err
				}

				out[key] = resolved.String()
				continue
			}

			prepared, err := p.prepareValueSchema(member)
			if err != nil {
				return nil, err
			}

			out[key] = prepared
		}

		return out, nil

	case []interface{}:
		out := make([]interface{}, len(typed))
		for i, member := range typed {
			prepared, err := p.prepareValueSchema(member)
			if err != nil {
				return nil, err
			}

			out[i] = prepared
		}

		return out, nil

	default:
		return node, nil
	}
}
