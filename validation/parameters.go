package validation

import (
	"fmt"

	"github.com/oasvalidator/oasvalidator/document"
)

type parameterKey struct {
	name     string
	location string
}

// iterParametersErrors validates each parameter in a list and reports
// repeats of a (name, location) pair. The first occurrence claims the
// pair; every later occurrence is reported where it appears.
func (p *pass) iterParametersErrors(parameters []interface{}, sink ErrorSink) (bool, error) {
	seen := map[parameterKey]struct{}{}
	for _, parameter := range parameters {
		parameterDeref, err := p.deref.dereference(parameter)
		if err != nil {
			return false, err
		}

		if ok, err := p.iterParameterErrors(parameterDeref, sink); err != nil || !ok {
			return ok, err
		}

		obj, ok := document.AsObject(parameterDeref)
		if !ok {
			continue
		}

		name, ok := document.StringField(obj, "name")
		if !ok {
			// Nameless parameters are the conformance pass's finding.
			continue
		}

		location, _ := document.StringField(obj, "in")
		key := parameterKey{name: name, location: location}
		if _, dup := seen[key]; dup {
			message := fmt.Sprintf("duplicate parameter %q in %q", name, location)
			if !sink(&Error{Kind: ParameterDuplicate, Message: message}) {
				return false, nil
			}
			continue
		}

		seen[key] = struct{}{}
	}

	return true, nil
}

// iterParameterErrors validates a single, already dereferenced parameter:
// its embedded schema, and a legacy top-level default carried over from
// the 2.0 dialect.
func (p *pass) iterParameterErrors(parameter interface{}, sink ErrorSink) (bool, error) {
	obj, ok := document.AsObject(parameter)
	if !ok {
		return true, nil
	}

	if schema, declared := obj["schema"]; declared {
		if ok, err := p.iterSchemaErrors(schema, true, sink); err != nil || !ok {
			return ok, err
		}
	}

	if defaultValue, declared := obj["default"]; declared && defaultValue != nil {
		// The parameter node doubles as the schema for its own default.
		if ok, err := p.iterValueErrors(obj, defaultValue, sink); err != nil || !ok {
			return ok, err
		}
	}

	return true, nil
}
