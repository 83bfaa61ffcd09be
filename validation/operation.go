package validation

import (
	"fmt"
	"strings"

	"github.com/oasvalidator/oasvalidator/document"
)

// operationIDRegistry tracks operationId values seen across one pass.
// Operations without an ID advance the registry for bookkeeping but never
// collide with each other.
type operationIDRegistry struct {
	ids       map[string]struct{}
	anonymous int
}

func newOperationIDRegistry() *operationIDRegistry {
	return &operationIDRegistry{ids: map[string]struct{}{}}
}

// observe records an operation's ID and reports whether it was already
// present.
func (r *operationIDRegistry) observe(id string, declared bool) bool {
	if !declared {
		r.anonymous++
		return false
	}

	if _, seen := r.ids[id]; seen {
		return true
	}

	r.ids[id] = struct{}{}
	return false
}

// iterOperationErrors validates one HTTP operation: operation-ID
// uniqueness, its own parameter list, and resolvability of every URL
// template placeholder against the declared path parameters.
func (p *pass) iterOperationErrors(url, method string, operation interface{}, pathParameters []interface{}, sink ErrorSink) (bool, error) {
	operationDeref, err := p.deref.dereference(operation)
	if err != nil {
		return false, err
	}

	obj, ok := document.AsObject(operationDeref)
	if !ok {
		return true, nil
	}

	id, declared := document.StringField(obj, "operationId")
	if p.seenIDs.observe(id, declared) {
		message := fmt.Sprintf("operation ID %q for %q in %q is not unique", id, method, url)
		if !sink(&Error{Kind: DuplicateOperationID, Message: message}) {
			return false, nil
		}
	}

	parameters, _ := document.AsSlice(obj["parameters"])
	if ok, err := p.iterParametersErrors(parameters, sink); err != nil || !ok {
		return ok, err
	}

	declaredNames, err := p.pathParameterNames(pathParameters, parameters)
	if err != nil {
		return false, err
	}

	for _, placeholder := range templateParameters(url) {
		if _, ok := declaredNames[placeholder]; ok {
			continue
		}

		message := fmt.Sprintf("path parameter %q for %q operation in %q is not declared", placeholder, method, url)
		if !sink(&Error{Kind: UnresolvableParameter, Message: message}) {
			return false, nil
		}
	}

	return true, nil
}

// pathParameterNames collects the names of in: path parameters across the
// given lists. Location is what qualifies an entry; name equality alone
// resolves placeholders.
func (p *pass) pathParameterNames(lists ...[]interface{}) (map[string]struct{}, error) {
	names := map[string]struct{}{}
	for _, parameters := range lists {
		for _, parameter := range parameters {
			parameterDeref, err := p.deref.dereference(parameter)
			if err != nil {
				return nil, err
			}

			obj, ok := document.AsObject(parameterDeref)
			if !ok {
				continue
			}

			if location, _ := document.StringField(obj, "in"); location != "path" {
				continue
			}

			if name, ok := document.StringField(obj, "name"); ok {
				names[name] = struct{}{}
			}
		}
	}

	return names, nil
}

// templateParameters extracts the {name} placeholders from a URL template
// in order of appearance.
func templateParameters(url string) []string {
	var names []string
	for i := 0; i < len(url); i++ {
		if url[i] != '{' {
			continue
		}

		end := strings.IndexByte(url[i+1:], '}')
		if end < 0 {
			break
		}

		if name := url[i+1 : i+1+end]; name != "" {
			names = append(names, name)
		}

		i += end + 1
	}

	return names
}
