package validation

import (
	"github.com/oasvalidator/oasvalidator/document"
)

// httpMethods are the operation keys recognized on a path item.
var httpMethods = []string{
	"get", "put", "post", "delete", "options", "head", "patch", "trace",
}

// iterPathsErrors walks every declared URL template. One operation-ID
// registry spans the whole paths tree.
func (p *pass) iterPathsErrors(paths interface{}, sink ErrorSink) (bool, error) {
	pathsDeref, err := p.deref.dereference(paths)
	if err != nil {
		return false, err
	}

	obj, ok := document.AsObject(pathsDeref)
	if !ok {
		return true, nil
	}

	for _, url := range sortedKeys(obj) {
		if ok, err := p.iterPathItemErrors(url, obj[url], sink); err != nil || !ok {
			return ok, err
		}
	}

	return true, nil
}

// iterPathItemErrors validates the path-level parameters, then dispatches
// every declared HTTP method to the operation validator along with those
// parameters.
func (p *pass) iterPathItemErrors(url string, pathItem interface{}, sink ErrorSink) (bool, error) {
	pathItemDeref, err := p.deref.dereference(pathItem)
	if err != nil {
		return false, err
	}

	obj, ok := document.AsObject(pathItemDeref)
	if !ok {
		return true, nil
	}

	parameters, _ := document.AsSlice(obj["parameters"])
	if ok, err := p.iterParametersErrors(parameters, sink); err != nil || !ok {
		return ok, err
	}

	for _, method := range httpMethods {
		operation, declared := obj[method]
		if !declared {
			continue
		}

		if ok, err := p.iterOperationErrors(url, method, operation, parameters, sink); err != nil || !ok {
			return ok, err
		}
	}

	return true, nil
}

// iterComponentsErrors validates every named schema under
// components.schemas. The path traversal's registry is not needed here.
func (p *pass) iterComponentsErrors(components interface{}, sink ErrorSink) (bool, error) {
	componentsDeref, err := p.deref.dereference(components)
	if err != nil {
		return false, err
	}

	obj, ok := document.AsObject(componentsDeref)
	if !ok {
		return true, nil
	}

	schemasDeref, err := p.deref.dereference(obj["schemas"])
	if err != nil {
		return false, err
	}

	schemas, ok := document.AsObject(schemasDeref)
	if !ok {
		return true, nil
	}

	for _, name := range sortedKeys(schemas) {
		if ok, err := p.iterSchemaErrors(schemas[name], true, sink); err != nil || !ok {
			return ok, err
		}
	}

	return true, nil
}
