// Package document provides helpers for working with untyped OpenAPI
// document trees: loading them from JSON or YAML and inspecting nodes
// without committing to a typed model.
package document

import (
	"sigs.k8s.io/yaml"
)

// Load parses a JSON or YAML document into an untyped tree. Objects decode
// to map[string]interface{} regardless of the source syntax, so the same
// tree shape flows through resolution and validation.
func Load(data []byte) (interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// IsRef reports whether node is a reference node, an object carrying a
// "$ref" key with a string value. Sibling keys are ignored.
func IsRef(node interface{}) bool {
	_, ok := Ref(node)
	return ok
}

// Ref extracts the reference string from a reference node.
func Ref(node interface{}) (string, bool) {
	obj, ok := node.(map[string]interface{})
	if !ok {
		return "", false
	}

	ref, ok := obj["$ref"].(string)
	return ref, ok
}

// AsObject returns node as an object, if it is one.
func AsObject(node interface{}) (map[string]interface{}, bool) {
	obj, ok := node.(map[string]interface{})
	return obj, ok
}

// AsSlice returns node as an array, if it is one.
func AsSlice(node interface{}) ([]interface{}, bool) {
	slice, ok := node.([]interface{})
	return slice, ok
}

// StringField returns the string held under key, if present.
func StringField(obj map[string]interface{}, key string) (string, bool) {
	value, ok := obj[key].(string)
	return value, ok
}

// StringSlice collects the string members of an array node. Non-string
// members are skipped.
func StringSlice(node interface{}) []string {
	slice, ok := AsSlice(node)
	if !ok {
		return nil
	}

	values := make([]string, 0, len(slice))
	for _, member := range slice {
		if value, ok := member.(string); ok {
			values = append(values, value)
		}
	}

	return values
}
