// Package dialect carries the schema grammar configuration for the generic
// conformance engine: the structural meta-schema the whole document is
// checked against and the string format checks applied during value
// validation.
package dialect

import (
	_ "embed"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed openapi3.schema.json
var openapi3Schema string

// SchemaLoader returns a loader for the OpenAPI 3.x structural meta-schema.
func SchemaLoader() gojsonschema.JSONLoader {
	return gojsonschema.NewStringLoader(openapi3Schema)
}

// formatCheckers is the set of string formats validated during value
// conformance when format checks are enabled.
var formatCheckers = map[string]gojsonschema.FormatChecker{
	"date-time": gojsonschema.DateTimeFormatChecker{},
	"email":     gojsonschema.EmailFormatChecker{},
	"hostname":  gojsonschema.HostnameFormatChecker{},
	"ipv4":      gojsonschema.IPV4FormatChecker{},
	"ipv6":      gojsonschema.IPV6FormatChecker{},
	"uri":       gojsonschema.URIFormatChecker{},
	"uuid":      gojsonschema.UUIDFormatChecker{},
}

// SetFormatChecks toggles string format validation. The checker chain in
// gojsonschema is a process-wide registry, so this applies to every
// validator in the process.
func SetFormatChecks(enabled bool) {
	for name, checker := range formatCheckers {
		if enabled {
			gojsonschema.FormatCheckers.Add(name, checker)
		} else {
			gojsonschema.FormatCheckers.Remove(name)
		}
	}
}
