// internal/api/schema.go
package api

import (
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// previewSchema validates the shape of POST /api/v1/match/preview payloads
// before they are decoded. Profile sub-objects are permissive on purpose:
// unknown fields are ignored, only the identifying fields are required.
const previewSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["brand", "event"],
	"properties": {
		"brand": {
			"type": "object",
			"required": ["brand_org_id", "brand_name"],
			"properties": {
				"brand_org_id": {"type": "integer", "minimum": 1},
				"brand_name": {"type": "string", "minLength": 1},
				"geographic_focus_type": {
					"type": "string",
					"enum": ["local", "state", "national", ""]
				},
				"spend_per_event_min": {"type": ["number", "null"]},
				"spend_per_event_max": {"type": ["number", "null"]}
			}
		},
		"event": {
			"type": "object",
			"required": ["event_org_id", "event_name"],
			"properties": {
				"event_org_id": {"type": "integer", "minimum": 1},
				"event_name": {"type": "string", "minLength": 1},
				"city_id": {"type": ["integer", "null"]},
				"package_min": {"type": ["number", "null"]},
				"package_max": {"type": ["number", "null"]}
			}
		}
	}
}`

var previewSchemaLoader = gojsonschema.NewStringLoader(previewSchema)

// validatePreviewPayload reads and validates the request body. Returns the
// raw body for decoding, a human-readable validation failure when the schema
// rejects it, or an error when the body cannot be read or parsed at all.
func validatePreviewPayload(body io.Reader) ([]byte, string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, "", err
	}

	result, err := gojsonschema.Validate(previewSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, "", err
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return raw, strings.Join(details, "; "), nil
	}
	return raw, "", nil
}
