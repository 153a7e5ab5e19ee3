package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	engineErrors "github.com/guileen/gridsource/engine/errors"
)

const schemaDefinitions = `
	"definitions": {
		"sortModelItem": {
			"type": "object",
			"required": ["colId", "sort"],
			"properties": {
				"colId": {"type": "string"},
				"sort": {"type": "string"}
			}
		},
		"filterModelItem": {
			"type": "object",
			"required": ["filterType"],
			"properties": {
				"filterType": {"type": "string"},
				"filter": {"type": ["string", "null"]},
				"values": {
					"type": ["array", "null"],
					"items": {"type": ["string", "null"]}
				},
				"dateFrom": {"type": ["string", "null"]},
				"filterModels": {
					"type": ["array", "null"],
					"items": {
						"anyOf": [
							{"type": "null"},
							{"$ref": "#/definitions/filterModelItem"}
						]
					}
				}
			}
		},
		"blockRequest": {
			"type": "object",
			"required": ["startRow", "endRow"],
			"properties": {
				"startRow": {"type": "integer"},
				"endRow": {"type": "integer"},
				"sortModel": {
					"type": ["array", "null"],
					"items": {"$ref": "#/definitions/sortModelItem"}
				},
				"filterModel": {
					"type": ["object", "null"],
					"additionalProperties": {
						"anyOf": [
							{"type": "null"},
							{"$ref": "#/definitions/filterModelItem"}
						]
					}
				}
			}
		}
	}`

var (
	blockRequestSchema = mustCompile(`{
	"allOf": [{"$ref": "#/definitions/blockRequest"}],` + schemaDefinitions + `
}`)

	prefetchRequestSchema = mustCompile(`{
	"type": "object",
	"required": ["requests"],
	"properties": {
		"requests": {
			"type": "array",
			"items": {"$ref": "#/definitions/blockRequest"}
		}
	},` + schemaDefinitions + `
}`)
)

func mustCompile(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile request schema: %v", err))
	}
	return schema
}

// validateBody checks body against schema, reporting violations as a
// malformed request.
func validateBody(schema *gojsonschema.Schema, body []byte) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return engineErrors.NewMalformedRequestf("validate_request", "invalid JSON: %v", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return engineErrors.NewMalformedRequest("validate_request", strings.Join(errs, "; "))
}

// DecodeBlockRequest validates and decodes a block request body
func DecodeBlockRequest(body []byte) (BlockRequestBody, error) {
	var req BlockRequestBody
	if err := validateBody(blockRequestSchema, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, engineErrors.NewMalformedRequestf("decode_request", "%v", err)
	}
	return req, nil
}

// DecodePrefetchRequest validates and decodes a prefetch request body
func DecodePrefetchRequest(body []byte) (PrefetchRequestBody, error) {
	var req PrefetchRequestBody
	if err := validateBody(prefetchRequestSchema, body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, engineErrors.NewMalformedRequestf("decode_request", "%v", err)
	}
	return req, nil
}
