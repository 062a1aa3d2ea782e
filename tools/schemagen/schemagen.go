// Package main generates the JSON schema of the autoimport configuration
// table from config.Settings.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/Sumatoshi-tech/autoimport/pkg/config"
)

const (
	draft07     = "http://json-schema.org/draft-07/schema#"
	schemaTitle = "autoimport configuration"
	typeTag     = "jsonschema"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Type                 any                `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`
}

var outputPath string

func main() {
	flag.StringVar(&outputPath, "o", "pkg/config/schema.json", "Output path for the schema")
	flag.Parse()

	if err := writeSchema(outputPath, generateSchema(schemaTitle, config.Settings{})); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", outputPath)
}

// generateSchema builds a closed object schema for the struct v.
func generateSchema(title string, v any) *Schema {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return &Schema{
		Schema:               draft07,
		Title:                title,
		Type:                 "object",
		Properties:           structToProperties(t),
		AdditionalProperties: false,
	}
}

func structToProperties(t reflect.Type) map[string]*Schema {
	props := make(map[string]*Schema)

	for i := range t.NumField() {
		field := t.Field(i)

		jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if jsonName == "-" || jsonName == "" {
			continue
		}

		fieldSchema := typeToSchema(field.Type)

		// A jsonschema tag lists the accepted types, separated by "|".
		if override := field.Tag.Get(typeTag); override != "" {
			types := strings.Split(override, "|")
			if len(types) == 1 {
				fieldSchema.Type = types[0]
			} else {
				fieldSchema.Type = types
			}
		}

		props[jsonName] = fieldSchema
	}

	return props
}

func typeToSchema(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		return &Schema{Type: "array", Items: typeToSchema(t.Elem())}

	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: typeToSchema(t.Elem())}

	case reflect.Struct:
		return &Schema{Type: "object", Properties: structToProperties(t)}

	case reflect.Ptr:
		return typeToSchema(t.Elem())

	default:
		return &Schema{Type: "object"}
	}
}

func marshalSchema(schema *Schema) ([]byte, error) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	return append(data, '\n'), nil
}

func writeSchema(path string, schema *Schema) error {
	data, err := marshalSchema(schema)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec // Schema is a public artifact.
}
