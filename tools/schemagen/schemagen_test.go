package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/autoimport/pkg/config"
)

func TestGeneratedSchemaMatchesEmbedded(t *testing.T) {
	t.Parallel()

	want, err := os.ReadFile(filepath.Join("..", "..", "pkg", "config", "schema.json"))
	require.NoError(t, err)

	got, err := marshalSchema(generateSchema(schemaTitle, config.Settings{}))
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got), "run go generate ./pkg/config")
}

func TestTypeToSchema(t *testing.T) {
	t.Parallel()

	type nested struct {
		Name  string   `json:"name"`
		Skip  string   `json:"-"`
		Count *int     `json:"count,omitempty"`
		Tags  []string `json:"tags"`
		Ratio float64  `json:"ratio" jsonschema:"number|string"`
	}

	schema := generateSchema("nested", &nested{})

	assert.Equal(t, false, schema.AdditionalProperties)
	require.Len(t, schema.Properties, 4)
	assert.Equal(t, "string", schema.Properties["name"].Type)
	assert.Equal(t, "integer", schema.Properties["count"].Type)
	assert.Equal(t, "string", schema.Properties["tags"].Items.Type)
	assert.Equal(t, []string{"number", "string"}, schema.Properties["ratio"].Type)

	mapSchema := typeToSchema(reflect.TypeOf(map[string]bool{}))
	assert.Equal(t, &Schema{Type: "boolean"}, mapSchema.AdditionalProperties)
}
