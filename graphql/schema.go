package graphql

import (
	_ "embed"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var schemaSource string

// loadedSchema is the fixed schema, parsed once at process start. The
// schema shape never changes at runtime.
var loadedSchema = gqlparser.MustLoadSchema(&ast.Source{
	Name:  "schema.graphql",
	Input: schemaSource,
})

// Schema returns the parsed GraphQL schema.
func Schema() *ast.Schema {
	return loadedSchema
}
