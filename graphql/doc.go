// Package graphql provides the GraphQL execution front for usergraph.
//
// A request flows through three stages: the query text is parsed and
// validated against the embedded schema (gqlparser), the parsed document is
// checked against the maximum selection depth, and only then is it executed
// against the static resolver tables. Depth violations suppress execution
// entirely and substitute a sentinel data value; every other failure
// surfaces as a per-field error while sibling fields still resolve.
//
// Resolvers receive an explicit capability bundle (the entity store and the
// integrity engine) rather than closing over shared state. The schema shape
// is fixed: types, edges, and resolver tables are declared statically and
// compiled once at process start.
package graphql
