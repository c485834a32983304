// Package usergraph is a relational dataset service: users, profiles,
// posts, and member types held in one in-memory store and exposed over
// both REST CRUD routes and a GraphQL endpoint.
//
// # Architecture
//
// The packages layer bottom-up:
//
//   - entity: the four record types and their patch forms
//   - store: generic filtered collections with insertion-order iteration
//   - integrity: the write path; referential validation, cascade deletes,
//     and subscription symmetry
//   - graphql: parse, depth-guard, and execute GraphQL documents against
//     a static resolver graph
//   - rest: plain HTTP CRUD sharing the same engine
//   - config, cmd/usergraph: configuration and the service entry point
//
// Reads bypass the integrity engine and hit the store directly; every
// write goes through the engine so both API surfaces enforce the same
// rules. Relation fields resolve lazily per field, so the cost of a query
// follows its selection set rather than the size of the dataset.
package usergraph
