// Package errors provides the error taxonomy shared by the store, the
// integrity engine, and the transport layers.
//
// Errors are classified into five classes:
//
//   - Validation: referential or invariant violations on mutation input
//     (self-subscription, duplicate profile, unresolved foreign id)
//   - NotFound: lookup by id yields nothing where existence is required
//   - Syntax: malformed GraphQL query documents
//   - Depth: query nesting beyond the configured maximum
//   - Internal: everything else
//
// Producers wrap failures with the Wrap* helpers to attach component and
// operation context; consumers branch on the Is* predicates or Classify.
// The transport layers translate classes at the boundary: REST handlers map
// Validation to 400 and NotFound to 404, while the GraphQL front surfaces
// every class as a field error with a matching extension code.
package errors
