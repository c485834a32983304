package graphql

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/c360/usergraph/errors"
)

// fieldError converts a resolver failure into a GraphQL field error with a
// stable extension code derived from the error's classification.
func fieldError(err error, operation string, path ast.Path) *gqlerror.Error {
	if err == nil {
		return nil
	}

	if gqlErr, ok := err.(*gqlerror.Error); ok {
		return gqlErr
	}

	var code string
	switch errors.Classify(err) {
	case errors.ErrorValidation:
		code = "VALIDATION_ERROR"
	case errors.ErrorNotFound:
		code = "NOT_FOUND"
	case errors.ErrorSyntax:
		code = "SYNTAX_ERROR"
	case errors.ErrorDepth:
		code = "DEPTH_EXCEEDED"
	default:
		code = "INTERNAL_ERROR"
	}

	return &gqlerror.Error{
		Message: err.Error(),
		Path:    path,
		Extensions: map[string]interface{}{
			"code":      code,
			"operation": operation,
		},
	}
}
