package graphql

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// validateDepth checks every operation in a parsed document against the
// maximum selection depth. Top-level fields are depth 1 and each nested
// selection set adds 1; fragments are inlined for counting, so spreading a
// fragment does not add a level by itself. An empty list means the document
// is accepted; a non-empty list means execution must not proceed.
func validateDepth(doc *ast.QueryDocument, maxDepth int) gqlerror.List {
	var errs gqlerror.List
	for _, op := range doc.Operations {
		depth := selectionDepth(op.SelectionSet, doc.Fragments, make(map[string]bool))
		if depth > maxDepth {
			name := op.Name
			if name == "" {
				name = string(op.Operation)
			}
			errs = append(errs, gqlerror.Errorf(
				"'%s' exceeds maximum operation depth of %d", name, maxDepth))
		}
	}
	return errs
}

// selectionDepth returns the deepest field nesting in a selection set.
// seen guards against fragment spread cycles while a fragment is being
// expanded; it is unmarked afterwards so the same fragment spread at a
// deeper site still counts its full depth there.
func selectionDepth(set ast.SelectionSet, fragments ast.FragmentDefinitionList, seen map[string]bool) int {
	max := 0
	for _, sel := range set {
		var depth int
		switch s := sel.(type) {
		case *ast.Field:
			// Meta fields do not count toward depth
			if strings.HasPrefix(s.Name, "__") {
				continue
			}
			depth = 1 + selectionDepth(s.SelectionSet, fragments, seen)
		case *ast.InlineFragment:
			depth = selectionDepth(s.SelectionSet, fragments, seen)
		case *ast.FragmentSpread:
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			if frag := fragments.ForName(s.Name); frag != nil {
				depth = selectionDepth(frag.SelectionSet, fragments, seen)
			}
			delete(seen, s.Name)
		}
		if depth > max {
			max = depth
		}
	}
	return max
}
