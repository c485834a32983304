package graphql

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// nestedUsersQuery builds a getUsers query whose deepest field sits at the
// given depth, recursing through subscribedToUser.
func nestedUsersQuery(depth int) string {
	var b strings.Builder
	b.WriteString("{ getUsers ")
	for i := 1; i < depth-1; i++ {
		b.WriteString("{ subscribedToUser ")
	}
	b.WriteString("{ id ")
	for i := 0; i < depth-1; i++ {
		b.WriteString("} ")
	}
	b.WriteString("}")
	return b.String()
}

func parseDoc(t *testing.T, query string) *ast.QueryDocument {
	t.Helper()
	doc, errs := gqlparser.LoadQuery(Schema(), query)
	require.Empty(t, errs)
	return doc
}

func TestValidateDepth(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		maxDepth int
		wantErr  bool
	}{
		{
			name:     "flat query well within limit",
			query:    `{ getUsers { id firstName } }`,
			maxDepth: 7,
			wantErr:  false,
		},
		{
			name:     "exactly at limit",
			query:    nestedUsersQuery(7),
			maxDepth: 7,
			wantErr:  false,
		},
		{
			name:     "one past limit",
			query:    nestedUsersQuery(8),
			maxDepth: 7,
			wantErr:  true,
		},
		{
			name:     "tight limit rejects shallow nesting",
			query:    `{ getUsers { posts { id } } }`,
			maxDepth: 2,
			wantErr:  true,
		},
		{
			name:     "meta fields do not count",
			query:    `{ getUsers { __typename } }`,
			maxDepth: 1,
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, tt.query)
			errs := validateDepth(doc, tt.maxDepth)
			if tt.wantErr {
				require.Len(t, errs, 1)
				assert.Contains(t, errs[0].Message, "exceeds maximum operation depth")
			} else {
				assert.Empty(t, errs)
			}
		})
	}
}

func TestFragmentDepthCountsAtSpreadSite(t *testing.T) {
	// The fragment body nests 2 levels; spread under getUsers that makes 3
	// total, and the spread itself adds nothing.
	query := `
		query Deep {
			getUsers { ...withPosts }
		}
		fragment withPosts on User {
			posts { title }
		}`

	doc := parseDoc(t, query)
	assert.Empty(t, validateDepth(doc, 3))
	assert.Len(t, validateDepth(doc, 2), 1)
}

func TestFragmentSpreadAtTwoDepths(t *testing.T) {
	// One fragment, two spread sites. Under a: the total depth is 7 and
	// legal; under b: the extra subscribedToUser level makes it 8. The
	// deeper site must count the fragment's full depth even though the
	// shallow site expanded it first.
	query := `
		{
			a: getUsers { ...chain }
			b: getUsers { subscribedToUser { ...chain } }
		}
		fragment chain on User {
			subscribedToUser { subscribedToUser { subscribedToUser { subscribedToUser { subscribedToUser { id } } } } }
		}`

	doc := parseDoc(t, query)
	errs := validateDepth(doc, 7)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "exceeds maximum operation depth of 7")

	exec, _, _ := newTestExecutor(t)
	resp := exec.Execute(context.Background(), query, "", nil)
	assert.Equal(t, DepthLimitSentinel, resp.Data)
	assert.NotEmpty(t, resp.Errors)
}

func TestCyclicFragmentsTerminate(t *testing.T) {
	// Schema validation rejects cyclic spreads before execution, so the
	// counter is exercised on a parsed-but-unvalidated document.
	doc, err := parser.ParseQuery(&ast.Source{Input: `
		{ getUsers { ...a } }
		fragment a on User { subscribedToUser { ...b } }
		fragment b on User { subscribedToUser { ...a } }
	`})
	require.NoError(t, err)

	// Depth is 3: getUsers, then one level per fragment before the
	// cycle stops expanding.
	assert.Empty(t, validateDepth(doc, 3))
	assert.Len(t, validateDepth(doc, 2), 1)
}

func TestDepthRejectionUsesOperationName(t *testing.T) {
	doc := parseDoc(t, "query Feed "+nestedUsersQuery(4))
	errs := validateDepth(doc, 2)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "'Feed'")
}

func TestExecuteReturnsDepthSentinel(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), nestedUsersQuery(8), "", nil)
	assert.Equal(t, DepthLimitSentinel, resp.Data)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "exceeds maximum operation depth of 7")
}

func TestExecuteAcceptsDepthAtLimit(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), nestedUsersQuery(7), "", nil)
	assert.Empty(t, resp.Errors)
	assert.NotEqual(t, DepthLimitSentinel, resp.Data)
}
