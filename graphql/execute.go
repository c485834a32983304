package graphql

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/c360/usergraph/entity"
)

// DepthLimitSentinel is the fixed data value substituted when the depth
// guard rejects a document. The envelope still carries the violations in
// the errors array; execution never starts.
const DepthLimitSentinel = "Error, DEPTH LIMIT"

// Response is the standard GraphQL result envelope. Data is nil only when
// the request failed before execution (parse or validation errors), and is
// then omitted from the wire form; executed operations always carry a data
// member, field failures included.
type Response struct {
	Data   any           `json:"data,omitempty"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

// Executor runs query and mutation documents against the static schema.
type Executor struct {
	schema   *ast.Schema
	resolver *Resolver
	maxDepth int
	logger   *slog.Logger
}

// NewExecutor creates an executor with the given resolver bundle and depth
// limit. A non-positive maxDepth falls back to DefaultMaxQueryDepth.
func NewExecutor(resolver *Resolver, maxDepth int, logger *slog.Logger) *Executor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxQueryDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		schema:   loadedSchema,
		resolver: resolver,
		maxDepth: maxDepth,
		logger:   logger.With("component", "graphql-executor"),
	}
}

// execState carries per-request execution state: coerced variables, the
// document's fragments, and the error list shared by all field resolutions.
type execState struct {
	vars      map[string]any
	fragments ast.FragmentDefinitionList

	mu     sync.Mutex
	errors gqlerror.List
}

func (st *execState) addError(err *gqlerror.Error) {
	st.mu.Lock()
	st.errors = append(st.errors, err)
	st.mu.Unlock()
}

// Execute parses, validates, depth-checks, and runs a single request.
// Parse and validation failures return early with no data; depth violations
// return the sentinel data value without executing; resolver failures are
// collected per field while sibling fields still resolve.
func (x *Executor) Execute(ctx context.Context, query, operationName string, variables map[string]any) *Response {
	doc, parseErrs := gqlparser.LoadQuery(x.schema, query)
	if len(parseErrs) > 0 {
		x.logger.Debug("query rejected", "errors", len(parseErrs))
		return &Response{Errors: parseErrs}
	}

	if violations := validateDepth(doc, x.maxDepth); len(violations) > 0 {
		x.logger.Warn("query exceeds depth limit", "max_depth", x.maxDepth)
		return &Response{Data: DepthLimitSentinel, Errors: violations}
	}

	op := doc.Operations.ForName(operationName)
	if op == nil {
		return &Response{Errors: gqlerror.List{
			gqlerror.Errorf("operation %q not found in document", operationName),
		}}
	}

	var rootType string
	switch op.Operation {
	case ast.Query:
		rootType = "Query"
	case ast.Mutation:
		rootType = "Mutation"
	default:
		return &Response{Errors: gqlerror.List{
			gqlerror.Errorf("unsupported operation type %q", op.Operation),
		}}
	}

	st := &execState{
		vars:      variables,
		fragments: doc.Fragments,
	}

	data := x.executeSelectionSet(ctx, st, rootType, nil, op.SelectionSet, nil)
	return &Response{Data: data, Errors: st.errors}
}

// executeSelectionSet resolves each collected field of a selection set
// against the parent entity. A resolver failure nulls that field and
// records an error; it never aborts the siblings.
func (x *Executor) executeSelectionSet(
	ctx context.Context,
	st *execState,
	typeName string,
	parent any,
	set ast.SelectionSet,
	path ast.Path,
) map[string]any {
	fields := collectFields(set, st.fragments, typeName, make(map[string]bool))
	result := make(map[string]any, len(fields))

	for _, field := range fields {
		key := field.Name
		if field.Alias != "" {
			key = field.Alias
		}
		fieldPath := appendPath(path, ast.PathName(key))

		if field.Name == "__typename" {
			result[key] = typeName
			continue
		}

		resolve := objectFields[typeName][field.Name]
		if resolve == nil {
			// LoadQuery validates field existence; this guards table drift.
			st.addError(&gqlerror.Error{
				Message: "cannot resolve field " + field.Name + " on " + typeName,
				Path:    fieldPath,
			})
			result[key] = nil
			continue
		}

		value, err := resolve(ctx, x.resolver, parent, evalArgs(field.Arguments, st.vars))
		if err != nil {
			st.addError(fieldError(err, field.Name, fieldPath))
			result[key] = nil
			continue
		}

		result[key] = x.completeValue(ctx, st, value, field.SelectionSet, fieldPath)
	}

	return result
}

// completeValue turns a resolver result into response data, recursing into
// nested selection sets for entities and lists.
func (x *Executor) completeValue(
	ctx context.Context,
	st *execState,
	value any,
	set ast.SelectionSet,
	path ast.Path,
) any {
	if value == nil {
		return nil
	}
	if len(set) == 0 {
		return value
	}

	switch v := value.(type) {
	case entity.User, entity.Profile, entity.Post, entity.MemberType:
		return x.executeSelectionSet(ctx, st, typeNameOf(v), v, set, path)
	case []entity.User:
		return x.completeList(ctx, st, toAnySlice(v), set, path)
	case []entity.Profile:
		return x.completeList(ctx, st, toAnySlice(v), set, path)
	case []entity.Post:
		return x.completeList(ctx, st, toAnySlice(v), set, path)
	case []entity.MemberType:
		return x.completeList(ctx, st, toAnySlice(v), set, path)
	case []any:
		return x.completeList(ctx, st, v, set, path)
	default:
		// Selection set on a scalar; validation should have rejected it
		return value
	}
}

func (x *Executor) completeList(
	ctx context.Context,
	st *execState,
	items []any,
	set ast.SelectionSet,
	path ast.Path,
) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = x.completeValue(ctx, st, item, set, appendPath(path, ast.PathIndex(i)))
	}
	return out
}

// appendPath copies before appending so sibling fields never share a
// backing array.
func appendPath(path ast.Path, elem ast.PathElement) ast.Path {
	out := make(ast.Path, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func toAnySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// collectFields flattens a selection set into its fields, inlining
// fragments. Type conditions are matched by name; cyclic spreads are
// expanded once.
func collectFields(
	set ast.SelectionSet,
	fragments ast.FragmentDefinitionList,
	typeName string,
	seen map[string]bool,
) []*ast.Field {
	var fields []*ast.Field
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			fields = append(fields, s)
		case *ast.InlineFragment:
			if s.TypeCondition == "" || s.TypeCondition == typeName {
				fields = append(fields, collectFields(s.SelectionSet, fragments, typeName, seen)...)
			}
		case *ast.FragmentSpread:
			if seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			frag := fragments.ForName(s.Name)
			if frag != nil && (frag.TypeCondition == "" || frag.TypeCondition == typeName) {
				fields = append(fields, collectFields(frag.SelectionSet, fragments, typeName, seen)...)
			}
		}
	}
	return fields
}

// evalArgs coerces field arguments to plain Go values, resolving variable
// references against the request's variable mapping.
func evalArgs(args ast.ArgumentList, vars map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for _, arg := range args {
		out[arg.Name] = evalValue(arg.Value, vars)
	}
	return out
}

func evalValue(v *ast.Value, vars map[string]any) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.Variable:
		return vars[v.Raw]
	case ast.IntValue:
		n, _ := strconv.ParseInt(v.Raw, 10, 64)
		return n
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.NullValue:
		return nil
	case ast.ListValue:
		items := make([]any, 0, len(v.Children))
		for _, child := range v.Children {
			items = append(items, evalValue(child.Value, vars))
		}
		return items
	case ast.ObjectValue:
		obj := make(map[string]any, len(v.Children))
		for _, child := range v.Children {
			obj[child.Name] = evalValue(child.Value, vars)
		}
		return obj
	default:
		// String, block string, and enum values arrive as raw text
		return v.Raw
	}
}

// Argument coercion helpers. JSON variables arrive as float64; literals as
// int64. The helpers accept both.

func strArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func strArgPtr(args map[string]any, key string) *string {
	if v, ok := args[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return &s
		}
	}
	return nil
}

func intArg(args map[string]any, key string) int64 {
	switch v := args[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func intArgPtr(args map[string]any, key string) *int64 {
	if v, ok := args[key]; ok && v != nil {
		n := intArg(args, key)
		return &n
	}
	return nil
}

func countArgPtr(args map[string]any, key string) *int {
	if v, ok := args[key]; ok && v != nil {
		n := int(intArg(args, key))
		return &n
	}
	return nil
}

func floatArgPtr(args map[string]any, key string) *float64 {
	v, ok := args[key]
	if !ok || v == nil {
		return nil
	}
	switch f := v.(type) {
	case float64:
		return &f
	case int64:
		ff := float64(f)
		return &ff
	case int:
		ff := float64(f)
		return &ff
	default:
		return nil
	}
}
