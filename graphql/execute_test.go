package graphql

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(t *testing.T) (*Executor, *store.DB, *integrity.Engine) {
	t.Helper()
	db := store.NewDB()
	engine := integrity.NewEngine(db, testLogger())
	resolver := NewResolver(db, engine, testLogger())
	return NewExecutor(resolver, DefaultMaxQueryDepth, testLogger()), db, engine
}

func seedUser(t *testing.T, engine *integrity.Engine, first, last string) entity.User {
	t.Helper()
	user, err := engine.CreateUser(context.Background(), integrity.CreateUserInput{
		FirstName: first,
		LastName:  last,
		Email:     first + "@example.com",
	})
	require.NoError(t, err)
	return user
}

func dataMap(t *testing.T, resp *Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", resp.Data)
	return m
}

func TestQueryGetUsersEmpty(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), `{ getUsers { id } }`, "", nil)
	require.Empty(t, resp.Errors)

	users, ok := dataMap(t, resp)["getUsers"].([]any)
	require.True(t, ok)
	assert.Empty(t, users)
}

func TestQueryGetMemberTypesSeeded(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(),
		`{ getMemberTypes { id discount monthPostsLimit } }`, "", nil)
	require.Empty(t, resp.Errors)

	types, ok := dataMap(t, resp)["getMemberTypes"].([]any)
	require.True(t, ok)
	require.Len(t, types, 2)

	basic := types[0].(map[string]any)
	assert.Equal(t, "basic", basic["id"])
	assert.Equal(t, float64(0), basic["discount"])
	assert.Equal(t, 20, basic["monthPostsLimit"])

	business := types[1].(map[string]any)
	assert.Equal(t, "business", business["id"])
	assert.Equal(t, float64(25), business["discount"])
}

func TestMutationAddUser(t *testing.T) {
	exec, db, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), `
		mutation {
			addUser(firstName: "Alice", lastName: "Smith", email: "alice@example.com") {
				id
				firstName
				email
			}
		}`, "", nil)
	require.Empty(t, resp.Errors)

	created := dataMap(t, resp)["addUser"].(map[string]any)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Alice", created["firstName"])
	assert.Equal(t, "alice@example.com", created["email"])

	assert.Equal(t, 1, db.Users.Size())
}

func TestGetUserMissIsError(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(),
		`{ getUser(id: "missing") { id } }`, "", nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["code"])
	assert.Nil(t, dataMap(t, resp)["getUser"])
}

func TestGetProfileMissIsNull(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(),
		`{ getProfile(id: "missing") { id } }`, "", nil)

	assert.Empty(t, resp.Errors)
	assert.Nil(t, dataMap(t, resp)["getProfile"])
}

func TestSubscriptionTraversal(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	ctx := context.Background()

	u1 := seedUser(t, engine, "Follower", "One")
	u2 := seedUser(t, engine, "Author", "Two")

	_, err := engine.Subscribe(ctx, u1.ID, u2.ID)
	require.NoError(t, err)

	query := `
		query($id: ID!) {
			getUser(id: $id) {
				id
				subscribedToUser { id firstName }
				userSubscribedTo { id }
			}
		}`

	resp := exec.Execute(ctx, query, "", map[string]any{"id": u1.ID})
	require.Empty(t, resp.Errors)

	user := dataMap(t, resp)["getUser"].(map[string]any)
	subs := user["subscribedToUser"].([]any)
	require.Len(t, subs, 1)
	assert.Equal(t, u2.ID, subs[0].(map[string]any)["id"])
	assert.Equal(t, "Author", subs[0].(map[string]any)["firstName"])
	assert.Empty(t, user["userSubscribedTo"].([]any))

	// The inverse edge from the target's side.
	resp = exec.Execute(ctx, query, "", map[string]any{"id": u2.ID})
	require.Empty(t, resp.Errors)

	user = dataMap(t, resp)["getUser"].(map[string]any)
	assert.Empty(t, user["subscribedToUser"].([]any))
	inverse := user["userSubscribedTo"].([]any)
	require.Len(t, inverse, 1)
	assert.Equal(t, u1.ID, inverse[0].(map[string]any)["id"])
}

func TestSubscriptionTraversalAfterDelete(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	ctx := context.Background()

	u1 := seedUser(t, engine, "Follower", "One")
	u2 := seedUser(t, engine, "Author", "Two")

	_, err := engine.Subscribe(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	_, err = engine.DeleteUser(ctx, u2.ID)
	require.NoError(t, err)

	resp := exec.Execute(ctx,
		`query($id: ID!) { getUser(id: $id) { subscribedToUser { id } } }`,
		"", map[string]any{"id": u1.ID})
	require.Empty(t, resp.Errors)

	user := dataMap(t, resp)["getUser"].(map[string]any)
	assert.Empty(t, user["subscribedToUser"].([]any))
}

func TestNestedRelationFields(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	ctx := context.Background()

	user := seedUser(t, engine, "Carol", "Jones")
	_, err := engine.CreateProfile(ctx, integrity.CreateProfileInput{
		Avatar:       "avatar.png",
		Sex:          "female",
		Birthday:     631152000,
		Country:      "NL",
		Street:       "Main",
		City:         "Utrecht",
		MemberTypeID: "business",
		UserID:       user.ID,
	})
	require.NoError(t, err)
	_, err = engine.CreatePost(ctx, integrity.CreatePostInput{
		Title:   "First",
		Content: "Hello",
		UserID:  user.ID,
	})
	require.NoError(t, err)

	resp := exec.Execute(ctx, `
		query($id: ID!) {
			getUser(id: $id) {
				profile { city memberTypeId }
				posts { title }
				memberType { id discount }
			}
		}`, "", map[string]any{"id": user.ID})
	require.Empty(t, resp.Errors)

	got := dataMap(t, resp)["getUser"].(map[string]any)
	profile := got["profile"].(map[string]any)
	assert.Equal(t, "Utrecht", profile["city"])
	assert.Equal(t, "business", profile["memberTypeId"])

	posts := got["posts"].([]any)
	require.Len(t, posts, 1)
	assert.Equal(t, "First", posts[0].(map[string]any)["title"])

	mt := got["memberType"].(map[string]any)
	assert.Equal(t, "business", mt["id"])
	assert.Equal(t, float64(25), mt["discount"])
}

func TestProfileAndMemberTypeNullWithoutProfile(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	user := seedUser(t, engine, "Dave", "NoProfile")

	resp := exec.Execute(context.Background(),
		`query($id: ID!) { getUser(id: $id) { profile { id } memberType { id } } }`,
		"", map[string]any{"id": user.ID})
	require.Empty(t, resp.Errors)

	got := dataMap(t, resp)["getUser"].(map[string]any)
	assert.Nil(t, got["profile"])
	assert.Nil(t, got["memberType"])
}

func TestAliasesAndTypename(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	user := seedUser(t, engine, "Eve", "Alias")

	resp := exec.Execute(context.Background(), `
		query($id: ID!) {
			person: getUser(id: $id) {
				__typename
				name: firstName
			}
		}`, "", map[string]any{"id": user.ID})
	require.Empty(t, resp.Errors)

	person := dataMap(t, resp)["person"].(map[string]any)
	assert.Equal(t, "User", person["__typename"])
	assert.Equal(t, "Eve", person["name"])
}

func TestFragmentSpread(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	seedUser(t, engine, "Frank", "Fragment")

	resp := exec.Execute(context.Background(), `
		query {
			getUsers { ...userParts }
		}
		fragment userParts on User {
			id
			firstName
		}`, "", nil)
	require.Empty(t, resp.Errors)

	users := dataMap(t, resp)["getUsers"].([]any)
	require.Len(t, users, 1)
	assert.Equal(t, "Frank", users[0].(map[string]any)["firstName"])
}

func TestMutationValidationError(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), `
		mutation {
			addProfile(
				avatar: "a", sex: "m", birthday: 1, country: "NL",
				street: "s", city: "c", memberTypeId: "basic", userId: "missing"
			) { id }
		}`, "", nil)

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Extensions["code"])
	assert.Nil(t, dataMap(t, resp)["addProfile"])
}

func TestPartialFailureKeepsSiblings(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	user := seedUser(t, engine, "Grace", "Partial")

	resp := exec.Execute(context.Background(), `
		query($id: ID!) {
			good: getUser(id: $id) { firstName }
			bad: getUser(id: "missing") { firstName }
		}`, "", map[string]any{"id": user.ID})

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "bad", resp.Errors[0].Path.String())

	data := dataMap(t, resp)
	assert.Nil(t, data["bad"])
	assert.Equal(t, "Grace", data["good"].(map[string]any)["firstName"])
}

func TestSyntaxErrorReturnsNoData(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), `{ getUsers { id `, "", nil)
	assert.Nil(t, resp.Data)
	assert.NotEmpty(t, resp.Errors)
}

func TestUnknownFieldRejectedByValidation(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	resp := exec.Execute(context.Background(), `{ getUsers { nickname } }`, "", nil)
	assert.Nil(t, resp.Data)
	assert.NotEmpty(t, resp.Errors)
}

func TestSubscribeMutationRoundTrip(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	ctx := context.Background()

	u1 := seedUser(t, engine, "Henry", "Sub")
	u2 := seedUser(t, engine, "Iris", "Target")

	resp := exec.Execute(ctx, `
		mutation($id: ID!, $target: ID!) {
			subscribeTo(id: $id, subscribeToId: $target) {
				subscribedToUserIds
			}
		}`, "", map[string]any{"id": u1.ID, "target": u2.ID})
	require.Empty(t, resp.Errors)

	ids := dataMap(t, resp)["subscribeTo"].(map[string]any)["subscribedToUserIds"].([]string)
	require.Len(t, ids, 1)
	assert.Equal(t, u2.ID, ids[0])

	resp = exec.Execute(ctx, `
		mutation($id: ID!, $target: ID!) {
			unsubscribeFrom(id: $id, unsubscribeFromId: $target) {
				subscribedToUserIds
			}
		}`, "", map[string]any{"id": u1.ID, "target": u2.ID})
	require.Empty(t, resp.Errors)

	ids = dataMap(t, resp)["unsubscribeFrom"].(map[string]any)["subscribedToUserIds"].([]string)
	assert.Empty(t, ids)
}

func TestSelfSubscribeIsValidationError(t *testing.T) {
	exec, _, engine := newTestExecutor(t)
	user := seedUser(t, engine, "Judy", "Self")

	resp := exec.Execute(context.Background(), `
		mutation($id: ID!) {
			subscribeTo(id: $id, subscribeToId: $id) { id }
		}`, "", map[string]any{"id": user.ID})

	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "VALIDATION_ERROR", resp.Errors[0].Extensions["code"])
}

func TestOperationSelectionByName(t *testing.T) {
	exec, _, _ := newTestExecutor(t)

	doc := `
		query Types { getMemberTypes { id } }
		query Posts { getPosts { id } }`

	resp := exec.Execute(context.Background(), doc, "Types", nil)
	require.Empty(t, resp.Errors)
	assert.Len(t, dataMap(t, resp)["getMemberTypes"], 2)

	resp = exec.Execute(context.Background(), doc, "Missing", nil)
	assert.NotEmpty(t, resp.Errors)
}
