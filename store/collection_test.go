package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
)

func newTestUser(t *testing.T, db *DB, first string) entity.User {
	t.Helper()
	u, err := db.Users.Create(context.Background(), entity.User{
		FirstName:           first,
		LastName:            "Tester",
		Email:               first + "@example.com",
		SubscribedToUserIds: []string{},
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	return u
}

func TestCreateAssignsID(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	u1 := newTestUser(t, db, "alice")
	u2 := newTestUser(t, db, "bob")
	assert.NotEqual(t, u1.ID, u2.ID)

	got, found, err := db.Users.FindOne(ctx, Eq("id", u1.ID))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, u1, got)
}

func TestFindManyInsertionOrder(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		newTestUser(t, db, n)
	}

	users, err := db.Users.FindMany(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for i, u := range users {
		assert.Equal(t, names[i], u.FirstName)
	}
}

func TestFindManyFilters(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	owner := newTestUser(t, db, "owner")
	other := newTestUser(t, db, "other")

	for _, title := range []string{"one", "two"} {
		_, err := db.Posts.Create(ctx, entity.Post{Title: title, Content: "x", UserID: owner.ID})
		require.NoError(t, err)
	}
	_, err := db.Posts.Create(ctx, entity.Post{Title: "three", Content: "x", UserID: other.ID})
	require.NoError(t, err)

	posts, err := db.Posts.FindMany(ctx, Eq("userId", owner.ID))
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	// Unknown key matches nothing rather than everything
	none, err := db.Posts.FindMany(ctx, Eq("nope", "x"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInArrayFilter(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	target := newTestUser(t, db, "target")
	follower := newTestUser(t, db, "follower")
	newTestUser(t, db, "bystander")

	_, err := db.Users.Change(ctx, follower.ID, func(u entity.User) entity.User {
		u.SubscribedToUserIds = append(u.SubscribedToUserIds, target.ID)
		return u
	})
	require.NoError(t, err)

	subs, err := db.Users.FindMany(ctx, Contains("subscribedToUserIds", target.ID))
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, follower.ID, subs[0].ID)
}

func TestChangeUnknownID(t *testing.T) {
	db := NewDB()

	_, err := db.Users.Change(context.Background(), "missing", func(u entity.User) entity.User { return u })
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	u := newTestUser(t, db, "gone")
	deleted, err := db.Users.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)

	_, found, err := db.Users.FindOne(ctx, Eq("id", u.ID))
	require.NoError(t, err)
	assert.False(t, found)

	_, err = db.Users.Delete(ctx, u.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestReadsReturnCopies(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	target := newTestUser(t, db, "target")
	follower := newTestUser(t, db, "follower")
	_, err := db.Users.Change(ctx, follower.ID, func(u entity.User) entity.User {
		u.SubscribedToUserIds = append(u.SubscribedToUserIds, target.ID)
		return u
	})
	require.NoError(t, err)

	got, found, err := db.Users.FindOne(ctx, Eq("id", follower.ID))
	require.NoError(t, err)
	require.True(t, found)

	// Mutating the returned slice must not leak into the store.
	got.SubscribedToUserIds[0] = "tampered"

	again, _, err := db.Users.FindOne(ctx, Eq("id", follower.ID))
	require.NoError(t, err)
	assert.Equal(t, []string{target.ID}, again.SubscribedToUserIds)
}

func TestMemberTypesSeeded(t *testing.T) {
	db := NewDB()
	ctx := context.Background()

	mts, err := db.MemberTypes.FindMany(ctx)
	require.NoError(t, err)
	require.Len(t, mts, 2)
	assert.Equal(t, "basic", mts[0].ID)
	assert.Equal(t, "business", mts[1].ID)
	assert.Equal(t, 20, mts[0].MonthPostsLimit)
	assert.Equal(t, float64(25), mts[1].Discount)
}

func TestContextCancellation(t *testing.T) {
	db := NewDB()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := db.Users.FindMany(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = db.Users.FindOne(ctx, Eq("id", "x"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = db.Users.Create(ctx, entity.User{})
	assert.ErrorIs(t, err, context.Canceled)
}
