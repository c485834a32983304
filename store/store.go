// Package store provides the in-memory entity store: one generic collection
// per entity type with find-one/find-many/create/change/delete primitives
// and {key, equals} / {key, inArray} filters. The store is deliberately
// dumb; relational semantics live in the integrity package.
package store

import (
	"slices"
	"strconv"

	"github.com/c360/usergraph/entity"
)

// DB bundles the four entity collections behind one handle. Member types
// are pre-seeded and not user-creatable.
type DB struct {
	Users       *Collection[entity.User]
	Profiles    *Collection[entity.Profile]
	Posts       *Collection[entity.Post]
	MemberTypes *Collection[entity.MemberType]
}

// Seeded member type tiers.
var seedMemberTypes = []entity.MemberType{
	{ID: "basic", Discount: 0, MonthPostsLimit: 20},
	{ID: "business", Discount: 25, MonthPostsLimit: 100},
}

// NewDB creates an empty store with the member type tiers seeded.
func NewDB() *DB {
	db := &DB{
		Users: NewCollection(
			"users",
			func(u entity.User) string { return u.ID },
			func(u entity.User, id string) entity.User { u.ID = id; return u },
			matchUser,
			cloneUser,
		),
		Profiles: NewCollection(
			"profiles",
			func(p entity.Profile) string { return p.ID },
			func(p entity.Profile, id string) entity.Profile { p.ID = id; return p },
			matchProfile,
			nil,
		),
		Posts: NewCollection(
			"posts",
			func(p entity.Post) string { return p.ID },
			func(p entity.Post, id string) entity.Post { p.ID = id; return p },
			matchPost,
			nil,
		),
		MemberTypes: NewCollection(
			"memberTypes",
			func(m entity.MemberType) string { return m.ID },
			func(m entity.MemberType, id string) entity.MemberType { m.ID = id; return m },
			matchMemberType,
			nil,
		),
	}

	for _, mt := range seedMemberTypes {
		// Seeding an empty collection cannot fail; ids are preset.
		db.MemberTypes.items[mt.ID] = mt
		db.MemberTypes.order = append(db.MemberTypes.order, mt.ID)
	}

	return db
}

func cloneUser(u entity.User) entity.User {
	u.SubscribedToUserIds = slices.Clone(u.SubscribedToUserIds)
	return u
}

func matchUser(u entity.User, f Filter) bool {
	switch f.Key {
	case "id":
		return f.Op == OpEquals && u.ID == f.Value
	case "firstName":
		return f.Op == OpEquals && u.FirstName == f.Value
	case "lastName":
		return f.Op == OpEquals && u.LastName == f.Value
	case "email":
		return f.Op == OpEquals && u.Email == f.Value
	case "subscribedToUserIds":
		return f.Op == OpInArray && slices.Contains(u.SubscribedToUserIds, f.Value)
	default:
		return false
	}
}

func matchProfile(p entity.Profile, f Filter) bool {
	if f.Op != OpEquals {
		return false
	}
	switch f.Key {
	case "id":
		return p.ID == f.Value
	case "userId":
		return p.UserID == f.Value
	case "memberTypeId":
		return p.MemberTypeID == f.Value
	case "country":
		return p.Country == f.Value
	case "city":
		return p.City == f.Value
	default:
		return false
	}
}

func matchPost(p entity.Post, f Filter) bool {
	if f.Op != OpEquals {
		return false
	}
	switch f.Key {
	case "id":
		return p.ID == f.Value
	case "userId":
		return p.UserID == f.Value
	case "title":
		return p.Title == f.Value
	default:
		return false
	}
}

func matchMemberType(m entity.MemberType, f Filter) bool {
	if f.Op != OpEquals {
		return false
	}
	switch f.Key {
	case "id":
		return m.ID == f.Value
	case "monthPostsLimit":
		return strconv.Itoa(m.MonthPostsLimit) == f.Value
	default:
		return false
	}
}
