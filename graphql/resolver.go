package graphql

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/integrity"
	"github.com/c360/usergraph/store"
)

// Resolver is the capability bundle passed to every field resolver: reads
// go straight to the store, mutations go through the integrity engine.
type Resolver struct {
	store  *store.DB
	engine *integrity.Engine
	logger *slog.Logger
}

// NewResolver creates the resolver bundle.
func NewResolver(db *store.DB, engine *integrity.Engine, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		store:  db,
		engine: engine,
		logger: logger.With("component", "graphql-resolver"),
	}
}

// fieldFunc resolves one field given the parent entity and coerced
// arguments. Edge resolvers issue independent store lookups per invocation;
// there is no batching across sibling fields.
type fieldFunc func(ctx context.Context, r *Resolver, parent any, args map[string]any) (any, error)

// objectFields is the static resolver table: type name -> field name ->
// resolver. Built once; never mutated at runtime.
var objectFields = map[string]map[string]fieldFunc{
	"Query":      queryFields,
	"Mutation":   mutationFields,
	"User":       userFields,
	"Profile":    profileFields,
	"Post":       postFields,
	"MemberType": memberTypeFields,
}

var queryFields = map[string]fieldFunc{
	"getUsers": func(ctx context.Context, r *Resolver, _ any, _ map[string]any) (any, error) {
		return r.store.Users.FindMany(ctx)
	},
	"getProfiles": func(ctx context.Context, r *Resolver, _ any, _ map[string]any) (any, error) {
		return r.store.Profiles.FindMany(ctx)
	},
	"getPosts": func(ctx context.Context, r *Resolver, _ any, _ map[string]any) (any, error) {
		return r.store.Posts.FindMany(ctx)
	},
	"getMemberTypes": func(ctx context.Context, r *Resolver, _ any, _ map[string]any) (any, error) {
		return r.store.MemberTypes.FindMany(ctx)
	},
	"getUser": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		user, found, err := r.store.Users.FindOne(ctx, store.Eq("id", strArg(args, "id")))
		if err != nil {
			return nil, err
		}
		if !found {
			// getUser is the one lookup that reports a miss as an error
			return nil, errors.WrapNotFound(errors.ErrUserNotFound,
				"Resolver", "getUser", "resolve id "+strArg(args, "id"))
		}
		return user, nil
	},
	"getProfile": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		profile, found, err := r.store.Profiles.FindOne(ctx, store.Eq("id", strArg(args, "id")))
		if err != nil || !found {
			return nil, err
		}
		return profile, nil
	},
	"getPost": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		post, found, err := r.store.Posts.FindOne(ctx, store.Eq("id", strArg(args, "id")))
		if err != nil || !found {
			return nil, err
		}
		return post, nil
	},
	"getMemberType": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		mt, found, err := r.store.MemberTypes.FindOne(ctx, store.Eq("id", strArg(args, "id")))
		if err != nil || !found {
			return nil, err
		}
		return mt, nil
	},
}

var mutationFields = map[string]fieldFunc{
	"addUser": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.CreateUser(ctx, integrity.CreateUserInput{
			FirstName: strArg(args, "firstName"),
			LastName:  strArg(args, "lastName"),
			Email:     strArg(args, "email"),
		})
	},
	"addProfile": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.CreateProfile(ctx, integrity.CreateProfileInput{
			Avatar:       strArg(args, "avatar"),
			Sex:          strArg(args, "sex"),
			Birthday:     intArg(args, "birthday"),
			Country:      strArg(args, "country"),
			Street:       strArg(args, "street"),
			City:         strArg(args, "city"),
			MemberTypeID: strArg(args, "memberTypeId"),
			UserID:       strArg(args, "userId"),
		})
	},
	"addPost": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.CreatePost(ctx, integrity.CreatePostInput{
			Title:   strArg(args, "title"),
			Content: strArg(args, "content"),
			UserID:  strArg(args, "userId"),
		})
	},
	"updateUser": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.UpdateUser(ctx, strArg(args, "id"), entity.UserPatch{
			FirstName: strArgPtr(args, "firstName"),
			LastName:  strArgPtr(args, "lastName"),
			Email:     strArgPtr(args, "email"),
		})
	},
	"updateProfile": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.UpdateProfile(ctx, strArg(args, "id"), entity.ProfilePatch{
			Avatar:       strArgPtr(args, "avatar"),
			Sex:          strArgPtr(args, "sex"),
			Birthday:     intArgPtr(args, "birthday"),
			Country:      strArgPtr(args, "country"),
			Street:       strArgPtr(args, "street"),
			City:         strArgPtr(args, "city"),
			MemberTypeID: strArgPtr(args, "memberTypeId"),
		})
	},
	"updatePost": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.UpdatePost(ctx, strArg(args, "id"), entity.PostPatch{
			Title:   strArgPtr(args, "title"),
			Content: strArgPtr(args, "content"),
		})
	},
	"updateMemberType": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.UpdateMemberType(ctx, strArg(args, "id"), entity.MemberTypePatch{
			Discount:        floatArgPtr(args, "discount"),
			MonthPostsLimit: countArgPtr(args, "monthPostsLimit"),
		})
	},
	"subscribeTo": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.Subscribe(ctx, strArg(args, "id"), strArg(args, "subscribeToId"))
	},
	"unsubscribeFrom": func(ctx context.Context, r *Resolver, _ any, args map[string]any) (any, error) {
		return r.engine.Unsubscribe(ctx, strArg(args, "id"), strArg(args, "unsubscribeFromId"))
	},
}

var userFields = map[string]fieldFunc{
	"id": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.User).ID, nil
	},
	"firstName": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.User).FirstName, nil
	},
	"lastName": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.User).LastName, nil
	},
	"email": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.User).Email, nil
	},
	"subscribedToUserIds": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.User).SubscribedToUserIds, nil
	},

	// profile is the Profile whose userId equals this user's id, or null.
	"profile": func(ctx context.Context, r *Resolver, parent any, _ map[string]any) (any, error) {
		profile, found, err := r.store.Profiles.FindOne(ctx, store.Eq("userId", parent.(entity.User).ID))
		if err != nil || !found {
			return nil, err
		}
		return profile, nil
	},

	// posts are all Posts owned by this user, in store iteration order.
	"posts": func(ctx context.Context, r *Resolver, parent any, _ map[string]any) (any, error) {
		return r.store.Posts.FindMany(ctx, store.Eq("userId", parent.(entity.User).ID))
	},

	// memberType resolves via the profile; a user without a profile has a
	// null member type.
	"memberType": func(ctx context.Context, r *Resolver, parent any, _ map[string]any) (any, error) {
		profile, found, err := r.store.Profiles.FindOne(ctx, store.Eq("userId", parent.(entity.User).ID))
		if err != nil || !found {
			return nil, err
		}
		mt, found, err := r.store.MemberTypes.FindOne(ctx, store.Eq("id", profile.MemberTypeID))
		if err != nil || !found {
			return nil, err
		}
		return mt, nil
	},

	// subscribedToUser resolves each subscribed id independently and
	// concurrently; an id that no longer resolves yields a null entry
	// rather than failing the whole field.
	"subscribedToUser": func(ctx context.Context, r *Resolver, parent any, _ map[string]any) (any, error) {
		ids := parent.(entity.User).SubscribedToUserIds
		results := make([]any, len(ids))

		g, gctx := errgroup.WithContext(ctx)
		for i, id := range ids {
			g.Go(func() error {
				user, found, err := r.store.Users.FindOne(gctx, store.Eq("id", id))
				if err != nil {
					return err
				}
				if found {
					results[i] = user
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	},

	// userSubscribedTo is the inverse direction: every user whose
	// subscription list contains this user's id.
	"userSubscribedTo": func(ctx context.Context, r *Resolver, parent any, _ map[string]any) (any, error) {
		return r.store.Users.FindMany(ctx, store.Contains("subscribedToUserIds", parent.(entity.User).ID))
	},
}

var profileFields = map[string]fieldFunc{
	"id": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).ID, nil
	},
	"avatar": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).Avatar, nil
	},
	"sex": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).Sex, nil
	},
	"birthday": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).Birthday, nil
	},
	"country": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).Country, nil
	},
	"street": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).Street, nil
	},
	"city": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).City, nil
	},
	"memberTypeId": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).MemberTypeID, nil
	},
	"userId": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Profile).UserID, nil
	},
}

var postFields = map[string]fieldFunc{
	"id": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Post).ID, nil
	},
	"title": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Post).Title, nil
	},
	"content": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Post).Content, nil
	},
	"userId": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.Post).UserID, nil
	},
}

var memberTypeFields = map[string]fieldFunc{
	"id": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.MemberType).ID, nil
	},
	"discount": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.MemberType).Discount, nil
	},
	"monthPostsLimit": func(_ context.Context, _ *Resolver, parent any, _ map[string]any) (any, error) {
		return parent.(entity.MemberType).MonthPostsLimit, nil
	},
}

// typeNameOf maps a resolved Go value back to its schema type so nested
// selection sets can pick the right resolver table.
func typeNameOf(v any) string {
	switch v.(type) {
	case entity.User:
		return "User"
	case entity.Profile:
		return "Profile"
	case entity.Post:
		return "Post"
	case entity.MemberType:
		return "MemberType"
	default:
		return ""
	}
}
