// Package integrity enforces the relational invariants of the entity store
// at the boundary of each mutating operation: referential checks on create,
// cascading cleanup on user delete, and symmetric subscription maintenance.
// The store itself performs no validation; every rule lives here.
package integrity

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/c360/usergraph/entity"
	"github.com/c360/usergraph/errors"
	"github.com/c360/usergraph/store"
)

// Engine is the sole writer of derived consistency state. All mutations go
// through it; reads may bypass it and hit the store directly.
type Engine struct {
	db     *store.DB
	logger *slog.Logger

	// Serializes subscription-list read-modify-write per user id so two
	// concurrent subscribe calls for the same subscriber cannot race.
	subLocks keyedMutex
}

// NewEngine creates an integrity engine over the given store.
func NewEngine(db *store.DB, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:     db,
		logger: logger.With("component", "integrity-engine"),
	}
}

// CreateUserInput holds the fields of a new user.
type CreateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// CreateProfileInput holds the fields of a new profile.
type CreateProfileInput struct {
	Avatar       string `json:"avatar"`
	Sex          string `json:"sex"`
	Birthday     int64  `json:"birthday"`
	Country      string `json:"country"`
	Street       string `json:"street"`
	City         string `json:"city"`
	MemberTypeID string `json:"memberTypeId"`
	UserID       string `json:"userId"`
}

// CreatePostInput holds the fields of a new post.
type CreatePostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

// CreateUser stores a new user. Users carry no outbound references, so no
// referential checks apply.
func (e *Engine) CreateUser(ctx context.Context, input CreateUserInput) (entity.User, error) {
	user, err := e.db.Users.Create(ctx, entity.User{
		FirstName:           input.FirstName,
		LastName:            input.LastName,
		Email:               input.Email,
		SubscribedToUserIds: []string{},
	})
	if err != nil {
		return entity.User{}, errors.WrapInternal(err, "Engine", "CreateUser", "store create")
	}

	e.logger.Debug("user created", "id", user.ID)
	return user, nil
}

// CreateProfile validates the profile's references before delegating to the
// store: the user must exist, must not already have a profile, and the
// member type must exist. Nothing is written on failure.
func (e *Engine) CreateProfile(ctx context.Context, input CreateProfileInput) (entity.Profile, error) {
	if _, found, err := e.db.Users.FindOne(ctx, store.Eq("id", input.UserID)); err != nil {
		return entity.Profile{}, err
	} else if !found {
		return entity.Profile{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "CreateProfile", "resolve userId "+input.UserID)
	}

	if _, found, err := e.db.Profiles.FindOne(ctx, store.Eq("userId", input.UserID)); err != nil {
		return entity.Profile{}, err
	} else if found {
		return entity.Profile{}, errors.WrapValidation(errors.ErrProfileExists,
			"Engine", "CreateProfile", "one profile per user")
	}

	if _, found, err := e.db.MemberTypes.FindOne(ctx, store.Eq("id", input.MemberTypeID)); err != nil {
		return entity.Profile{}, err
	} else if !found {
		return entity.Profile{}, errors.WrapValidation(errors.ErrMemberTypeNotFound,
			"Engine", "CreateProfile", "resolve memberTypeId "+input.MemberTypeID)
	}

	profile, err := e.db.Profiles.Create(ctx, entity.Profile{
		Avatar:       input.Avatar,
		Sex:          input.Sex,
		Birthday:     input.Birthday,
		Country:      input.Country,
		Street:       input.Street,
		City:         input.City,
		MemberTypeID: input.MemberTypeID,
		UserID:       input.UserID,
	})
	if err != nil {
		return entity.Profile{}, errors.WrapInternal(err, "Engine", "CreateProfile", "store create")
	}

	e.logger.Debug("profile created", "id", profile.ID, "userId", profile.UserID)
	return profile, nil
}

// CreatePost validates that the owning user exists before delegating to the
// store.
func (e *Engine) CreatePost(ctx context.Context, input CreatePostInput) (entity.Post, error) {
	if _, found, err := e.db.Users.FindOne(ctx, store.Eq("id", input.UserID)); err != nil {
		return entity.Post{}, err
	} else if !found {
		return entity.Post{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "CreatePost", "resolve userId "+input.UserID)
	}

	post, err := e.db.Posts.Create(ctx, entity.Post{
		Title:   input.Title,
		Content: input.Content,
		UserID:  input.UserID,
	})
	if err != nil {
		return entity.Post{}, errors.WrapInternal(err, "Engine", "CreatePost", "store create")
	}

	e.logger.Debug("post created", "id", post.ID, "userId", post.UserID)
	return post, nil
}

// UpdateUser applies a partial change to an existing user.
func (e *Engine) UpdateUser(ctx context.Context, id string, patch entity.UserPatch) (entity.User, error) {
	if _, found, err := e.db.Users.FindOne(ctx, store.Eq("id", id)); err != nil {
		return entity.User{}, err
	} else if !found {
		return entity.User{}, errors.WrapNotFound(errors.ErrUserNotFound, "Engine", "UpdateUser", "resolve id "+id)
	}
	return e.db.Users.Change(ctx, id, patch.Apply)
}

// UpdateProfile applies a partial change to an existing profile.
func (e *Engine) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (entity.Profile, error) {
	if _, found, err := e.db.Profiles.FindOne(ctx, store.Eq("id", id)); err != nil {
		return entity.Profile{}, err
	} else if !found {
		return entity.Profile{}, errors.WrapNotFound(errors.ErrProfileNotFound, "Engine", "UpdateProfile", "resolve id "+id)
	}

	if patch.MemberTypeID != nil {
		if _, found, err := e.db.MemberTypes.FindOne(ctx, store.Eq("id", *patch.MemberTypeID)); err != nil {
			return entity.Profile{}, err
		} else if !found {
			return entity.Profile{}, errors.WrapValidation(errors.ErrMemberTypeNotFound,
				"Engine", "UpdateProfile", "resolve memberTypeId "+*patch.MemberTypeID)
		}
	}

	return e.db.Profiles.Change(ctx, id, patch.Apply)
}

// UpdatePost applies a partial change to an existing post.
func (e *Engine) UpdatePost(ctx context.Context, id string, patch entity.PostPatch) (entity.Post, error) {
	if _, found, err := e.db.Posts.FindOne(ctx, store.Eq("id", id)); err != nil {
		return entity.Post{}, err
	} else if !found {
		return entity.Post{}, errors.WrapNotFound(errors.ErrPostNotFound, "Engine", "UpdatePost", "resolve id "+id)
	}
	return e.db.Posts.Change(ctx, id, patch.Apply)
}

// UpdateMemberType applies a partial change to an existing member type.
// Member types cannot be created or deleted, only tuned.
func (e *Engine) UpdateMemberType(ctx context.Context, id string, patch entity.MemberTypePatch) (entity.MemberType, error) {
	if _, found, err := e.db.MemberTypes.FindOne(ctx, store.Eq("id", id)); err != nil {
		return entity.MemberType{}, err
	} else if !found {
		return entity.MemberType{}, errors.WrapNotFound(errors.ErrMemberTypeNotFound,
			"Engine", "UpdateMemberType", "resolve id "+id)
	}
	return e.db.MemberTypes.Change(ctx, id, patch.Apply)
}

// DeleteUser removes a user and every record that depends on it: the user's
// posts, their profile if present, and their id in every other user's
// subscription list. The three cascades are independent and fan out
// concurrently; the primary delete is only issued after all of them have
// committed.
func (e *Engine) DeleteUser(ctx context.Context, id string) (entity.User, error) {
	user, found, err := e.db.Users.FindOne(ctx, store.Eq("id", id))
	if err != nil {
		return entity.User{}, err
	}
	if !found {
		return entity.User{}, errors.WrapNotFound(errors.ErrUserNotFound, "Engine", "DeleteUser", "resolve id "+id)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := e.db.Posts.FindMany(gctx, store.Eq("userId", id))
		if err != nil {
			return err
		}
		for _, post := range posts {
			if _, err := e.db.Posts.Delete(gctx, post.ID); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		profile, found, err := e.db.Profiles.FindOne(gctx, store.Eq("userId", id))
		if err != nil {
			return err
		}
		if found {
			if _, err := e.db.Profiles.Delete(gctx, profile.ID); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		subscribers, err := e.db.Users.FindMany(gctx, store.Contains("subscribedToUserIds", id))
		if err != nil {
			return err
		}
		for _, sub := range subscribers {
			unlock := e.subLocks.lock(sub.ID)
			_, err := e.db.Users.Change(gctx, sub.ID, func(u entity.User) entity.User {
				u.SubscribedToUserIds = removeFirst(u.SubscribedToUserIds, id)
				return u
			})
			unlock()
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return entity.User{}, errors.WrapInternal(err, "Engine", "DeleteUser", "cascade")
	}

	if _, err := e.db.Users.Delete(ctx, id); err != nil {
		return entity.User{}, errors.WrapInternal(err, "Engine", "DeleteUser", "primary delete")
	}

	e.logger.Info("user deleted with cascades", "id", id)
	return user, nil
}

// DeleteProfile removes a profile. Profiles have no dependents.
func (e *Engine) DeleteProfile(ctx context.Context, id string) (entity.Profile, error) {
	profile, err := e.db.Profiles.Delete(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return entity.Profile{}, errors.WrapNotFound(errors.ErrProfileNotFound,
				"Engine", "DeleteProfile", "resolve id "+id)
		}
		return entity.Profile{}, err
	}
	return profile, nil
}

// DeletePost removes a post. Posts have no dependents.
func (e *Engine) DeletePost(ctx context.Context, id string) (entity.Post, error) {
	post, err := e.db.Posts.Delete(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return entity.Post{}, errors.WrapNotFound(errors.ErrPostNotFound,
				"Engine", "DeletePost", "resolve id "+id)
		}
		return entity.Post{}, err
	}
	return post, nil
}

// Subscribe appends targetID to the subscriber's list. Fails on
// self-subscription, unresolved ids, or an existing subscription.
// Order of the list is insertion order and is preserved.
func (e *Engine) Subscribe(ctx context.Context, subscriberID, targetID string) (entity.User, error) {
	if subscriberID == targetID {
		return entity.User{}, errors.WrapValidation(errors.ErrSelfSubscription,
			"Engine", "Subscribe", "identity check")
	}

	unlock := e.subLocks.lock(subscriberID)
	defer unlock()

	subscriber, found, err := e.db.Users.FindOne(ctx, store.Eq("id", subscriberID))
	if err != nil {
		return entity.User{}, err
	}
	if !found {
		return entity.User{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "Subscribe", "resolve subscriber "+subscriberID)
	}

	if _, found, err := e.db.Users.FindOne(ctx, store.Eq("id", targetID)); err != nil {
		return entity.User{}, err
	} else if !found {
		return entity.User{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "Subscribe", "resolve target "+targetID)
	}

	if slices.Contains(subscriber.SubscribedToUserIds, targetID) {
		return entity.User{}, errors.WrapValidation(errors.ErrAlreadySubscribed,
			"Engine", "Subscribe", subscriberID+" -> "+targetID)
	}

	updated, err := e.db.Users.Change(ctx, subscriberID, func(u entity.User) entity.User {
		u.SubscribedToUserIds = append(u.SubscribedToUserIds, targetID)
		return u
	})
	if err != nil {
		return entity.User{}, errors.WrapInternal(err, "Engine", "Subscribe", "store change")
	}

	e.logger.Debug("subscription added", "subscriber", subscriberID, "target", targetID)
	return updated, nil
}

// Unsubscribe removes the first (and by invariant only) occurrence of
// targetID from the subscriber's list. Fails on self-unsubscription,
// unresolved ids, or a missing subscription.
func (e *Engine) Unsubscribe(ctx context.Context, subscriberID, targetID string) (entity.User, error) {
	if subscriberID == targetID {
		return entity.User{}, errors.WrapValidation(errors.ErrSelfSubscription,
			"Engine", "Unsubscribe", "identity check")
	}

	unlock := e.subLocks.lock(subscriberID)
	defer unlock()

	subscriber, found, err := e.db.Users.FindOne(ctx, store.Eq("id", subscriberID))
	if err != nil {
		return entity.User{}, err
	}
	if !found {
		return entity.User{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "Unsubscribe", "resolve subscriber "+subscriberID)
	}

	if _, found, err := e.db.Users.FindOne(ctx, store.Eq("id", targetID)); err != nil {
		return entity.User{}, err
	} else if !found {
		return entity.User{}, errors.WrapValidation(errors.ErrUserNotFound,
			"Engine", "Unsubscribe", "resolve target "+targetID)
	}

	if !slices.Contains(subscriber.SubscribedToUserIds, targetID) {
		return entity.User{}, errors.WrapValidation(errors.ErrNotSubscribed,
			"Engine", "Unsubscribe", subscriberID+" -> "+targetID)
	}

	updated, err := e.db.Users.Change(ctx, subscriberID, func(u entity.User) entity.User {
		u.SubscribedToUserIds = removeFirst(u.SubscribedToUserIds, targetID)
		return u
	})
	if err != nil {
		return entity.User{}, errors.WrapInternal(err, "Engine", "Unsubscribe", "store change")
	}

	e.logger.Debug("subscription removed", "subscriber", subscriberID, "target", targetID)
	return updated, nil
}

// removeFirst returns ids without the first occurrence of id.
func removeFirst(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(slices.Clone(ids[:i]), ids[i+1:]...)
		}
	}
	return ids
}
