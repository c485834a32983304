// Package entity defines the four record types held by the in-memory store
// and the partial-update patch types applied by change operations.
package entity

// User is a person account. SubscribedToUserIds holds the ids of users this
// user subscribes to, in subscription order; the inverse direction is
// computed, never stored.
type User struct {
	ID                  string   `json:"id"`
	FirstName           string   `json:"firstName"`
	LastName            string   `json:"lastName"`
	Email               string   `json:"email"`
	SubscribedToUserIds []string `json:"subscribedToUserIds"`
}

// Profile carries the extended attributes of a user. At most one profile
// exists per user id.
type Profile struct {
	ID           string `json:"id"`
	Avatar       string `json:"avatar"`
	Sex          string `json:"sex"`
	Birthday     int64  `json:"birthday"`
	Country      string `json:"country"`
	Street       string `json:"street"`
	City         string `json:"city"`
	MemberTypeID string `json:"memberTypeId"`
	UserID       string `json:"userId"`
}

// Post is a single piece of content owned by a user.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	UserID  string `json:"userId"`
}

// MemberType is a fixed membership tier. The set of member types is seeded
// at startup and never extended at runtime; only discount and
// monthPostsLimit are mutable.
type MemberType struct {
	ID              string  `json:"id"`
	Discount        float64 `json:"discount"`
	MonthPostsLimit int     `json:"monthPostsLimit"`
}

// UserPatch is a partial update for a User. Nil fields are left unchanged.
// Subscription lists are not patchable; they change only through Subscribe
// and Unsubscribe.
type UserPatch struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// Apply returns a copy of u with the non-nil patch fields applied.
func (p UserPatch) Apply(u User) User {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	return u
}

// ProfilePatch is a partial update for a Profile.
type ProfilePatch struct {
	Avatar       *string `json:"avatar,omitempty"`
	Sex          *string `json:"sex,omitempty"`
	Birthday     *int64  `json:"birthday,omitempty"`
	Country      *string `json:"country,omitempty"`
	Street       *string `json:"street,omitempty"`
	City         *string `json:"city,omitempty"`
	MemberTypeID *string `json:"memberTypeId,omitempty"`
}

// Apply returns a copy of pr with the non-nil patch fields applied.
func (p ProfilePatch) Apply(pr Profile) Profile {
	if p.Avatar != nil {
		pr.Avatar = *p.Avatar
	}
	if p.Sex != nil {
		pr.Sex = *p.Sex
	}
	if p.Birthday != nil {
		pr.Birthday = *p.Birthday
	}
	if p.Country != nil {
		pr.Country = *p.Country
	}
	if p.Street != nil {
		pr.Street = *p.Street
	}
	if p.City != nil {
		pr.City = *p.City
	}
	if p.MemberTypeID != nil {
		pr.MemberTypeID = *p.MemberTypeID
	}
	return pr
}

// PostPatch is a partial update for a Post.
type PostPatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Apply returns a copy of po with the non-nil patch fields applied.
func (p PostPatch) Apply(po Post) Post {
	if p.Title != nil {
		po.Title = *p.Title
	}
	if p.Content != nil {
		po.Content = *p.Content
	}
	return po
}

// MemberTypePatch is a partial update for a MemberType.
type MemberTypePatch struct {
	Discount        *float64 `json:"discount,omitempty"`
	MonthPostsLimit *int     `json:"monthPostsLimit,omitempty"`
}

// Apply returns a copy of mt with the non-nil patch fields applied.
func (p MemberTypePatch) Apply(mt MemberType) MemberType {
	if p.Discount != nil {
		mt.Discount = *p.Discount
	}
	if p.MonthPostsLimit != nil {
		mt.MonthPostsLimit = *p.MonthPostsLimit
	}
	return mt
}
