package user

import "gochat/internal/dbmongo"

// Profile is the public view of a user returned to other users.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

func ToProfile(u *dbmongo.User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// ProfileDetails is the owner's view of their own profile.
type ProfileDetails struct {
	Profile
	FriendCount int `json:"friendCount"`
}

func ToProfileDetails(u *dbmongo.User) ProfileDetails {
	return ProfileDetails{Profile: ToProfile(u), FriendCount: len(u.FriendIDs)}
}

// ProfileUpdate carries the fields a user may change. A nil field is left
// as stored.
type ProfileUpdate struct {
	UserID    string  `json:"userId"`
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

func ToProfiles(users []*dbmongo.User) []Profile {
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, ToProfile(u))
	}
	return out
}
