package model

// FriendStatus is the state of a directed friendship link stored on the
// owner's side. A FriendRequest link on user U pointing at V means V asked
// U for friendship and U has not reciprocated yet.
type FriendStatus string

const (
	FriendRequest   FriendStatus = "REQUEST"
	FriendConfirmed FriendStatus = "FRIEND"
)

// User represents a member of the catalogue. Friends and FriendRequests
// are materialised from the friendship links table when the user is read;
// they are never written through the User value.
//
// Fields:
//  ID             – store-assigned identifier.
//  Email          – contact address.
//  Login          – unique handle without spaces.
//  Name           – display name; falls back to Login when blank.
//  Birthday       – date of birth, never in the future.
//  Friends        – ids the user sees as friends.
//  FriendRequests – ids with a pending inbound request to this user.
type User struct {
	ID             uint64   `json:"id"`
	Email          string   `json:"email" validate:"required,email"`
	Login          string   `json:"login" validate:"required,excludesall= "`
	Name           string   `json:"name"`
	Birthday       Date     `json:"birthday"`
	Friends        []uint64 `json:"friends"`
	FriendRequests []uint64 `json:"friendRequests,omitempty"`
}

// HasFriend reports whether id is in the user's friend set.
func (u User) HasFriend(id uint64) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}

// HasRequestFrom reports whether id has a pending request to the user.
func (u User) HasRequestFrom(id uint64) bool {
	for _, f := range u.FriendRequests {
		if f == id {
			return true
		}
	}
	return false
}
