package core

import "strconv"

// Identity is who a connection is acting as. The zero value is anonymous.
type Identity struct {
	UserID   int64
	Username string
}

// Anonymous returns the identity given to connections without a valid token.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns an identity for a resolved directory user.
func Authenticated(userID int64, username string) Identity {
	return Identity{UserID: userID, Username: username}
}

// IsAnonymous reports whether the identity carries no user.
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// String returns the username, or "anonymous".
func (i Identity) String() string {
	if i.IsAnonymous() {
		return "anonymous"
	}
	if i.Username != "" {
		return i.Username
	}
	return "user#" + strconv.FormatInt(i.UserID, 10)
}
