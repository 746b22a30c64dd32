package domain

// Identity is the externally verified result of session authentication.
// The coordination core never checks credentials itself.
type Identity struct {
	UserID   string
	Username string
}

// Session binds one live connection to one identity.
// CurrentRoom is the at-most-one room the connection is subscribed to.
type Session struct {
	ConnID      string
	UserID      string
	Username    string
	CurrentRoom RoomID
}
