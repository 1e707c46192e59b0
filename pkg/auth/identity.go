package auth

// Identity is the resolved caller of a request: a signed-in user or a guest.
type Identity struct {
	UserID uint
}

// Guest is the identity of an unauthenticated caller.
func Guest() Identity {
	return Identity{}
}

// User returns the identity of a signed-in user.
func User(id uint) Identity {
	return Identity{UserID: id}
}

func (i Identity) IsGuest() bool {
	return i.UserID == 0
}
