package domain

// Caller is the identity associated with a request, resolved from its
// session token. The zero value is the anonymous caller; an identified
// caller carries the id and username embedded in the verified token.
type Caller struct {
	ID       string
	Username string
}

var Anonymous = Caller{}

func (c Caller) IsAnonymous() bool {
	return c.ID == ""
}
