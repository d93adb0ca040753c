package models

// Credentials are the username/password pair sent as HTTP Basic-Auth on
// every backend request. The zero value is the anonymous pair.
type Credentials struct {
	Username string
	Password string
}

func Anonymous() Credentials {
	return Credentials{}
}

// IsAuthenticated reports whether both halves are present. A pair with only
// one half set is sent as anonymous.
func (c Credentials) IsAuthenticated() bool {
	return c.Username != "" && c.Password != ""
}

// Effective returns the pair that actually goes on the wire.
func (c Credentials) Effective() Credentials {
	if !c.IsAuthenticated() {
		return Anonymous()
	}
	return c
}
