package models

type User struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// DisplayName falls back to the username when the full name was never set.
func (u User) DisplayName() string {
	if u.FullName == "" {
		return u.Username
	}
	return u.FullName
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}
