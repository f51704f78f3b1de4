package models

// User is the authenticated identity supplied by the external auth system.
// A nil *User means the request is anonymous.
type User struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}
