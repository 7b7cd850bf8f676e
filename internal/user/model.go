package user

import "time"

type User struct {
	ID           int64     `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	UserType     string    `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// FullName is used in email salutations and invoices; falls back to the
// username when the name fields are empty.
func (u *User) FullName() string {
	n := u.FirstName
	if u.LastName != "" {
		if n != "" {
			n += " "
		}
		n += u.LastName
	}
	if n == "" {
		return u.Username
	}
	return n
}
