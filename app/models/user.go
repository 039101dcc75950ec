package models

import "encoding/json"

// User is a storefront account. Email is the primary key and is matched
// exactly, case included.
type User struct {
	ID    interface{} `bson:"_id,omitempty"`
	Email string      `bson:"email" json:"email" validate:"required"`
	Role  string      `bson:"role,omitempty"`
	Extra Fields      `bson:",inline"`
}

func (u User) MarshalJSON() ([]byte, error) {
	doc := u.Extra.merged(u.ID)
	doc["email"] = u.Email
	if u.Role != "" {
		doc["role"] = u.Role
	}
	return json.Marshal(doc)
}

// UnmarshalJSON keeps any client-sent role: whether it is honoured is up to
// the caller.
func (u *User) UnmarshalJSON(data []byte) error {
	known, extra, err := splitFields(data, "email", "role")
	if err != nil {
		return err
	}
	vals, err := stringFields(known, "email", "role")
	if err != nil {
		return err
	}
	*u = User{Email: vals[0], Role: vals[1], Extra: extra}
	return nil
}
