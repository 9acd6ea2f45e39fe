package entity

import "time"

// User is the aggregate root for accounts.
// Passwords are stored as bcrypt hashes and never serialized to clients.
type User struct {
	ID           string    `json:"_id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Role         Role      `json:"role" bson:"role"`
	PhotoURL     string    `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Address      string    `json:"address,omitempty" bson:"address,omitempty"`
	Gender       string    `json:"gender,omitempty" bson:"gender,omitempty"`
	About        string    `json:"about,omitempty" bson:"about,omitempty"`
	Skills       string    `json:"skills,omitempty" bson:"skills,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProfilePatch is the allow-list of user fields a caller may change.
// Nil fields are left untouched. Role is honoured for admins only.
type ProfilePatch struct {
	Name     *string
	Address  *string
	Phone    *string
	About    *string
	PhotoURL *string
	Skills   *string
	Gender   *string
	Role     *Role
}

// Apply copies the non-nil profile fields onto u. Role is not applied here.
func (p ProfilePatch) Apply(u *User) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.Name, p.Name)
	set(&u.Address, p.Address)
	set(&u.Phone, p.Phone)
	set(&u.About, p.About)
	set(&u.PhotoURL, p.PhotoURL)
	set(&u.Skills, p.Skills)
	set(&u.Gender, p.Gender)
}
