package domain

// User is the authenticated identity as reported by the platform backend.
// An identity is either fully present (all required fields set) or entirely
// absent; the session slice never holds a partial one.
type User struct {
	ID        string `json:"id" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	College   string `json:"college,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"profilePicture,omitempty" validate:"omitempty,url"`
}

// Complete reports whether the identity carries every required field.
func (u *User) Complete() bool {
	return u != nil && u.ID != "" && u.Username != "" && u.Email != ""
}

// ProfileUpdate carries the fields of a partial profile edit. Nil fields are
// left untouched when merged into an existing identity.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	College   *string `json:"college,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"profilePicture,omitempty"`
}

// Apply merges the update into a copy of u and returns it.
func (p ProfileUpdate) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.College != nil {
		u.College = *p.College
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	return u
}
