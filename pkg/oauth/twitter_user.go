package oauth

// TwitterUser is the resource owner returned by the Twitter users/me endpoint.
// It holds the "data" object of the response; accessors for the contracted
// profile fields fail with ErrMissingField rather than returning empty values.
type TwitterUser struct {
	data map[string]any
}

// NewTwitterUser wraps a parsed users/me response.
// A response without a "data" object yields an empty user.
func NewTwitterUser(raw map[string]any) *TwitterUser {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		data = map[string]any{}
	}
	return &TwitterUser{data: data}
}

// ID returns the user's numeric ID as a string.
func (u *TwitterUser) ID() (string, error) {
	return u.field("id")
}

// Name returns the display name.
func (u *TwitterUser) Name() (string, error) {
	return u.field("name")
}

// Username returns the handle without the leading @.
func (u *TwitterUser) Username() (string, error) {
	return u.field("username")
}

// ProfileImageURL returns the avatar URL.
func (u *TwitterUser) ProfileImageURL() (string, error) {
	return u.field("profile_image_url")
}

// Get looks up any field without failing.
func (u *TwitterUser) Get(key string) (string, bool) {
	v, ok := u.data[key]
	if !ok || v == nil {
		return "", false
	}
	return stringify(v), true
}

// ToMap returns the stored data object as is.
func (u *TwitterUser) ToMap() map[string]any {
	return u.data
}

// UserInfo converts the user into provider-agnostic UserInfo.
// ID and username are required; name and picture may be absent.
func (u *TwitterUser) UserInfo() (*UserInfo, error) {
	id, err := u.ID()
	if err != nil {
		return nil, err
	}
	username, err := u.Username()
	if err != nil {
		return nil, err
	}

	name, _ := u.Get("name")
	picture, _ := u.Get("profile_image_url")

	return &UserInfo{
		ID:       id,
		Name:     name,
		Username: username,
		Picture:  picture,
	}, nil
}

func (u *TwitterUser) field(key string) (string, error) {
	v, ok := u.Get(key)
	if !ok {
		return "", &MissingFieldError{Field: key}
	}
	return v, nil
}

var _ ResourceOwner = (*TwitterUser)(nil)
