package entity

// User is the profile of the connected wallet as served by the remote API.
// WalletAddress is the identity and never changes once set.
type User struct {
	WalletAddress    string `json:"wallet_address"`
	Username         string `json:"username"`
	DisplayName      string `json:"display_name"`
	ProfileImage     string `json:"profile_image,omitempty"`
	Bio              string `json:"bio,omitempty"`
	Email            string `json:"email,omitempty"`
	Website          string `json:"website,omitempty"`
	Twitter          string `json:"twitter,omitempty"`
	Instagram        string `json:"instagram,omitempty"`
	Location         string `json:"location,omitempty"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
	ProfileCompleted bool   `json:"profile_completed"`
}

// Clone returns an independent copy.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
