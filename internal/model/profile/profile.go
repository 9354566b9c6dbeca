package profile

// UserProfile is the single local identity record shown in the UI. One per
// installation; overwritten on save, never deleted.
type UserProfile struct {
	Name         string `json:"name"`
	PhotoDataURI string `json:"photoDataUri,omitempty"`
}
