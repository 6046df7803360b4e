package model

// Record is the public shape of a login as seen by extension callers. It
// carries the same values as LoginInfo under the API's field names.
type Record struct {
	Origin        string  `json:"origin"`
	FormSubmitURL *string `json:"formSubmitURL"`
	Realm         *string `json:"realm"`
	Username      string  `json:"username"`
	Password      string  `json:"password"`
	UsernameField *string `json:"usernameField"`
	PasswordField *string `json:"passwordField"`
}

// Query is a partial Record. A nil field places no constraint on results;
// the zero Query matches every login.
type Query struct {
	Origin        *string `json:"origin,omitempty"`
	FormSubmitURL *string `json:"formSubmitURL,omitempty"`
	Realm         *string `json:"realm,omitempty"`
	Username      *string `json:"username,omitempty"`
	Password      *string `json:"password,omitempty"`
	UsernameField *string `json:"usernameField,omitempty"`
	PasswordField *string `json:"passwordField,omitempty"`
}
