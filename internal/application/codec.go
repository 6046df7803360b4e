package application

import "github.com/ericfisherdev/logingate/internal/domain/model"

// ToPublic renames a stored login's fields to the API's names. Store
// metadata such as the GUID is not part of the public record.
func ToPublic(login model.LoginInfo) model.Record {
	return model.Record{
		Origin:        login.Hostname,
		FormSubmitURL: login.FormSubmitURL,
		Realm:         login.HTTPRealm,
		Username:      login.Username,
		Password:      login.Password,
		UsernameField: login.UsernameField,
		PasswordField: login.PasswordField,
	}
}

// ToNative is the inverse of ToPublic.
func ToNative(rec model.Record) model.LoginInfo {
	return model.LoginInfo{
		Hostname:      rec.Origin,
		FormSubmitURL: rec.FormSubmitURL,
		HTTPRealm:     rec.Realm,
		Username:      rec.Username,
		Password:      rec.Password,
		UsernameField: rec.UsernameField,
		PasswordField: rec.PasswordField,
	}
}
