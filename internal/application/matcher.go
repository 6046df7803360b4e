package application

import "github.com/ericfisherdev/logingate/internal/domain/model"

// Match reports whether login satisfies every non-nil field of q. Values
// are compared exactly; a nil query field matches anything.
func Match(login model.LoginInfo, q model.Query) bool {
	return matchString(q.Origin, login.Hostname) &&
		matchNullable(q.FormSubmitURL, login.FormSubmitURL) &&
		matchNullable(q.Realm, login.HTTPRealm) &&
		matchString(q.Username, login.Username) &&
		matchString(q.Password, login.Password) &&
		matchNullable(q.UsernameField, login.UsernameField) &&
		matchNullable(q.PasswordField, login.PasswordField)
}

func matchString(want *string, got string) bool {
	return want == nil || *want == got
}

func matchNullable(want, got *string) bool {
	return want == nil || (got != nil && *want == *got)
}
