package application

import (
	"strings"

	"github.com/ericfisherdev/logingate/internal/domain/model"
	"github.com/ericfisherdev/logingate/internal/domain/origin"
)

const (
	// addonScheme addresses an extension by its add-on id: "addon:<id>".
	addonScheme = "addon"
	// extensionScheme addresses an extension's own resources:
	// "moz-extension://<id or instance uuid>/".
	extensionScheme = "moz-extension"
)

// Accessible reports whether caller may read or write logins stored for
// originURL. Origins that cannot be parsed are never accessible.
func Accessible(caller model.Caller, originURL string) bool {
	u, err := origin.Parse(originURL)
	if err != nil {
		return false
	}

	switch u.Scheme {
	case addonScheme:
		return u.Path == caller.ExtensionID
	case extensionScheme:
		// Host is already lowercased; registered ids may not be.
		return strings.EqualFold(u.Host, caller.ExtensionID) || strings.EqualFold(u.Host, caller.InstanceID)
	default:
		return caller.Hosts.Matches(u)
	}
}
