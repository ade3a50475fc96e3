// Package credentials loads the login identity used by a simulated session.
package credentials

import (
	"errors"
	"net/url"
)

// Form field names posted to the account endpoints.
const (
	UsernameField = "MainContent_Username"
	PasswordField = "MainContent_MainContent_Password"
)

// ErrInvalidDocument is returned when the credentials document is not valid
// JSON or does not have the expected shape.
var ErrInvalidDocument = errors.New("credentials: invalid document")

// Credentials is a username and password pair.
type Credentials struct {
	Username string
	Password string
}

// Form returns the credentials as the login/logout form body.
func (c Credentials) Form() url.Values {
	return url.Values{
		UsernameField: {c.Username},
		PasswordField: {c.Password},
	}
}

// Source provides credentials. Implementations may return different values
// on every call.
type Source interface {
	Load() (Credentials, error)
}

// StaticSource always returns the same credentials.
type StaticSource Credentials

// Load implements Source.
func (s StaticSource) Load() (Credentials, error) {
	return Credentials(s), nil
}
