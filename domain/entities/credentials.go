package entities

import (
	"errors"
	"strings"
)

// ErrMissingCredentials is returned when either half of the account is empty.
var ErrMissingCredentials = errors.New("username or password is not defined")

// Credentials is the account used to sign in to the hosted spreadsheet service.
// It is built once at startup and never mutated.
type Credentials struct {
	username string
	password string
}

// NewCredentials trims the username and keeps the password exactly as given.
// A password made only of whitespace counts as missing.
func NewCredentials(username, password string) (*Credentials, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingCredentials
	}
	return &Credentials{username: username, password: password}, nil
}

func (c *Credentials) Username() string { return c.username }

func (c *Credentials) Password() string { return c.password }

// String never prints the password.
func (c *Credentials) String() string {
	return c.username + ":[REDACTED]"
}
