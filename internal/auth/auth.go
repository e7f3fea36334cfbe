// Package auth verifies HTTP Basic credentials and decides which roles may
// perform which mutations.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
)

// Role is the access level attached to a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var (
	// ErrUnauthorized is returned for unknown users and wrong passwords.
	ErrUnauthorized = errors.New("incorrect username or password")
	// ErrForbidden is returned when an authenticated user lacks the role for an action.
	ErrForbidden = errors.New("insufficient permissions")
)

// User is an authenticated principal.
type User struct {
	Name string
	Role Role
}

// Account is one row of the credentials table.
type Account struct {
	Password string `toml:"password"`
	Role     Role   `toml:"role"`
}

// Credentials is the fixed table of accounts the gate accepts.
type Credentials struct {
	accounts map[string]Account
}

// dummySecret is compared against when the username is unknown so that the
// work done does not depend on whether the user exists.
const dummySecret = "nobel-unknown-user-placeholder"

// DefaultCredentials returns the built-in table: admin/admin123 and user/user123.
func DefaultCredentials() *Credentials {
	return &Credentials{accounts: map[string]Account{
		"admin": {Password: "admin123", Role: RoleAdmin},
		"user":  {Password: "user123", Role: RoleUser},
	}}
}

// NewCredentials builds a table from accounts. Every account needs a
// non-empty password and a known role.
func NewCredentials(accounts map[string]Account) (*Credentials, error) {
	if len(accounts) == 0 {
		return nil, errors.New("credentials: no accounts defined")
	}
	table := make(map[string]Account, len(accounts))
	for name, acct := range accounts {
		if name == "" {
			return nil, errors.New("credentials: empty username")
		}
		if acct.Password == "" {
			return nil, fmt.Errorf("credentials: user %q has no password", name)
		}
		if !acct.Role.Valid() {
			return nil, fmt.Errorf("credentials: user %q has invalid role %q", name, acct.Role)
		}
		table[name] = acct
	}
	return &Credentials{accounts: table}, nil
}

// Verify checks username and password and returns the matching user.
func (c *Credentials) Verify(username, password string) (*User, error) {
	acct, ok := c.accounts[username]
	secret := dummySecret
	if ok {
		secret = acct.Password
	}
	match := passwordsMatch(password, secret)
	if !ok || !match {
		return nil, ErrUnauthorized
	}
	return &User{Name: username, Role: acct.Role}, nil
}

// passwordsMatch compares SHA-256 digests of both passwords, so the
// comparison always runs over equal-length inputs whatever their lengths.
func passwordsMatch(given, want string) bool {
	g := sha256.Sum256([]byte(given))
	w := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(g[:], w[:]) == 1
}

// Usernames returns the configured usernames in sorted order.
func (c *Credentials) Usernames() []string {
	names := make([]string, 0, len(c.accounts))
	for name := range c.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
