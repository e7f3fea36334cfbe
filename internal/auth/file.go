package auth

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// credentialsFile is the on-disk layout:
//
//	[users.admin]
//	password = "admin123"
//	role = "admin"
type credentialsFile struct {
	Users map[string]Account `toml:"users"`
}

// LoadCredentials reads a TOML credentials table from path.
func LoadCredentials(path string) (*Credentials, error) {
	var f credentialsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("reading credentials %s: %w", path, err)
	}
	creds, err := NewCredentials(f.Users)
	if err != nil {
		return nil, fmt.Errorf("reading credentials %s: %w", path, err)
	}
	return creds, nil
}
