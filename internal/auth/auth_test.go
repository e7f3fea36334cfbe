package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestVerify(t *testing.T) {
	creds := DefaultCredentials()
	tests := []struct {
		name     string
		user     string
		password string
		wantRole Role
		wantErr  error
	}{
		{"admin", "admin", "admin123", RoleAdmin, nil},
		{"user", "user", "user123", RoleUser, nil},
		{"wrong password", "admin", "user123", "", ErrUnauthorized},
		{"unknown user", "eve", "admin123", "", ErrUnauthorized},
		{"empty", "", "", "", ErrUnauthorized},
		{"case sensitive name", "Admin", "admin123", "", ErrUnauthorized},
		{"password prefix", "admin", "admin12", "", ErrUnauthorized},
		{"password extended", "admin", "admin1234", "", ErrUnauthorized},
		{"unknown user with placeholder", "eve", dummySecret, "", ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := creds.Verify(tt.user, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if u.Name != tt.user || u.Role != tt.wantRole {
				t.Fatalf("got %+v", u)
			}
		})
	}
}

func TestPasswordsMatch(t *testing.T) {
	tests := []struct {
		given, want string
		match       bool
	}{
		{"admin123", "admin123", true},
		{"", "", true},
		{"admin12", "admin123", false},
		{"admin123", "admin12", false},
		{"", "admin123", false},
		{"Admin123", "admin123", false},
	}
	for _, tt := range tests {
		if got := passwordsMatch(tt.given, tt.want); got != tt.match {
			t.Errorf("passwordsMatch(%q, %q) = %v, want %v", tt.given, tt.want, got, tt.match)
		}
	}
}

func TestNewCredentials_Validation(t *testing.T) {
	tests := []struct {
		name     string
		accounts map[string]Account
	}{
		{"empty table", nil},
		{"no password", map[string]Account{"a": {Role: RoleUser}}},
		{"bad role", map[string]Account{"a": {Password: "x", Role: "root"}}},
		{"empty name", map[string]Account{"": {Password: "x", Role: RoleUser}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCredentials(tt.accounts); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.toml")
	content := `
[users.curie]
password = "polonium"
role = "admin"

[users.guest]
password = "guest"
role = "user"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got := creds.Usernames(); len(got) != 2 || got[0] != "curie" || got[1] != "guest" {
		t.Fatalf("usernames = %v", got)
	}
	u, err := creds.Verify("curie", "polonium")
	if err != nil || u.Role != RoleAdmin {
		t.Fatalf("Verify curie = %+v, %v", u, err)
	}
	if _, err := creds.Verify("admin", "admin123"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("default account should not exist, err = %v", err)
	}
}

func TestLoadCredentials_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCredentials(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[users.x]\npassword = \"p\"\nrole = \"god\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCredentials(bad); err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestPolicy(t *testing.T) {
	p, err := NewPolicy()
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	user := &User{Name: "user", Role: RoleUser}
	admin := &User{Name: "admin", Role: RoleAdmin}
	tests := []struct {
		name   string
		user   *User
		action Action
		want   error
	}{
		{"user create", user, ActionCreate, nil},
		{"user update", user, ActionUpdate, nil},
		{"user delete", user, ActionDelete, ErrForbidden},
		{"admin create", admin, ActionCreate, nil},
		{"admin update", admin, ActionUpdate, nil},
		{"admin delete", admin, ActionDelete, nil},
		{"unknown role", &User{Name: "x", Role: "guest"}, ActionCreate, ErrForbidden},
		{"no user", nil, ActionCreate, ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := p.Authorize(tt.user, tt.action); !errors.Is(err, tt.want) {
				t.Fatalf("Authorize = %v, want %v", err, tt.want)
			}
		})
	}
	if err := p.RequireAdmin(user); !errors.Is(err, ErrForbidden) {
		t.Fatalf("RequireAdmin(user) = %v", err)
	}
	if err := p.RequireAdmin(admin); err != nil {
		t.Fatalf("RequireAdmin(admin) = %v", err)
	}
}
