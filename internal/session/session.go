// Package session gates the CLI behind a login. Credentials come from
// config (username plus argon2id password hash); when none are
// configured the built-in reception account applies. A successful login
// drops a session file next to the user config and every guarded
// command checks for it.
package session

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

// Built-in account used when no credentials are configured.
const (
	DefaultUsername = "DLSJ69110"
	defaultPassword = "1234"
)

// Argon2id parameters (OWASP recommended).
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

var ErrBadCredentials = errors.New("invalid username or password")

// HashPassword encodes password as $argon2id$v=19$m=...,t=...,p=...$salt$hash.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword checks password against an encoded argon2id hash.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, errors.New("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, errors.New("not an argon2id hash")
	}
	var mem, iters uint32
	var threads uint8
	for _, kv := range strings.Split(parts[3], ",") {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return false, errors.New("invalid hash parameters")
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return false, fmt.Errorf("invalid hash parameter %s: %w", k, err)
		}
		switch k {
		case "m":
			mem = uint32(n)
		case "t":
			iters = uint32(n)
		case "p":
			threads = uint8(n)
		}
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("invalid salt encoding: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("invalid hash encoding: %w", err)
	}
	got := argon2.IDKey([]byte(password), salt, iters, mem, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// Credentials is the configured login pair. Empty fields fall back to
// the built-in account.
type Credentials struct {
	Username     string
	PasswordHash string
}

// Check validates a login attempt.
func (c Credentials) Check(username, password string) error {
	if c.Username == "" || c.PasswordHash == "" {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte(DefaultUsername)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(defaultPassword)) == 1
		if !userOK || !passOK {
			return ErrBadCredentials
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) != 1 {
		return ErrBadCredentials
	}
	ok, err := VerifyPassword(password, c.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrBadCredentials
	}
	return nil
}

// State is the on-disk session record.
type State struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultPath is the session file location, next to the user config.
func DefaultPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "optipresta", "session.json")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "optipresta", "session.json")
}

// Save writes the session file with owner-only permissions.
func Save(path string, st State) error {
	if path == "" {
		return errors.New("no session path")
	}
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

// Load reads the session file. A missing file means no active session.
func Load(path string) (*State, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("corrupt session file %s: %w", path, err)
	}
	if st.Username == "" {
		return nil, nil
	}
	return &st, nil
}

// Clear removes the session file. Removing an absent file is not an
// error.
func Clear(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
