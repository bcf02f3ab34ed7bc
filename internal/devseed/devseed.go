// Package devseed reads the JSON fixture files used to pre-populate the
// in-memory Synapse service.
package devseed

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/spf13/afero"
)

var kindPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// EntitySeedEntry is one entity to create before the service starts. ID is
// optional; the service assigns one when it is empty.
type EntitySeedEntry struct {
	Kind   string         `json:"kind"`
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
	// Annotations are stored as the annotations resource of the entity.
	Annotations map[string]any `json:"annotations,omitempty"`
}

// UserSeedEntry is a principal. Users log in with Password; groups do not.
type UserSeedEntry struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Group marks the principal as a user group instead of a user.
	Group bool `json:"group,omitempty"`
}

// Seed is the top-level layout of a seed file.
type Seed struct {
	Users    []UserSeedEntry   `json:"users"`
	Entities []EntitySeedEntry `json:"entities"`
}

// LoadSeed reads a seed file from the OS filesystem.
func LoadSeed(path string) (*Seed, error) {
	return LoadSeedFs(afero.NewOsFs(), path)
}

// LoadSeedFs reads and validates a seed file from fs.
func LoadSeedFs(fs afero.Fs, path string) (*Seed, error) {
	if path == "" {
		return nil, errors.New("devseed: path is required")
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("devseed: read %s: %w", path, err)
	}
	var seed Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("devseed: decode %s: %w", path, err)
	}
	if err := seed.Validate(); err != nil {
		return nil, fmt.Errorf("devseed: %s: %w", path, err)
	}
	return &seed, nil
}

// Validate checks that every entry can be applied.
func (s *Seed) Validate() error {
	for i, u := range s.Users {
		if u.Email == "" {
			return fmt.Errorf("user %d: email is required", i)
		}
		if !u.Group && u.Password == "" {
			return fmt.Errorf("user %d: password is required", i)
		}
	}
	for i, e := range s.Entities {
		if !kindPattern.MatchString(e.Kind) {
			return fmt.Errorf("entity %d: invalid kind %q", i, e.Kind)
		}
	}
	return nil
}
