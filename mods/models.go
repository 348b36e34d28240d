package mods

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports malformed model input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Dependency declares that a mod requires another mod to be present.
type Dependency struct {
	ModID             string `json:"mod_id"`
	VersionConstraint string `json:"version_constraint"` // "*", exact, ==, >=, >, <=, <
}

// Mod represents a single installable Valheim mod.
//
// The ID follows the Thunderstore "author-name" convention and is the key
// used everywhere else in the system: dependency edges, deployment state
// attribution and the plugin directory layout all refer to it.
type Mod struct {
	ID          string `json:"id"` // author-name
	Name        string `json:"name"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`

	InstallPath string `json:"install_path,omitempty"` // Root of the mod's deployable file tree

	Dependencies []Dependency `json:"dependencies,omitempty"`
	Tags         []string     `json:"tags,omitempty"`

	Enabled   bool `json:"enabled"`
	LoadOrder int  `json:"load_order"`
	Installed bool `json:"installed,omitempty"`

	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	LastUsed     *time.Time `json:"last_used,omitempty"`
}

// NewMod builds a validated mod. The ID and version are checked up front so
// malformed metadata fails here rather than deep inside resolution.
func NewMod(id, name, author, version string) (*Mod, error) {
	m := &Mod{
		ID:      id,
		Name:    name,
		Author:  author,
		Version: version,
		Enabled: true,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the invariants every registered mod must hold.
func (m *Mod) Validate() error {
	if !ValidModID(m.ID) {
		return &ValidationError{Field: "mod id", Message: fmt.Sprintf("%q is not in author-name form", m.ID)}
	}
	if m.Version == "" {
		return &ValidationError{Field: "version", Message: "must not be empty"}
	}
	for _, dep := range m.Dependencies {
		if dep.ModID == "" {
			return &ValidationError{Field: "dependency", Message: "mod_id must not be empty"}
		}
	}
	return nil
}

// ValidModID reports whether id is in "author-name" form with both parts
// non-blank.
func ValidModID(id string) bool {
	author, name, ok := strings.Cut(id, "-")
	return ok && strings.TrimSpace(author) != "" && strings.TrimSpace(name) != ""
}

// HasDependency reports whether this mod declares a dependency on modID.
func (m *Mod) HasDependency(modID string) bool {
	for _, dep := range m.Dependencies {
		if dep.ModID == modID {
			return true
		}
	}
	return false
}
