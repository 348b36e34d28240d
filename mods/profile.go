package mods

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	MinProfileNameLength = 1
	MaxProfileNameLength = 50

	// Characters that would break paths or exports on at least one platform.
	invalidProfileChars = `<>:"/\|?*`
)

// Profile is a named, ordered, enable/disable-able set of mods targeting one
// deployment directory. Profiles are persisted as JSON documents by the
// caller; this package only reads and writes the shape.
type Profile struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Mods         []*Mod    `json:"mods"`
	GamePath     string    `json:"game_path,omitempty"`
	Active       bool      `json:"active"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"last_modified"`
}

// NewProfile creates a validated, empty profile.
func NewProfile(name, gamePath string) (*Profile, error) {
	if err := ValidateProfileName(name); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Profile{
		Name:         name,
		GamePath:     gamePath,
		Created:      now,
		LastModified: now,
	}, nil
}

// ValidateProfileName enforces the 1-50 character filesystem-safe rule.
func ValidateProfileName(name string) error {
	if len(name) < MinProfileNameLength {
		return &ValidationError{Field: "profile name", Message: "must not be empty"}
	}
	if len(name) > MaxProfileNameLength {
		return &ValidationError{Field: "profile name", Message: fmt.Sprintf("%q exceeds %d characters", name, MaxProfileNameLength)}
	}
	if i := strings.IndexAny(name, invalidProfileChars); i >= 0 {
		return &ValidationError{Field: "profile name", Message: fmt.Sprintf("%q contains invalid character %q", name, name[i])}
	}
	return nil
}

// AddMod appends a mod unless one with the same ID is already present.
func (p *Profile) AddMod(m *Mod) {
	if p.HasMod(m.ID) {
		return
	}
	p.Mods = append(p.Mods, m)
	p.LastModified = time.Now()
}

// RemoveMod drops the mod with the given ID, if present.
func (p *Profile) RemoveMod(modID string) {
	kept := p.Mods[:0]
	for _, m := range p.Mods {
		if m.ID != modID {
			kept = append(kept, m)
		}
	}
	if len(kept) != len(p.Mods) {
		p.Mods = kept
		p.LastModified = time.Now()
	}
}

// GetMod returns the mod with the given ID, or nil.
func (p *Profile) GetMod(modID string) *Mod {
	for _, m := range p.Mods {
		if m.ID == modID {
			return m
		}
	}
	return nil
}

// HasMod reports whether the profile contains a mod with the given ID.
func (p *Profile) HasMod(modID string) bool {
	return p.GetMod(modID) != nil
}

// EnabledMods returns the enabled subset in slice order.
func (p *Profile) EnabledMods() []*Mod {
	var enabled []*Mod
	for _, m := range p.Mods {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled
}

// ReorderMod moves the mod to newPosition and reassigns contiguous load
// orders so intra-profile ordering stays dense.
func (p *Profile) ReorderMod(modID string, newPosition int) {
	mod := p.GetMod(modID)
	if mod == nil {
		return
	}
	if newPosition < 0 {
		newPosition = 0
	}
	if newPosition >= len(p.Mods) {
		newPosition = len(p.Mods) - 1
	}

	rest := make([]*Mod, 0, len(p.Mods)-1)
	for _, m := range p.Mods {
		if m.ID != modID {
			rest = append(rest, m)
		}
	}
	p.Mods = append(rest[:newPosition:newPosition], append([]*Mod{mod}, rest[newPosition:]...)...)

	for i, m := range p.Mods {
		m.LoadOrder = i
	}
	p.LastModified = time.Now()
}

// ApplyLoadOrder reorders the profile's mods to match the given ID sequence
// (typically a resolver result) and reassigns load orders. IDs not present
// in the profile are ignored; mods absent from the sequence keep their
// relative position at the end.
func (p *Profile) ApplyLoadOrder(order []string) {
	seen := make(map[string]bool, len(order))
	sorted := make([]*Mod, 0, len(p.Mods))
	for _, id := range order {
		if m := p.GetMod(id); m != nil && !seen[id] {
			sorted = append(sorted, m)
			seen[id] = true
		}
	}
	for _, m := range p.Mods {
		if !seen[m.ID] {
			sorted = append(sorted, m)
		}
	}
	p.Mods = sorted
	for i, m := range p.Mods {
		m.LoadOrder = i
	}
	p.LastModified = time.Now()
}

// Save writes the profile document to path.
func (p *Profile) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile %q: %w", p.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadProfile reads and validates a profile document.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if err := ValidateProfileName(p.Name); err != nil {
		return nil, err
	}
	for _, m := range p.Mods {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}

	return &p, nil
}
