package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Library holds the seed data for the catalog and member stores, plus the
// domain-scope text shared by the guardrail and the instruction composer.
type Library struct {
	DomainScope string            `yaml:"domain_scope"`
	Hours       string            `yaml:"hours"`
	Books       map[string]int    `yaml:"books"`
	Members     map[string]string `yaml:"members"` // token -> display name
}

// LoadLibrary reads the seed file at path, or returns the built-in defaults
// when path is empty.
func LoadLibrary(path string) (*Library, error) {
	if path == "" {
		return DefaultLibrary(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library file: %w", err)
	}

	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse library file: %w", err)
	}

	defaults := DefaultLibrary()
	if lib.DomainScope == "" {
		lib.DomainScope = defaults.DomainScope
	}
	if lib.Hours == "" {
		lib.Hours = defaults.Hours
	}
	return &lib, nil
}

// DefaultLibrary returns the built-in catalog, member registry, and scope text.
func DefaultLibrary() *Library {
	return &Library{
		DomainScope: "library services (searching books, checking availability, opening hours, membership)",
		Hours:       "Library timings: Mon-Fri 09:00-18:00; Sat 10:00-14:00; Sun closed.",
		Books: map[string]int{
			"Clean Code":                            2,
			"Atomic Habits":                         5,
			"The Pragmatic Programmer":              0,
			"Deep Work":                             1,
			"Harry Potter and the Sorcerer's Stone": 3,
		},
		Members: map[string]string{
			"M001": "Muhammad Annas",
			"M002": "Ali Khan",
		},
	}
}
