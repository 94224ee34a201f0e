// Package country provides the static table of country codes accepted on
// transport documents.
package country

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"transdoc/internal/core/apperror"
)

//go:embed countries.yaml
var defaultTable []byte

// Country is one entry of the registry.
type Country struct {
	Code      string `yaml:"code" json:"code"`
	Name      string `yaml:"name" json:"name"`
	NameLocal string `yaml:"name_local" json:"nameLocal"`
}

// Registry is an immutable, ordered lookup table. Safe for concurrent use.
type Registry struct {
	ordered []Country
	byCode  map[string]Country
}

type table struct {
	Countries []Country `yaml:"countries"`
}

// Default returns the registry built from the embedded country table.
func Default() *Registry {
	r, err := Load(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("country: embedded table is invalid: %v", err))
	}
	return r
}

// Load parses a YAML country table.
func Load(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse country table: %w", err)
	}
	return New(t.Countries)
}

// New builds a registry preserving the given order.
func New(countries []Country) (*Registry, error) {
	r := &Registry{
		ordered: make([]Country, 0, len(countries)),
		byCode:  make(map[string]Country, len(countries)),
	}
	for _, c := range countries {
		if len(c.Code) != 2 || strings.ToUpper(c.Code) != c.Code {
			return nil, fmt.Errorf("invalid country code %q", c.Code)
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, fmt.Errorf("duplicate country code %q", c.Code)
		}
		r.byCode[c.Code] = c
		r.ordered = append(r.ordered, c)
	}
	return r, nil
}

// IsValid reports whether code is a known country.
func (r *Registry) IsValid(code string) bool {
	_, ok := r.byCode[code]
	return ok
}

// Get returns the country for code.
func (r *Registry) Get(code string) (Country, bool) {
	c, ok := r.byCode[code]
	return c, ok
}

// List returns a copy of all countries in table order.
func (r *Registry) List() []Country {
	out := make([]Country, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Validate returns an INVALID_COUNTRY error for unknown codes.
func (r *Registry) Validate(code string) error {
	if !r.IsValid(code) {
		return apperror.NewInvalidCountry(code)
	}
	return nil
}

// Normalize upper-cases and trims user input before lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
