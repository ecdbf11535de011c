package booking

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// OtherService reveals the free-text service field.
const OtherService = "Other"

var DefaultServices = []string{
	"Standard clean",
	"Deep clean",
	"Move-in/out",
	OtherService,
}

type Catalog struct {
	Services []string `yaml:"services"`
}

func DefaultCatalog() Catalog {
	return Catalog{Services: append([]string(nil), DefaultServices...)}
}

// LoadCatalog reads a YAML file of the form:
//
//	services:
//	  - Standard clean
//	  - Window cleaning
//
// An empty path returns the default catalog. "Other" is appended when the
// file leaves it out.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read service catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse service catalog: %w", err)
	}

	return c.normalize(), nil
}

func (c Catalog) normalize() Catalog {
	seen := make(map[string]bool, len(c.Services)+1)
	out := make([]string, 0, len(c.Services)+1)
	for _, s := range c.Services {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || s == OtherService {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	if len(out) == 0 {
		return DefaultCatalog()
	}
	return Catalog{Services: append(out, OtherService)}
}

func (c Catalog) Contains(service string) bool {
	for _, s := range c.Services {
		if s == service {
			return true
		}
	}
	return false
}

// Resolve returns the service value to store. "Other" with custom text
// stores the custom text; "Other" alone is stored as is.
func (c Catalog) Resolve(selected, custom string) string {
	if selected == OtherService {
		if custom = strings.TrimSpace(custom); custom != "" {
			return custom
		}
	}
	return selected
}

// Split is the inverse of Resolve for pre-filling an edit form: a stored
// value outside the catalog comes back as ("Other", value).
func (c Catalog) Split(stored string) (selected, custom string) {
	if stored == "" {
		return c.first(), ""
	}
	if c.Contains(stored) {
		return stored, ""
	}
	return OtherService, stored
}

func (c Catalog) first() string {
	if len(c.Services) == 0 {
		return OtherService
	}
	return c.Services[0]
}
