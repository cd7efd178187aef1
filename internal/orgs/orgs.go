// Package orgs resolves short organization codes from export file names
// to canonical organization identities. The mapping is maintained by
// hand as YAML; codes missing from it are a data-quality finding, not a
// failure, so resolution never rejects a record.
package orgs

import (
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/hrmigrate/rekon/pkg/errors"
)

// Org is one registered organization.
type Org struct {
	Code        string `yaml:"code" json:"code"`
	CanonicalID string `yaml:"canonical_id" json:"canonical_id"`
	DisplayName string `yaml:"display_name" json:"display_name"`
}

// registryFile is the on-disk shape of the mapping.
type registryFile struct {
	Organizations []Org `yaml:"organizations"`
}

// Registry answers code lookups.
type Registry struct {
	byCode map[string]Org
}

// NewRegistry builds a registry from explicit entries. Codes are
// case-insensitive; duplicates are a configuration error because two
// canonical identities for one code cannot both be right.
func NewRegistry(entries []Org) (*Registry, error) {
	byCode := make(map[string]Org, len(entries))
	for _, org := range entries {
		code := strings.ToUpper(strings.TrimSpace(org.Code))
		if code == "" {
			return nil, errors.NewConfigError("orgs", "organization entry with empty code", nil)
		}
		if org.CanonicalID == "" {
			return nil, errors.NewConfigError("orgs", "organization "+code+" has no canonical_id", nil)
		}
		if _, dup := byCode[code]; dup {
			return nil, errors.NewConfigError("orgs", "duplicate organization code "+code, nil)
		}
		org.Code = code
		byCode[code] = org
	}
	return &Registry{byCode: byCode}, nil
}

// Load reads the mapping from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfigError("orgs", "invalid organization mapping "+path, err)
	}
	return NewRegistry(file.Organizations)
}

// Empty returns a registry with no entries. Every lookup resolves to an
// unmapped org, which the report surfaces.
func Empty() *Registry {
	return &Registry{byCode: map[string]Org{}}
}

// Resolve looks up a code. Unknown codes return an Org carrying the
// code with an empty CanonicalID and ok=false — the record is retained
// and the gap reported, never dropped.
func (r *Registry) Resolve(code string) (Org, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if org, ok := r.byCode[code]; ok {
		return org, true
	}
	return Org{Code: code}, false
}

// Codes returns all registered codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.byCode))
	for code := range r.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of registered organizations.
func (r *Registry) Len() int { return len(r.byCode) }
