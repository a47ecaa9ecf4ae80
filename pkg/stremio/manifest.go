// Package stremio holds the wire types of the addon resource protocol:
// manifests, catalogs, meta items, streams, library items and the
// request/response envelopes the core's addon transport and planner
// operate on.
//
// See https://github.com/Stremio/stremio-addon-sdk/tree/master/docs/api
// for the protocol this package mirrors.
package stremio

import "strings"

// Manifest describes the capabilities of an addon.
type Manifest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`

	Resources []ManifestResource `json:"resources"`
	Types     []string           `json:"types"`
	Catalogs  []ManifestCatalog  `json:"catalogs"`

	// Optional
	IDprefixes    []string      `json:"idPrefixes,omitempty"`
	AddonCatalogs []ManifestCatalog `json:"addonCatalogs,omitempty"`
	Background    string        `json:"background,omitempty"`
	Logo          string        `json:"logo,omitempty"`
	ContactEmail  string        `json:"contactEmail,omitempty"`
	BehaviorHints BehaviorHints `json:"behaviorHints,omitempty"`
}

// ManifestResource is either a bare resource name, or a name qualified by
// the types/idPrefixes it supports. UnmarshalJSON accepts both shapes,
// exactly like the addon SDK does.
type ManifestResource struct {
	Name       string   `json:"name"`
	Types      []string `json:"types,omitempty"`
	IDprefixes []string `json:"idPrefixes,omitempty"`
}

// UnmarshalJSON accepts a bare string ("catalog") or an object
// ({"name":"catalog","types":[...]}) for a single resource entry.
func (r *ManifestResource) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if len(data) > 0 && data[0] == '"' {
		r.Name = s
		return nil
	}
	type alias ManifestResource
	var a alias
	if err := jsonUnmarshal(data, &a); err != nil {
		return err
	}
	*r = ManifestResource(a)
	return nil
}

// MarshalJSON emits the bare-string form when no types/idPrefixes are set,
// matching how addons in the wild emit manifests.
func (r ManifestResource) MarshalJSON() ([]byte, error) {
	if len(r.Types) == 0 && len(r.IDprefixes) == 0 {
		return jsonMarshal(r.Name)
	}
	type alias ManifestResource
	return jsonMarshal(alias(r))
}

type BehaviorHints struct {
	Adult              bool `json:"adult,omitempty"`
	P2P                bool `json:"p2p,omitempty"`
	Configurable       bool `json:"configurable,omitempty"`
	ConfigurationReq   bool `json:"configurationRequired,omitempty"`
}

// ManifestCatalog is a single catalog an addon exposes.
type ManifestCatalog struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`

	Extra []ExtraProp `json:"extra,omitempty"`
}

// ExtraProp describes one supported extra query parameter for a catalog.
type ExtraProp struct {
	Name         string   `json:"name"`
	IsRequired   bool     `json:"isRequired,omitempty"`
	Options      []string `json:"options,omitempty"`
	OptionsLimit int      `json:"optionsLimit,omitempty"`
}

// SupportsPath reports whether the manifest supports the given resource
// path: the resource must be present, the type must match (catalog lookup
// is by (type, id) pair; other resources consult resource-level then
// manifest-level types/idPrefixes), and any manifest-level idPrefixes must
// contain a prefix of id.
func (m Manifest) SupportsPath(p ResourcePath) bool {
	if p.Resource == "catalog" {
		return m.hasCatalog(p.Type, p.ID)
	}

	res, ok := m.findResource(p.Resource)
	if !ok {
		return false
	}

	if len(res.Types) > 0 {
		if !containsString(res.Types, p.Type) {
			return false
		}
	} else if len(m.Types) > 0 {
		if !containsString(m.Types, p.Type) {
			return false
		}
	}

	prefixes := res.IDprefixes
	if len(prefixes) == 0 {
		prefixes = m.IDprefixes
	}
	if len(prefixes) > 0 && !hasAnyPrefix(p.ID, prefixes) {
		return false
	}
	return true
}

func (m Manifest) findResource(name string) (ManifestResource, bool) {
	for _, r := range m.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ManifestResource{}, false
}

func (m Manifest) hasCatalog(typ, id string) bool {
	for _, c := range m.Catalogs {
		if c.Type == typ && c.ID == id {
			return true
		}
	}
	return false
}

// CatalogSupportsExtra reports whether every key in provided is listed as
// a supported extra property of the catalog, and every required property
// of the catalog is present in provided.
func (c ManifestCatalog) CatalogSupportsExtra(provided map[string]string) bool {
	supported := make(map[string]ExtraProp, len(c.Extra))
	for _, e := range c.Extra {
		supported[e.Name] = e
	}
	for k := range provided {
		if _, ok := supported[k]; !ok {
			return false
		}
	}
	for _, e := range c.Extra {
		if e.IsRequired {
			if _, ok := provided[e.Name]; !ok {
				return false
			}
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
