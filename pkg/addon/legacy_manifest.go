package addon

import "github.com/aggrecore/core/pkg/stremio"

// legacyManifest is the wire shape of a legacy (/stremio/v1) addon's manifest,
// grounded on original_source's legacy_manifest.rs: a flat descriptor
// plus sorts/types/idProperty instead of the modern resources/catalogs
// split.
type legacyManifest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Version     string   `json:"version"`
	Types       []string `json:"types"`
	Sorts       []string `json:"sorts"`
	IDProperty  string   `json:"idProperty"`
	Logo        string   `json:"logo,omitempty"`
	Background  string   `json:"background,omitempty"`
	ContactEmail string  `json:"contactEmail,omitempty"`
}

// idPrefixFor maps a legacy manifest's idProperty to the modern
// id_prefixes convention, per SPEC_FULL.md's supplemented legacy-manifest
// detail: imdb_id -> "tt", yt_id -> "UC", anything else -> "{id}:".
func idPrefixFor(idProperty string) string {
	switch idProperty {
	case "imdb_id":
		return "tt"
	case "yt_id":
		return "UC"
	default:
		return idProperty + ":"
	}
}

// synthesizeManifest maps a legacy {manifest, methods} response to a
// modern Manifest: catalogs are the cross product of sorts x types (one
// "top" catalog per type when sorts is empty), resources are derived
// from the method list, and id prefixes come from idPrefixFor.
func synthesizeManifest(lm legacyManifest, methods []string) stremio.Manifest {
	prefix := idPrefixFor(lm.IDProperty)

	var catalogs []stremio.ManifestCatalog
	if len(lm.Sorts) == 0 {
		for _, t := range lm.Types {
			catalogs = append(catalogs, stremio.ManifestCatalog{Type: t, ID: "top"})
		}
	} else {
		for _, t := range lm.Types {
			for _, sort := range lm.Sorts {
				catalogs = append(catalogs, stremio.ManifestCatalog{Type: t, ID: sort})
			}
		}
	}

	resources := make([]stremio.ManifestResource, 0, len(methods))
	for _, method := range methods {
		name := resourceNameForMethod(method)
		if name == "" {
			continue
		}
		resources = append(resources, stremio.ManifestResource{Name: name, Types: lm.Types})
	}

	return stremio.Manifest{
		ID:          lm.ID,
		Name:        lm.Name,
		Description: lm.Description,
		Version:     lm.Version,
		Types:       lm.Types,
		Resources:   resources,
		Catalogs:    catalogs,
		IDprefixes:  []string{prefix},
		Logo:        lm.Logo,
		Background:  lm.Background,
		ContactEmail: lm.ContactEmail,
	}
}

func resourceNameForMethod(method string) string {
	switch method {
	case "meta.find":
		return "catalog"
	case "meta.get":
		return "meta"
	case "stream.find":
		return "stream"
	case "subtitles.find":
		return "subtitles"
	default:
		return ""
	}
}
