package wals

import (
	"fmt"
	"strconv"
	"strings"
)

// FeatureLookup resolves a parameter value for a language. *Dataset
// satisfies it; nil disables feature annotations entirely.
type FeatureLookup interface {
	FeatureValue(languageID, parameterID string) (string, bool)
}

// ambiguousCountryNames rewrites country codes the extraction model is
// known to mangle (a bare "ID" token gets read as a generic identifier)
// into unambiguous display names.
var ambiguousCountryNames = map[string]string{
	"ID": "Indonesia",
	"US": "United States",
	"CA": "Canada",
	"AU": "Australia",
	"IN": "India",
	"CN": "China",
	"BR": "Brazil",
	"AR": "Argentina",
}

// CountryDisplayName returns the unambiguous rendering of a country code,
// or the code itself when it is not in the rewrite table.
func CountryDisplayName(countryID string) string {
	if name, ok := ambiguousCountryNames[countryID]; ok {
		return name
	}
	return countryID
}

// RenderChunk produces the self-describing text block for one family batch.
// Pure: identical inputs yield byte-identical output. features may be nil.
func RenderChunk(batch FamilyBatch, chunkNum int, features FeatureLookup, params []FeatureParam) string {
	var b strings.Builder

	fmt.Fprintf(&b, "LINGUISTIC KNOWLEDGE GRAPH DATA - CHUNK %d:\n\n", chunkNum)
	fmt.Fprintf(&b, "Family: %s\n", batch.Family)
	fmt.Fprintf(&b, "Languages in this chunk: %d\n\n", len(batch.Languages))
	b.WriteString("=== DETAILED LANGUAGE INFORMATION ===\n")

	for _, lang := range batch.Languages {
		fmt.Fprintf(&b, "\nLanguage: %s\n", lang.Name)
		fmt.Fprintf(&b, "- Family: %s\n", lang.Family)
		fmt.Fprintf(&b, "- Subfamily: %s\n", lang.Subfamily)
		fmt.Fprintf(&b, "- Genus: %s\n", lang.Genus)
		fmt.Fprintf(&b, "- Coordinates: %s, %s\n", formatCoord(lang.Latitude), formatCoord(lang.Longitude))
		fmt.Fprintf(&b, "- Country: %s\n", CountryDisplayName(lang.CountryID))
		fmt.Fprintf(&b, "- ISO Code: %s\n", lang.ISOCode)
		fmt.Fprintf(&b, "- Macroarea: %s\n", lang.Macroarea)

		if features != nil {
			found := false
			for _, p := range params {
				if value, ok := features.FeatureValue(lang.ID, p.ID); ok {
					fmt.Fprintf(&b, "- %s: %s\n", p.Label, value)
					found = true
				}
			}
			if !found {
				b.WriteString("- Linguistic features: Available in WALS database\n")
			}
		}
	}

	fmt.Fprintf(&b, `
=== RELATIONSHIPS TO EXTRACT ===
- Each %s language BELONGS_TO %sFamily
- Each language LOCATED_IN its country (if country specified)
- Languages of same subfamily form SUBFAMILY_OF relationships
- Languages in same macroarea form MACROAREA_OF relationships
- Create Country entities with proper names
- Create LanguageFamily entities for linguistic classification
`, batch.Family, batch.Family)

	return strings.TrimSpace(b.String())
}

func formatCoord(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
