// Package resolve maps free-text country and language-family names onto the
// canonical identifiers stored in the graph.
package resolve

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when every resolution strategy comes up empty.
var ErrNotFound = errors.New("resolve: not found")

// familyAliases covers common multilingual variants of family and genus
// names. Keys are lowercased; values are the canonical stored spelling.
var familyAliases = map[string]string{
	"indoeuropeo":    "Indo-European",
	"indoeuropean":   "Indo-European",
	"indo-european":  "Indo-European",
	"indoeuropea":    "Indo-European",
	"romance":        "Romance",
	"romances":       "Romance",
	"románico":       "Romance",
	"románicas":      "Romance",
	"germanic":       "Germanic",
	"germanico":      "Germanic",
	"germánico":      "Germanic",
	"germánicas":     "Germanic",
	"nigercongoese":  "Niger-Congo",
	"nigercongo":     "Niger-Congo",
	"niger-congo":    "Niger-Congo",
	"afroasiatic":    "Afro-Asiatic",
	"afro-asiatic":   "Afro-Asiatic",
	"afroasiático":   "Afro-Asiatic",
	"sinotibetan":    "Sino-Tibetan",
	"sino-tibetan":   "Sino-Tibetan",
	"sino-tibetano":  "Sino-Tibetan",
	"austronesian":   "Austronesian",
	"austronesio":    "Austronesian",
	"austronésico":   "Austronesian",
	"semitic":        "Semitic",
	"semítico":       "Semitic",
	"bantu":          "Bantu",
	"bantú":          "Bantu",
	"celtic":         "Celtic",
	"céltico":        "Celtic",
	"slavic":         "Slavic",
	"eslavo":         "Slavic",
}

// countryAliases maps common country names to the identifier the WALS data
// actually stores. The stored country_id column mixes ISO codes and full
// names, so the canonical side mirrors that inconsistency on purpose.
var countryAliases = map[string]string{
	"usa":              "United States",
	"united states":    "United States",
	"estados unidos":   "United States",
	"spain":            "ES",
	"españa":           "ES",
	"france":           "FR",
	"francia":          "FR",
	"germany":          "DE",
	"alemania":         "DE",
	"italy":            "IT",
	"italia":           "IT",
	"mexico":           "MX",
	"méxico":           "MX",
	"india":            "India",
	"indonesia":        "Indonesia",
	"papua new guinea": "PG",
	"ethiopia":         "ET",
	"etiopía":          "ET",
	"chad":             "TD",
	"brazil":           "BR",
	"brasil":           "BR",
	"china":            "CN",
	"australia":        "AU",
	"canada":           "CA",
	"canadá":           "CA",
	"argentina":        "AR",
}

// Resolver resolves free text against the value vocabularies of a loaded
// dataset. Strategy order is fixed: alias table, then exact/ISO-style
// match, then case-insensitive containment. The first strategy producing
// any result wins, even when a later strategy would produce a better one;
// that ordering is part of the contract.
type Resolver struct {
	families  []string
	genera    []string
	countries []country
}

type country struct {
	ID   string
	Name string
}

// Vocabulary is the slice of dataset values the resolver matches against.
type Vocabulary struct {
	Families     []string
	Genera       []string
	CountryIDs   []string
	CountryNames map[string]string // ID -> display name
}

func New(v Vocabulary) *Resolver {
	r := &Resolver{
		families: dedupSorted(v.Families),
		genera:   dedupSorted(v.Genera),
	}
	for _, id := range dedupSorted(v.CountryIDs) {
		r.countries = append(r.countries, country{ID: id, Name: v.CountryNames[id]})
	}
	return r
}

// ResolveFamily maps free text to a canonical family or genus name.
func (r *Resolver) ResolveFamily(query string) (string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", ErrNotFound
	}

	if canonical, ok := familyAliases[q]; ok {
		return canonical, nil
	}

	for _, set := range [][]string{r.families, r.genera} {
		for _, v := range set {
			if strings.EqualFold(v, q) {
				return v, nil
			}
		}
	}

	for _, set := range [][]string{r.families, r.genera} {
		for _, v := range set {
			if strings.Contains(strings.ToLower(v), q) {
				return v, nil
			}
		}
	}

	return "", ErrNotFound
}

// ResolveCountry maps free text to a stored country identifier.
func (r *Resolver) ResolveCountry(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrNotFound
	}

	if canonical, ok := countryAliases[strings.ToLower(q)]; ok {
		return canonical, nil
	}

	if len(q) == 2 {
		upper := strings.ToUpper(q)
		for _, c := range r.countries {
			if c.ID == upper {
				return c.ID, nil
			}
		}
	}

	lower := strings.ToLower(q)
	for _, c := range r.countries {
		if strings.Contains(strings.ToLower(c.Name), lower) || strings.Contains(strings.ToLower(c.ID), lower) {
			return c.ID, nil
		}
	}

	return "", ErrNotFound
}

func dedupSorted(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
