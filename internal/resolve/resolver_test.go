package resolve

import (
	"errors"
	"testing"
)

func testResolver() *Resolver {
	return New(Vocabulary{
		Families: []string{"Indo-European", "Austronesian", "Niger-Congo", "Trans-New Guinea"},
		Genera:   []string{"Romance", "Germanic", "Semitic"},
		CountryIDs: []string{
			"ES", "FR", "PG", "United States", "Indonesia", "India",
		},
		CountryNames: map[string]string{
			"ES":            "Spain",
			"FR":            "France",
			"PG":            "Papua New Guinea",
			"United States": "United States",
			"Indonesia":     "Indonesia",
			"India":         "India",
		},
	})
}

func TestResolveFamilyAlias(t *testing.T) {
	r := testResolver()
	cases := map[string]string{
		"románico":    "Romance",
		"germánico":   "Germanic",
		"indoeuropeo": "Indo-European",
		"austronesio": "Austronesian",
	}
	for in, want := range cases {
		got, err := r.ResolveFamily(in)
		if err != nil {
			t.Errorf("ResolveFamily(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ResolveFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveFamilyExactBeatsContainment(t *testing.T) {
	r := testResolver()
	// "romance" matches the Romance genus exactly; containment over the
	// family list must not run first.
	got, err := r.ResolveFamily("romance")
	if err != nil {
		t.Fatalf("ResolveFamily: %v", err)
	}
	if got != "Romance" {
		t.Fatalf("ResolveFamily(romance) = %q, want Romance", got)
	}
}

func TestResolveFamilyContainment(t *testing.T) {
	r := testResolver()
	got, err := r.ResolveFamily("guinea")
	if err != nil {
		t.Fatalf("ResolveFamily: %v", err)
	}
	if got != "Trans-New Guinea" {
		t.Fatalf("ResolveFamily(guinea) = %q, want Trans-New Guinea", got)
	}
}

func TestResolveFamilyNotFound(t *testing.T) {
	r := testResolver()
	if _, err := r.ResolveFamily("Zyxw"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := r.ResolveFamily("   "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank input, got %v", err)
	}
}

func TestResolveFamilyIdempotent(t *testing.T) {
	r := testResolver()
	first, err := r.ResolveFamily("romance")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.ResolveFamily(first)
	if err != nil {
		t.Fatalf("resolving a canonical name failed: %v", err)
	}
	if second != first {
		t.Fatalf("canonical name not stable: %q -> %q", first, second)
	}
}

func TestResolveCountryAlias(t *testing.T) {
	r := testResolver()
	cases := map[string]string{
		"usa":    "United States",
		"Spain":  "ES",
		"españa": "ES",
		"france": "FR",
	}
	for in, want := range cases {
		got, err := r.ResolveCountry(in)
		if err != nil {
			t.Errorf("ResolveCountry(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ResolveCountry(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveCountryISOCode(t *testing.T) {
	r := testResolver()
	got, err := r.ResolveCountry("pg")
	if err != nil {
		t.Fatalf("ResolveCountry: %v", err)
	}
	if got != "PG" {
		t.Fatalf("ResolveCountry(pg) = %q, want PG", got)
	}
}

func TestResolveCountryContainment(t *testing.T) {
	r := testResolver()
	got, err := r.ResolveCountry("papua")
	if err != nil {
		t.Fatalf("ResolveCountry: %v", err)
	}
	if got != "PG" {
		t.Fatalf("ResolveCountry(papua) = %q, want PG", got)
	}
}

func TestResolveCountryNotFound(t *testing.T) {
	r := testResolver()
	if _, err := r.ResolveCountry("Atlantis"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
