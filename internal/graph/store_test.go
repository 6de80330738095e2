package graph

import "testing"

func TestSafeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Language", "Language", true},
		{"language", "Language", true},
		{"LANGUAGE", "Language", true},
		{"country", "Country", true},
		{"languagefamily", "Languagefamily", true},
		{"language_family", "Languagefamily", true},
		{"family", "Languagefamily", true},
		{"macroarea", "Macroarea", true},
		{"entity", "Entity", true},
		{"CustomThing", "CustomThing", true},
		{"Bad Label", "", false},
		{"DROP INDEX", "", false},
		{"1Numeric", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := safeLabel(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("safeLabel(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSafeRelType(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"LOCATED_IN", "LOCATED_IN", true},
		{"located in", "LOCATED_IN", true},
		{"belongs-to", "BELONGS_TO", true},
		{"SUBFAMILY_OF", "SUBFAMILY_OF", true},
		{"MATCH (n) DELETE n", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := safeRelType(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("safeRelType(%q) = %q, %v; want %q, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestSafePropertyKey(t *testing.T) {
	if _, ok := safePropertyKey("id"); ok {
		t.Error("id must not be overwritable via props")
	}
	if _, ok := safePropertyKey("bad key"); ok {
		t.Error("keys with spaces must be rejected")
	}
	got, ok := safePropertyKey(" family ")
	if !ok || got != "family" {
		t.Errorf("safePropertyKey(family) = %q, %v", got, ok)
	}
}
