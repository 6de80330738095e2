package wals

// Language is one row of languages.csv with explicit optionality:
// coordinates are nil when the source cell is empty or malformed, every
// other field is the raw cell value (possibly empty).
type Language struct {
	ID        string
	Name      string
	Family    string
	Subfamily string
	Genus     string
	Macroarea string
	CountryID string
	ISOCode   string
	Latitude  *float64
	Longitude *float64
}

// Country is one row of countries.csv.
type Country struct {
	ID   string
	Name string
}

// Stats summarizes the loaded dataset.
type Stats struct {
	TotalLanguages int
	TotalFamilies  int
	TotalCountries int
}
