package wals

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yungbote/walsgraph/internal/platform/logger"
)

type featureKey struct {
	LanguageID  string
	ParameterID string
}

// Dataset holds the loaded WALS tables. Languages and countries are
// required; the feature tables (parameters/values/codes) are optional and
// only enable feature annotations in rendered chunks.
type Dataset struct {
	Languages []Language
	Countries []Country

	// Language_ID+Parameter_ID -> Code_ID, from values.csv.
	values map[featureKey]string
	// Code_ID -> human-readable name, from codes.csv.
	codes map[string]string
	// Parameter_ID -> parameter name, from parameters.csv.
	parameters map[string]string

	log *logger.Logger
}

// Load reads the WALS CSV files from dataDir, validating required columns
// once up front. Missing optional files are logged and skipped.
func Load(dataDir string, log *logger.Logger) (*Dataset, error) {
	if log == nil {
		return nil, fmt.Errorf("wals: logger required")
	}
	ds := &Dataset{
		values:     map[featureKey]string{},
		codes:      map[string]string{},
		parameters: map[string]string{},
		log:        log.With("component", "WALSDataset"),
	}

	langs, err := loadLanguages(filepath.Join(dataDir, "languages.csv"))
	if err != nil {
		return nil, err
	}
	ds.Languages = langs

	countries, err := loadCountries(filepath.Join(dataDir, "countries.csv"))
	if err != nil {
		return nil, err
	}
	ds.Countries = countries

	ds.log.Info("loaded core tables", "languages", len(ds.Languages), "countries", len(ds.Countries))

	if err := ds.loadFeatureTables(dataDir); err != nil {
		return nil, err
	}
	return ds, nil
}

// HasFeatures reports whether the optional feature tables were present.
func (ds *Dataset) HasFeatures() bool {
	return len(ds.values) > 0 && len(ds.codes) > 0
}

// FeatureValue resolves the value name of a parameter for a language by
// joining values.csv (Language_ID+Parameter_ID -> Code_ID) against
// codes.csv (Code_ID -> Name).
func (ds *Dataset) FeatureValue(languageID, parameterID string) (string, bool) {
	codeID, ok := ds.values[featureKey{LanguageID: languageID, ParameterID: parameterID}]
	if !ok {
		return "", false
	}
	name, ok := ds.codes[codeID]
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func (ds *Dataset) Stats() Stats {
	families := map[string]struct{}{}
	countries := map[string]struct{}{}
	for _, l := range ds.Languages {
		if l.Family != "" {
			families[l.Family] = struct{}{}
		}
		if l.CountryID != "" {
			countries[l.CountryID] = struct{}{}
		}
	}
	return Stats{
		TotalLanguages: len(ds.Languages),
		TotalFamilies:  len(families),
		TotalCountries: len(countries),
	}
}

func (ds *Dataset) loadFeatureTables(dataDir string) error {
	paramsPath := filepath.Join(dataDir, "parameters.csv")
	if rows, cols, err := readCSV(paramsPath); err == nil {
		id, okID := cols["ID"]
		name, okName := cols["Name"]
		if okID && okName {
			for _, row := range rows {
				ds.parameters[row[id]] = row[name]
			}
		}
		ds.log.Info("loaded parameters.csv", "records", len(ds.parameters))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("wals: read parameters.csv: %w", err)
	} else {
		ds.log.Warn("optional file not found", "file", paramsPath)
	}

	valuesPath := filepath.Join(dataDir, "values.csv")
	if rows, cols, err := readCSV(valuesPath); err == nil {
		lang, okL := cols["Language_ID"]
		param, okP := cols["Parameter_ID"]
		code, okC := cols["Code_ID"]
		if !okL || !okP || !okC {
			return fmt.Errorf("wals: values.csv missing Language_ID/Parameter_ID/Code_ID columns")
		}
		for _, row := range rows {
			key := featureKey{LanguageID: row[lang], ParameterID: row[param]}
			if _, seen := ds.values[key]; !seen {
				ds.values[key] = row[code]
			}
		}
		ds.log.Info("loaded values.csv", "records", len(ds.values))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("wals: read values.csv: %w", err)
	} else {
		ds.log.Warn("optional file not found", "file", valuesPath)
	}

	codesPath := filepath.Join(dataDir, "codes.csv")
	if rows, cols, err := readCSV(codesPath); err == nil {
		id, okID := cols["ID"]
		name, okName := cols["Name"]
		if !okID || !okName {
			return fmt.Errorf("wals: codes.csv missing ID/Name columns")
		}
		for _, row := range rows {
			ds.codes[row[id]] = row[name]
		}
		ds.log.Info("loaded codes.csv", "records", len(ds.codes))
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("wals: read codes.csv: %w", err)
	} else {
		ds.log.Warn("optional file not found", "file", codesPath)
	}

	return nil
}

func loadLanguages(path string) ([]Language, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("wals: read languages.csv: %w", err)
	}
	name, ok := cols["Name"]
	if !ok {
		return nil, fmt.Errorf("wals: languages.csv missing Name column")
	}

	cell := func(row []string, col string) string {
		idx, ok := cols[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	out := make([]Language, 0, len(rows))
	for _, row := range rows {
		if name >= len(row) || strings.TrimSpace(row[name]) == "" {
			continue
		}
		l := Language{
			ID:        cell(row, "ID"),
			Name:      strings.TrimSpace(row[name]),
			Family:    cell(row, "Family"),
			Subfamily: cell(row, "Subfamily"),
			Genus:     cell(row, "Genus"),
			Macroarea: cell(row, "Macroarea"),
			CountryID: cell(row, "Country_ID"),
			ISOCode:   cell(row, "ISO639P3code"),
			Latitude:  parseCoord(cell(row, "Latitude")),
			Longitude: parseCoord(cell(row, "Longitude")),
		}
		out = append(out, l)
	}
	return out, nil
}

func loadCountries(path string) ([]Country, error) {
	rows, cols, err := readCSV(path)
	if err != nil {
		return nil, fmt.Errorf("wals: read countries.csv: %w", err)
	}
	id, okID := cols["ID"]
	name, okName := cols["Name"]
	if !okID || !okName {
		return nil, fmt.Errorf("wals: countries.csv missing ID/Name columns")
	}

	seen := map[string]struct{}{}
	out := make([]Country, 0, len(rows))
	for _, row := range rows {
		if id >= len(row) || name >= len(row) {
			continue
		}
		cid := strings.TrimSpace(row[id])
		cname := strings.TrimSpace(row[name])
		if cid == "" {
			continue
		}
		if _, dup := seen[cid]; dup {
			continue
		}
		seen[cid] = struct{}{}
		out = append(out, Country{ID: cid, Name: cname})
	}
	return out, nil
}

// readCSV returns data rows and a header-name -> column-index map.
func readCSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(h)] = i
	}
	return records[1:], cols, nil
}

// parseCoord returns nil for empty or malformed coordinate cells; the row
// itself is kept.
func parseCoord(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
