package wals

import "sort"

// UnknownFamily is the sentinel label for records with no family value.
const UnknownFamily = "UnknownFamily"

// DefaultBatchSize is the per-chunk record cap.
const DefaultBatchSize = 10

// FamilyBatch is one renderable unit: up to batch-size languages of a
// single family, in source order.
type FamilyBatch struct {
	Family    string
	Languages []Language
}

// BatchByFamily groups languages by family and splits each group into
// consecutive batches of at most size records. Families are emitted in
// sorted label order with UnknownFamily last; rows keep their source order
// within a family. Deterministic for a given input and size.
func BatchByFamily(languages []Language, size int) []FamilyBatch {
	if size <= 0 {
		size = DefaultBatchSize
	}

	groups := map[string][]Language{}
	for _, l := range languages {
		family := l.Family
		if family == "" {
			family = UnknownFamily
		}
		groups[family] = append(groups[family], l)
	}

	families := make([]string, 0, len(groups))
	for f := range groups {
		if f == UnknownFamily {
			continue
		}
		families = append(families, f)
	}
	sort.Strings(families)
	if _, ok := groups[UnknownFamily]; ok {
		families = append(families, UnknownFamily)
	}

	var out []FamilyBatch
	for _, family := range families {
		rows := groups[family]
		for start := 0; start < len(rows); start += size {
			end := start + size
			if end > len(rows) {
				end = len(rows)
			}
			out = append(out, FamilyBatch{Family: family, Languages: rows[start:end]})
		}
	}
	return out
}
